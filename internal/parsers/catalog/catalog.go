// Package catalog decodes catalog B-tree leaf record values: directory,
// file, and thread records, in both the HFS+/HFSX and classic HFS
// dialects.
//
// Field offsets are grounded on the public HFSPlusCatalogFolder,
// HFSPlusCatalogFile, HFSCatalogFolder, and HFSCatalogFile structures (Apple
// Technote 1150) and cross-checked against the field order
// libfshfs_directory_record.c and libfshfs_file_record.c read them in.
package catalog

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/parsers/forks"
	"github.com/deploymenttheory/go-hfs/internal/textenc"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

const (
	directoryRecordSizeHFSPlus = 88
	directoryRecordSizeHFS     = 70
	fileRecordSizeHFSPlus      = 248
	fileRecordSizeHFS          = 102
)

// RecordType returns the leaf record's discriminant, the first big-endian
// u16 of its value bytes.
func RecordType(value []byte) (uint16, error) {
	if len(value) < 2 {
		return 0, errs.New(errs.InvalidFormat, "catalog.RecordType", fmt.Errorf("record value too short"))
	}
	return binary.BigEndian.Uint16(value[0:2]), nil
}

// DecodeDirectoryRecordHFSPlus decodes an HFS+/HFSX directory record.
func DecodeDirectoryRecordHFSPlus(value []byte) (*types.DirectoryRecord, error) {
	if len(value) < directoryRecordSizeHFSPlus {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeDirectoryRecordHFSPlus",
			fmt.Errorf("directory record too short: %d bytes", len(value)))
	}
	be := binary.BigEndian
	d := &types.DirectoryRecord{
		Flags:    be.Uint16(value[2:4]),
		Valence:  be.Uint32(value[4:8]),
		FolderID: types.CatalogNodeID(be.Uint32(value[8:12])),
		Times: types.Timestamps{
			Creation:                 be.Uint32(value[12:16]),
			Modification:             be.Uint32(value[16:20]),
			EntryModification:        be.Uint32(value[20:24]),
			Access:                   be.Uint32(value[24:28]),
			Backup:                   be.Uint32(value[28:32]),
			EntryModificationPresent: true,
			AccessPresent:            true,
		},
	}
	decodePermissions(&d.Perms, value[32:48])
	copy(d.Finder.Raw[:], value[48:64])
	copy(d.Finder.ExtendedRaw[:], value[64:80])
	d.TextEncoding = be.Uint32(value[80:84])

	if d.Flags&types.RecordFlagHasDateAdded != 0 {
		d.Times.Added = int32(binary.LittleEndian.Uint32(value[64+4 : 64+8]))
		d.Times.AddedPresent = true
	}
	return d, nil
}

// DecodeDirectoryRecordClassic decodes a classic HFS directory record.
func DecodeDirectoryRecordClassic(value []byte) (*types.DirectoryRecord, error) {
	if len(value) < directoryRecordSizeHFS {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeDirectoryRecordClassic",
			fmt.Errorf("directory record too short: %d bytes", len(value)))
	}
	be := binary.BigEndian
	d := &types.DirectoryRecord{
		Flags:    be.Uint16(value[2:4]),
		Valence:  uint32(be.Uint16(value[4:6])),
		FolderID: types.CatalogNodeID(be.Uint32(value[6:10])),
		Times: types.Timestamps{
			Creation:     be.Uint32(value[10:14]),
			Modification: be.Uint32(value[14:18]),
			Backup:       be.Uint32(value[18:22]),
			Local:        true,
		},
	}
	copy(d.Finder.Raw[:], value[22:38])
	copy(d.Finder.ExtendedRaw[:], value[38:54])
	return d, nil
}

// DecodeFileRecordHFSPlus decodes an HFS+/HFSX file record, including both
// fork descriptors.
func DecodeFileRecordHFSPlus(value []byte) (*types.FileRecord, error) {
	if len(value) < fileRecordSizeHFSPlus {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeFileRecordHFSPlus",
			fmt.Errorf("file record too short: %d bytes", len(value)))
	}
	be := binary.BigEndian
	f := &types.FileRecord{
		Flags:  be.Uint16(value[2:4]),
		FileID: types.CatalogNodeID(be.Uint32(value[8:12])),
		Times: types.Timestamps{
			Creation:                 be.Uint32(value[12:16]),
			Modification:             be.Uint32(value[16:20]),
			EntryModification:        be.Uint32(value[20:24]),
			Access:                   be.Uint32(value[24:28]),
			Backup:                   be.Uint32(value[28:32]),
			EntryModificationPresent: true,
			AccessPresent:            true,
		},
	}
	decodePermissions(&f.Perms, value[32:48])
	copy(f.Finder.Raw[:], value[48:64])
	copy(f.Finder.ExtendedRaw[:], value[64:80])
	f.TextEncoding = be.Uint32(value[80:84])

	if f.Flags&types.RecordFlagHasDateAdded != 0 {
		f.Times.Added = int32(binary.LittleEndian.Uint32(value[64+4 : 64+8]))
		f.Times.AddedPresent = true
	}

	dataFork, err := forks.DecodeHFSPlusFork(value[88:168], be)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeFileRecordHFSPlus", err)
	}
	resourceFork, err := forks.DecodeHFSPlusFork(value[168:248], be)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeFileRecordHFSPlus", err)
	}
	f.DataFork = dataFork
	f.ResourceFork = resourceFork
	return f, nil
}

// DecodeFileRecordClassic decodes a classic HFS file record.
func DecodeFileRecordClassic(value []byte) (*types.FileRecord, error) {
	if len(value) < fileRecordSizeHFS {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeFileRecordClassic",
			fmt.Errorf("file record too short: %d bytes", len(value)))
	}
	be := binary.BigEndian
	f := &types.FileRecord{
		Flags:  uint16(value[2]),
		FileID: types.CatalogNodeID(be.Uint32(value[20:24])),
		Times: types.Timestamps{
			Creation:     be.Uint32(value[44:48]),
			Modification: be.Uint32(value[48:52]),
			Backup:       be.Uint32(value[52:56]),
			Local:        true,
		},
	}
	copy(f.Finder.Raw[:], value[4:20])
	copy(f.Finder.ExtendedRaw[:], value[56:72])

	dataExtents, err := forks.DecodeClassicExtents(value[74:86], be)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeFileRecordClassic", err)
	}
	dataLogicalEOF := be.Uint32(value[26:30])
	f.DataFork = forks.AssembleClassicFork(dataLogicalEOF, dataExtents)
	f.DataFork.ClumpSize = uint32(be.Uint16(value[72:74]))

	rsrcExtents, err := forks.DecodeClassicExtents(value[86:98], be)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeFileRecordClassic", err)
	}
	rsrcLogicalEOF := be.Uint32(value[36:40])
	f.ResourceFork = forks.AssembleClassicFork(rsrcLogicalEOF, rsrcExtents)
	f.ResourceFork.ClumpSize = uint32(be.Uint16(value[72:74]))

	return f, nil
}

// DecodeThreadRecord decodes a directory or file thread record, common to
// both dialects: u16 record type, u16 reserved, u32 parent_id, name (either
// UTF-16BE with u16 length, or MacRoman Str31 with u8 length).
func DecodeThreadRecord(value []byte, hfsPlus bool) (*types.ThreadRecord, error) {
	if len(value) < 8 {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeThreadRecord", fmt.Errorf("thread record too short"))
	}
	be := binary.BigEndian
	parentID := types.CatalogNodeID(be.Uint32(value[4:8]))

	if hfsPlus {
		nameLen := int(be.Uint16(value[8:10]))
		nameStart := 10
		nameEnd := nameStart + nameLen*2
		if nameEnd > len(value) {
			return nil, errs.New(errs.Corruption, "catalog.DecodeThreadRecord",
				fmt.Errorf("name_length %d overruns record of %d bytes", nameLen, len(value)))
		}
		return &types.ThreadRecord{ParentID: parentID, Name: decodeUTF16BE(value[nameStart:nameEnd])}, nil
	}
	if len(value) < 9 {
		return nil, errs.New(errs.InvalidFormat, "catalog.DecodeThreadRecord", fmt.Errorf("classic thread record too short"))
	}
	nameLen := int(value[8])
	if nameLen > 31 {
		nameLen = 31
	}
	nameStart := 9
	nameEnd := nameStart + nameLen
	if nameEnd > len(value) {
		return nil, errs.New(errs.Corruption, "catalog.DecodeThreadRecord",
			fmt.Errorf("name_length %d overruns record of %d bytes", nameLen, len(value)))
	}
	return &types.ThreadRecord{ParentID: parentID, Name: textenc.DecodeMacRoman(value[nameStart:nameEnd])}, nil
}

func decodePermissions(p *types.Permissions, buf []byte) {
	be := binary.BigEndian
	p.OwnerID = be.Uint32(buf[0:4])
	p.GroupID = be.Uint32(buf[4:8])
	p.AdminFlags = buf[8]
	p.OwnerFlags = buf[9]
	p.FileMode = be.Uint16(buf[10:12])
	p.SpecialPermissions = be.Uint32(buf[12:16])
}

func decodeUTF16BE(buf []byte) string {
	units := make([]uint16, len(buf)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(buf[i*2 : i*2+2])
	}
	return string(utf16.Decode(units))
}
