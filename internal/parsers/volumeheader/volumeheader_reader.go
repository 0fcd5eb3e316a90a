// Package volumeheader implements signature detection at byte offset 1024
// of the volume, and decoding of either the HFS+/HFSX volume header or a
// classic HFS master directory block into the shared types.VolumeHeader
// shape: read a fixed region, validate the magic, populate the struct
// field-by-field via binary.BigEndian, following libfshfs_volume_header.c
// and libfshfs_master_directory_block.c for exact field order.
package volumeheader

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/parsers/forks"
	"github.com/deploymenttheory/go-hfs/internal/textenc"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// HeaderOffset is the fixed byte offset of the volume header / master
// directory block from the start of the volume.
const HeaderOffset = 1024

// headerRegionSize is large enough to cover either on-disk layout: the
// 512-byte HFS+/HFSX volume header, or the smaller classic MDB (162 bytes)
// plus its trailing alternate-MDB padding region.
const headerRegionSize = 512

// Read detects the volume's dialect and decodes its header at
// HeaderOffset, relative to the given source.
func Read(src interfaces.ByteSource) (*types.VolumeHeader, error) {
	buf := make([]byte, headerRegionSize)
	n, err := src.ReadAt(buf, HeaderOffset)
	if err != nil {
		if n < 2 {
			return nil, errs.New(errs.IoError, "volumeheader.Read", err)
		}
		buf = buf[:n]
	}
	if len(buf) < 2 {
		return nil, errs.New(errs.InvalidFormat, "volumeheader.Read",
			fmt.Errorf("source too small to hold a volume header"))
	}

	signature := binary.BigEndian.Uint16(buf[0:2])
	switch signature {
	case types.SignatureHFSPlus, types.SignatureHFSX:
		return decodeHFSPlusHeader(buf)
	case types.SignatureHFS:
		return decodeMasterDirectoryBlock(buf)
	default:
		return nil, errs.New(errs.InvalidFormat, "volumeheader.Read",
			fmt.Errorf("unrecognized volume signature 0x%04x at offset %d", signature, HeaderOffset))
	}
}

// decodeHFSPlusHeader decodes the 512-byte HFS+/HFSX volume header.
//
// Reference: libfshfs_volume_header.c field order.
func decodeHFSPlusHeader(buf []byte) (*types.VolumeHeader, error) {
	if len(buf) < 512 {
		return nil, errs.New(errs.InvalidFormat, "volumeheader.decodeHFSPlusHeader",
			fmt.Errorf("short volume header: %d bytes", len(buf)))
	}
	be := binary.BigEndian

	h := &types.VolumeHeader{
		Signature:           be.Uint16(buf[0:2]),
		Version:             be.Uint16(buf[2:4]),
		AttributeFlags:      be.Uint32(buf[4:8]),
		CreationTime:        be.Uint32(buf[8:12]),
		ModificationTime:    be.Uint32(buf[12:16]),
		BackupTime:          be.Uint32(buf[16:20]),
		CheckedTime:         be.Uint32(buf[20:24]),
		FileCount:           be.Uint32(buf[24:28]),
		FolderCount:         be.Uint32(buf[28:32]),
		AllocationBlockSize: be.Uint32(buf[32:36]),
		TotalBlocks:         be.Uint32(buf[36:40]),
		FreeBlocks:          be.Uint32(buf[40:44]),
		NextAllocationBlock: be.Uint32(buf[44:48]),
		ResourceClumpSize:   be.Uint32(buf[48:52]),
		DataClumpSize:       be.Uint32(buf[52:56]),
		NextCatalogID:       types.CatalogNodeID(be.Uint32(buf[56:60])),
		WriteCount:          be.Uint32(buf[60:64]),
		EncodingsBitmap:     be.Uint64(buf[64:72]),
	}
	for i := 0; i < 8; i++ {
		h.FinderInfo[i] = be.Uint32(buf[72+i*4 : 76+i*4])
	}

	const forksStart = 104
	fiveForks, err := forks.DecodeHFSPlusForks(buf[forksStart:], be, 5)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "volumeheader.decodeHFSPlusHeader", err)
	}
	h.Allocation = fiveForks[0]
	h.Extents = fiveForks[1]
	h.Catalog = fiveForks[2]
	h.Attributes = fiveForks[3]
	h.Startup = fiveForks[4]

	if h.AllocationBlockSize < types.MinAllocationBlockSize {
		return nil, errs.New(errs.InvalidFormat, "volumeheader.decodeHFSPlusHeader",
			fmt.Errorf("allocation block size %d below minimum %d", h.AllocationBlockSize, types.MinAllocationBlockSize))
	}
	return h, nil
}

// decodeMasterDirectoryBlock decodes a classic HFS master directory block
// and synthesizes HFS+-shaped ForkDescriptors from its 3-extent records, so
// downstream code never branches on dialect again.
//
// Reference: libfshfs_master_directory_block.c field order.
func decodeMasterDirectoryBlock(buf []byte) (*types.VolumeHeader, error) {
	if len(buf) < 162 {
		return nil, errs.New(errs.InvalidFormat, "volumeheader.decodeMasterDirectoryBlock",
			fmt.Errorf("short master directory block: %d bytes", len(buf)))
	}
	be := binary.BigEndian

	h := &types.VolumeHeader{
		Signature:           be.Uint16(buf[0:2]),
		CreationTime:        be.Uint32(buf[2:6]),
		ModificationTime:    be.Uint32(buf[6:10]),
		AttributeFlags:      uint32(be.Uint16(buf[10:12])),
		AllocationBlockSize: types.ClassicAllocationBlockSize,
		NextCatalogID:       types.CatalogNodeID(be.Uint32(buf[30:34])),
		FreeBlocks:          uint32(be.Uint16(buf[34:36])),
		BackupTime:          be.Uint32(buf[64:68]),
		WriteCount:          be.Uint32(buf[70:74]),
		FileCount:           be.Uint32(buf[84:88]),
		FolderCount:         be.Uint32(buf[88:92]),
	}

	h.ExtentsStartBlock = uint32(be.Uint16(buf[28:30]))

	defaultClumpSize := be.Uint32(buf[24:28])
	h.DataClumpSize = defaultClumpSize
	h.ResourceClumpSize = defaultClumpSize

	totalAllocBlocks := uint32(be.Uint16(buf[18:20]))
	h.TotalBlocks = totalAllocBlocks

	nameLen := int(buf[36])
	if nameLen > 27 {
		nameLen = 27
	}
	h.VolumeLabel = textenc.DecodeMacRoman(buf[37 : 37+nameLen])

	h.Allocation = types.ForkDescriptor{
		TotalBlocks: (totalAllocBlocks + 4095) / 4096,
	}

	extentsExtents, err := forks.DecodeClassicExtents(buf[134:146], be)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "volumeheader.decodeMasterDirectoryBlock", err)
	}
	h.Extents = forks.AssembleClassicFork(be.Uint32(buf[130:134]), extentsExtents)
	h.Extents.ClumpSize = be.Uint32(buf[74:78])

	catalogExtents, err := forks.DecodeClassicExtents(buf[150:162], be)
	if err != nil {
		return nil, errs.New(errs.InvalidFormat, "volumeheader.decodeMasterDirectoryBlock", err)
	}
	h.Catalog = forks.AssembleClassicFork(be.Uint32(buf[146:150]), catalogExtents)
	h.Catalog.ClumpSize = be.Uint32(buf[78:82])

	return h, nil
}
