// Package keys decodes the three B-tree key shapes: catalog, extents, and
// attributes keys, in both the HFS+/HFSX (UTF-16BE name, u16 length
// prefix) and classic HFS (MacRoman Str31 name, u8 length prefix)
// dialects.
//
// Follows libfshfs_extents_btree_key.c and libfshfs_attributes_btree_key.c
// for field order, with one decode function per key kind returning a
// typed struct plus the number of bytes consumed.
package keys

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/textenc"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// DecodeCatalogKeyHFSPlus decodes an HFS+/HFSX catalog key: u16 key_length,
// u32 parent_id, u16 name_length (UTF-16 code units), name (UTF-16BE).
func DecodeCatalogKeyHFSPlus(buf []byte) (types.CatalogKey, int, error) {
	if len(buf) < 2 {
		return types.CatalogKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeCatalogKeyHFSPlus", fmt.Errorf("key buffer too short"))
	}
	be := binary.BigEndian
	keyLen := be.Uint16(buf[0:2])
	total := int(keyLen) + 2
	if len(buf) < total || total < 8 {
		return types.CatalogKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeCatalogKeyHFSPlus",
			fmt.Errorf("key_length %d implies %d bytes, have %d", keyLen, total, len(buf)))
	}
	parentID := types.CatalogNodeID(be.Uint32(buf[2:6]))
	nameLen := int(be.Uint16(buf[6:8]))
	nameStart := 8
	nameEnd := nameStart + nameLen*2
	if nameEnd > total {
		return types.CatalogKey{}, 0, errs.New(errs.Corruption, "keys.DecodeCatalogKeyHFSPlus",
			fmt.Errorf("name_length %d overruns key_length %d", nameLen, keyLen))
	}
	name := decodeUTF16BE(buf[nameStart:nameEnd])
	return types.CatalogKey{ParentID: parentID, Name: name, KeyLength: keyLen}, total, nil
}

// DecodeCatalogKeyClassic decodes a classic HFS catalog key: u8 key_length,
// u8 reserved, u32 parent_id, u8 name_length, up to 31 bytes of MacRoman
// name (Pascal string).
func DecodeCatalogKeyClassic(buf []byte) (types.CatalogKey, int, error) {
	if len(buf) < 7 {
		return types.CatalogKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeCatalogKeyClassic", fmt.Errorf("key buffer too short"))
	}
	be := binary.BigEndian
	keyLen := int(buf[0])
	total := keyLen + 1
	if len(buf) < total {
		return types.CatalogKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeCatalogKeyClassic",
			fmt.Errorf("key_length %d implies %d bytes, have %d", keyLen, total, len(buf)))
	}
	parentID := types.CatalogNodeID(be.Uint32(buf[2:6]))
	nameLen := int(buf[6])
	if nameLen > 31 {
		nameLen = 31
	}
	nameStart := 7
	nameEnd := nameStart + nameLen
	if nameEnd > total {
		return types.CatalogKey{}, 0, errs.New(errs.Corruption, "keys.DecodeCatalogKeyClassic",
			fmt.Errorf("name_length %d overruns key_length %d", nameLen, keyLen))
	}
	name := textenc.DecodeMacRoman(buf[nameStart:nameEnd])
	return types.CatalogKey{ParentID: parentID, Name: name, KeyLength: uint16(keyLen)}, total, nil
}

// DecodeExtentsKeyHFSPlus decodes an HFS+/HFSX extents-overflow key: u16
// key_length, u8 fork_type, u8 pad, u32 file_id, u32 start_block.
func DecodeExtentsKeyHFSPlus(buf []byte) (types.ExtentsKey, int, error) {
	if len(buf) < 2 {
		return types.ExtentsKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeExtentsKeyHFSPlus", fmt.Errorf("key buffer too short"))
	}
	be := binary.BigEndian
	keyLen := be.Uint16(buf[0:2])
	total := int(keyLen) + 2
	if len(buf) < total || total < 12 {
		return types.ExtentsKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeExtentsKeyHFSPlus",
			fmt.Errorf("key_length %d implies %d bytes, have %d", keyLen, total, len(buf)))
	}
	return types.ExtentsKey{
		ForkType:   buf[2],
		FileID:     types.CatalogNodeID(be.Uint32(buf[4:8])),
		StartBlock: be.Uint32(buf[8:12]),
	}, total, nil
}

// DecodeExtentsKeyClassic decodes a classic HFS extents key: u8 key_length,
// u8 fork_type, u32 file_id, u16 start_block.
func DecodeExtentsKeyClassic(buf []byte) (types.ExtentsKey, int, error) {
	if len(buf) < 8 {
		return types.ExtentsKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeExtentsKeyClassic", fmt.Errorf("key buffer too short"))
	}
	be := binary.BigEndian
	keyLen := int(buf[0])
	total := keyLen + 1
	if len(buf) < total {
		return types.ExtentsKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeExtentsKeyClassic",
			fmt.Errorf("key_length %d implies %d bytes, have %d", keyLen, total, len(buf)))
	}
	return types.ExtentsKey{
		ForkType:   buf[1],
		FileID:     types.CatalogNodeID(be.Uint32(buf[2:6])),
		StartBlock: uint32(be.Uint16(buf[6:8])),
	}, total, nil
}

// DecodeAttributesKey decodes an HFS+/HFSX attributes key (classic HFS has
// no attributes B-tree): u16 key_length, u16 pad, u32 file_id, u32
// start_block (always 0 for the record's own key), u16 name_length, name
// (UTF-16BE).
func DecodeAttributesKey(buf []byte) (types.AttributesKey, int, error) {
	if len(buf) < 2 {
		return types.AttributesKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeAttributesKey", fmt.Errorf("key buffer too short"))
	}
	be := binary.BigEndian
	keyLen := be.Uint16(buf[0:2])
	total := int(keyLen) + 2
	if len(buf) < total || total < 16 {
		return types.AttributesKey{}, 0, errs.New(errs.InvalidFormat, "keys.DecodeAttributesKey",
			fmt.Errorf("key_length %d implies %d bytes, have %d", keyLen, total, len(buf)))
	}
	fileID := types.CatalogNodeID(be.Uint32(buf[4:8]))
	nameLen := int(be.Uint16(buf[12:14]))
	nameStart := 14
	nameEnd := nameStart + nameLen*2
	if nameEnd > total {
		return types.AttributesKey{}, 0, errs.New(errs.Corruption, "keys.DecodeAttributesKey",
			fmt.Errorf("name_length %d overruns key_length %d", nameLen, keyLen))
	}
	name := decodeUTF16BE(buf[nameStart:nameEnd])
	return types.AttributesKey{FileID: fileID, Name: name}, total, nil
}

func decodeUTF16BE(buf []byte) string {
	units := make([]uint16, len(buf)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(buf[i*2 : i*2+2])
	}
	return string(utf16.Decode(units))
}
