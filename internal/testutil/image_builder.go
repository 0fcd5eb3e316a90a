// Package testutil assembles synthetic in-memory HFS+/HFSX volume images
// for scenario tests, building raw struct bytes by hand with
// binary.BigEndian.PutUintN rather than shipping binary fixture files.
//
// A built image carries exactly one allocation block size (512, matching
// ClassicAllocationBlockSize so both dialects' tests can share the same
// block arithmetic), a single-node catalog B-tree (root is itself a leaf),
// and no extents-overflow or attributes records — callers needing those
// wire their own nodes against the extent ranges this package returns.
package testutil

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-hfs/internal/types"
)

// BlockSize is the allocation block size every image built by this package
// uses.
const BlockSize = 512

// NodeSize is the fixed node size of every B-tree built by this package,
// large enough to hold the handful of catalog records the scenario tests
// need in a single leaf node.
const NodeSize = 4096

// MemorySource is an in-memory interfaces.ByteSource backed by a plain
// byte slice, a minimal stand-in for a real device
// (internal/parsers/btrees/file_test.go's memSource).
type MemorySource struct{ Data []byte }

// ReadAt implements interfaces.ByteSource.
func (m *MemorySource) ReadAt(buf []byte, offset int64) (int, error) {
	n := copy(buf, m.Data[offset:])
	return n, nil
}

// Size implements interfaces.ByteSource.
func (m *MemorySource) Size() int64 { return int64(len(m.Data)) }

// Record is one record to place in a built node, already fully encoded
// (key bytes followed by value bytes, or a bare header/map record).
type Record []byte

// NodeSpec describes one node of a built B-tree.
type NodeSpec struct {
	Kind    types.NodeKind
	Height  uint8
	Next    uint32
	Prev    uint32
	Records []Record
}

// BuildNode encodes one NodeSize-byte B-tree node from a NodeSpec, laying
// out the descriptor, concatenated records, and the trailing
// descending-order offset table exactly as btrees.DecodeNode expects.
func BuildNode(spec NodeSpec) []byte {
	be := binary.BigEndian
	var body []byte
	starts := make([]uint16, len(spec.Records))
	for i, r := range spec.Records {
		starts[i] = uint16(14 + len(body))
		body = append(body, r...)
	}
	end := uint16(14 + len(body))

	buf := make([]byte, NodeSize)
	be.PutUint32(buf[0:4], spec.Next)
	be.PutUint32(buf[4:8], spec.Prev)
	buf[8] = byte(int8(spec.Kind))
	buf[9] = spec.Height
	be.PutUint16(buf[10:12], uint16(len(spec.Records)))
	copy(buf[14:], body)

	tableStart := len(buf) - 2*(len(spec.Records)+1)
	be.PutUint16(buf[tableStart:tableStart+2], end)
	for i := 0; i < len(spec.Records); i++ {
		off := tableStart + (i+1)*2
		be.PutUint16(buf[off:off+2], starts[len(spec.Records)-1-i])
	}
	return buf
}

// BuildHeaderNode encodes node 0 of a B-tree: a header record naming the
// root node (also recorded as the first and last leaf, since the root is
// itself a leaf), node size, and total node count. The node holds only
// that one record (no reserved or map record), so RecordCount() == 1.
func BuildHeaderNode(rootNode, totalNodes uint32) []byte {
	be := binary.BigEndian
	record := make([]byte, 106)
	be.PutUint16(record[0:2], 1)
	be.PutUint32(record[2:6], rootNode)
	be.PutUint32(record[10:14], rootNode)
	be.PutUint32(record[14:18], rootNode)
	be.PutUint16(record[18:20], NodeSize)
	be.PutUint32(record[22:26], totalNodes)
	return BuildNode(NodeSpec{Kind: types.KindHeader, Records: []Record{record}})
}

// CatalogKeyHFSPlus encodes an HFS+/HFSX catalog key: u16 key_length, u32
// parent_id, u16 name_length, UTF-16BE name.
func CatalogKeyHFSPlus(parentID types.CatalogNodeID, name string) []byte {
	be := binary.BigEndian
	units := utf16BE(name)
	keyLen := 4 + 2 + len(units)
	buf := make([]byte, 2+keyLen)
	be.PutUint16(buf[0:2], uint16(keyLen))
	be.PutUint32(buf[2:6], uint32(parentID))
	be.PutUint16(buf[6:8], uint16(len(units)/2))
	copy(buf[8:], units)
	return buf
}

func utf16BE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		if r > 0xFFFF {
			r = '?'
		}
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

// ThreadRecordValueHFSPlus encodes a directory or file thread record value:
// u16 record type, u16 reserved, u32 parent_id, u16 name_length, UTF-16BE
// name.
func ThreadRecordValueHFSPlus(recordType uint16, parentID types.CatalogNodeID, name string) []byte {
	be := binary.BigEndian
	units := utf16BE(name)
	buf := make([]byte, 10+len(units))
	be.PutUint16(buf[0:2], recordType)
	be.PutUint32(buf[4:8], uint32(parentID))
	be.PutUint16(buf[8:10], uint16(len(units)/2))
	copy(buf[10:], units)
	return buf
}

// DirectoryRecordValueHFSPlus encodes an 88-byte HFS+ directory record
// value for the given folder id and valence, leaving timestamps, finder
// info, and permissions zeroed.
func DirectoryRecordValueHFSPlus(folderID types.CatalogNodeID, valence uint32) []byte {
	be := binary.BigEndian
	buf := make([]byte, 88)
	be.PutUint16(buf[0:2], types.RecordTypeHFSPlusDirectory)
	be.PutUint32(buf[4:8], valence)
	be.PutUint32(buf[8:12], uint32(folderID))
	return buf
}

// FileRecordValueHFSPlus encodes a 248-byte HFS+ file record value for the
// given file id, with a single-extent inline data fork covering
// dataBlocks allocation blocks starting at dataStartBlock, sized
// logicalSize bytes.
func FileRecordValueHFSPlus(fileID types.CatalogNodeID, logicalSize uint64, dataStartBlock, dataBlocks uint32) []byte {
	be := binary.BigEndian
	buf := make([]byte, 248)
	be.PutUint16(buf[0:2], types.RecordTypeHFSPlusFile)
	be.PutUint32(buf[8:12], uint32(fileID))

	const dataForkOffset = 88
	be.PutUint64(buf[dataForkOffset:dataForkOffset+8], logicalSize)
	be.PutUint32(buf[dataForkOffset+12:dataForkOffset+16], dataBlocks)
	if dataBlocks > 0 {
		be.PutUint32(buf[dataForkOffset+16:dataForkOffset+20], dataStartBlock)
		be.PutUint32(buf[dataForkOffset+20:dataForkOffset+24], dataBlocks)
	}
	return buf
}

// HardLinkFileRecordValueHFSPlus encodes a 248-byte HFS+ file record value
// for a hard-link file: RecordFlagIsHardLink set, Finder file
// type/creator "hlnk"/"hfs+", and special_permissions holding
// linkIdentifier, the private inode number ResolveHardLink resolves
// against. The data fork descriptor is left zeroed, matching a real hard
// link's own record, whose fork data is never read.
func HardLinkFileRecordValueHFSPlus(fileID types.CatalogNodeID, linkIdentifier uint32) []byte {
	be := binary.BigEndian
	buf := make([]byte, 248)
	be.PutUint16(buf[0:2], types.RecordTypeHFSPlusFile)
	be.PutUint16(buf[2:4], types.RecordFlagIsHardLink)
	be.PutUint32(buf[8:12], uint32(fileID))
	be.PutUint32(buf[44:48], linkIdentifier)
	copy(buf[48:52], []byte(types.HardLinkFileType))
	copy(buf[52:56], []byte(types.HardLinkFileCreator))
	return buf
}

// Volume lays out a complete minimal HFS+ volume image: the 1024-byte
// header region, a single-node catalog B-tree (root node is a leaf holding
// catalogRecords), an empty extents-overflow B-tree wired into the header
// so services.OpenVolume can open the volume end-to-end, and a data region
// immediately after both trees that File content bytes can be placed into
// via DataRegionOffset. The header's attributes fork is left zeroed, which
// services.OpenVolume treats as "no attributes tree" on this volume.
type Volume struct {
	Data              []byte
	CatalogTreeOffset int64
	ExtentsTreeOffset int64
	DataRegionOffset  int64
}

// BuildVolume assembles the header, a one-node catalog B-tree whose leaf
// root holds catalogRecords (already key+value encoded, in key order),
// and an empty extents-overflow B-tree. dataRegionBlocks reserves that
// many allocation blocks after both trees for file content.
func BuildVolume(catalogRecords []Record, dataRegionBlocks uint32) *Volume {
	be := binary.BigEndian

	const headerRegionBlocks = 1024/BlockSize + 1 // header sits at byte 1024
	headerBlocks := uint32(headerRegionBlocks)
	treeBlocks := uint32(2 * NodeSize / BlockSize) // header node + leaf node, per tree
	catalogStartBlock := headerBlocks
	extentsStartBlock := catalogStartBlock + treeBlocks
	dataStartBlock := extentsStartBlock + treeBlocks

	totalBlocks := dataStartBlock + dataRegionBlocks
	data := make([]byte, int64(totalBlocks)*BlockSize)

	header := make([]byte, 512)
	be.PutUint16(header[0:2], types.SignatureHFSPlus)
	be.PutUint32(header[32:36], BlockSize)
	be.PutUint32(header[36:40], totalBlocks)
	be.PutUint32(header[56:60], uint32(types.FirstUserCatalogNodeID))

	const forksStart = 104
	// Fork descriptors are laid out allocation, extents, catalog,
	// attributes, startup, each 80 bytes.
	extentsForkOffset := forksStart + 1*80
	be.PutUint64(header[extentsForkOffset:extentsForkOffset+8], uint64(treeBlocks)*BlockSize)
	be.PutUint32(header[extentsForkOffset+12:extentsForkOffset+16], treeBlocks)
	be.PutUint32(header[extentsForkOffset+16:extentsForkOffset+20], extentsStartBlock)
	be.PutUint32(header[extentsForkOffset+20:extentsForkOffset+24], treeBlocks)

	catalogForkOffset := forksStart + 2*80
	be.PutUint64(header[catalogForkOffset:catalogForkOffset+8], uint64(treeBlocks)*BlockSize)
	be.PutUint32(header[catalogForkOffset+12:catalogForkOffset+16], treeBlocks)
	be.PutUint32(header[catalogForkOffset+16:catalogForkOffset+20], catalogStartBlock)
	be.PutUint32(header[catalogForkOffset+20:catalogForkOffset+24], treeBlocks)
	copy(data[1024:1024+len(header)], header)

	catalogHeaderNode := BuildHeaderNode(1, 2)
	catalogLeafNode := BuildNode(NodeSpec{Kind: types.KindLeaf, Records: catalogRecords})
	catalogOffset := int64(catalogStartBlock) * BlockSize
	copy(data[catalogOffset:], catalogHeaderNode)
	copy(data[catalogOffset+NodeSize:], catalogLeafNode)

	extentsHeaderNode := BuildHeaderNode(1, 2)
	extentsLeafNode := BuildNode(NodeSpec{Kind: types.KindLeaf, Records: nil})
	extentsOffset := int64(extentsStartBlock) * BlockSize
	copy(data[extentsOffset:], extentsHeaderNode)
	copy(data[extentsOffset+NodeSize:], extentsLeafNode)

	return &Volume{
		Data:              data,
		CatalogTreeOffset: catalogOffset,
		ExtentsTreeOffset: extentsOffset,
		DataRegionOffset:  int64(dataStartBlock) * BlockSize,
	}
}

// CatalogRecord concatenates an encoded key and value into one leaf
// record, the shape btrees.DecodeNode's Record(i) returns and the
// catalog key/record decoders expect.
func CatalogRecord(key, value []byte) Record {
	out := make([]byte, 0, len(key)+len(value))
	out = append(out, key...)
	out = append(out, value...)
	return Record(out)
}
