// Package btrees implements the generic B-tree node decoder shared by the
// catalog, extents, and attributes B-trees, the header node reader, and a
// B-tree file reader that walks nodes through the extent resolver with a
// bounded recursion depth.
//
// Modeled on a BTreeNodeReader/BTreeNavigator shape (a private struct
// built via NewXReader, exposing descriptor fields as methods) — the node
// layout itself (14-byte descriptor, trailing record-offset table,
// forward/backward links) is Apple TN1150's BTNodeDescriptor.
package btrees

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// descriptorSize is the fixed size of a B-tree node descriptor.
const descriptorSize = 14

// node is the decoded form of one B-tree node: its descriptor plus the
// record byte ranges derived from the node's trailing offset table.
type node struct {
	descriptor types.NodeDescriptor
	records    [][]byte
	data       []byte
}

var _ interfaces.HFSNode = node{}

func (n node) Kind() int8 { return int8(n.descriptor.Kind) }

func (n node) Height() uint8 { return n.descriptor.Level }

func (n node) RecordCount() int { return len(n.records) }

func (n node) Record(i int) []byte { return n.records[i] }

func (n node) ForwardLink() uint32 { return n.descriptor.NextNode }

func (n node) BackwardLink() uint32 { return n.descriptor.PrevNode }

// DecodeNode decodes one nodeSize-byte B-tree node: the 14-byte descriptor,
// followed by records, followed by a trailing table of big-endian uint16
// record offsets (one per record plus a final free-space offset), read
// backwards from the end of the node.
//
// Reference: Apple TN1150 "B-Tree Node Descriptor".
func DecodeNode(buf []byte) (interfaces.HFSNode, error) {
	if len(buf) < descriptorSize {
		return nil, errs.New(errs.InvalidFormat, "btrees.DecodeNode",
			fmt.Errorf("node truncated: need at least %d bytes, have %d", descriptorSize, len(buf)))
	}
	be := binary.BigEndian

	desc := types.NodeDescriptor{
		NextNode:    be.Uint32(buf[0:4]),
		PrevNode:    be.Uint32(buf[4:8]),
		Kind:        types.NodeKind(int8(buf[8])),
		Level:       buf[9],
		RecordCount: be.Uint16(buf[10:12]),
	}

	recordCount := int(desc.RecordCount)
	if recordCount == 0 {
		return node{descriptor: desc, data: buf}, nil
	}

	// The offset table holds recordCount+1 big-endian uint16 entries,
	// trailing the node, in descending-offset order: offsets[0] is the
	// last record's end (== free space start), offsets[recordCount] is
	// record 0's start.
	tableBytes := 2 * (recordCount + 1)
	if len(buf) < tableBytes {
		return nil, errs.New(errs.Corruption, "btrees.DecodeNode",
			fmt.Errorf("node too small to hold %d record offsets", recordCount+1))
	}
	tableStart := len(buf) - tableBytes

	offsets := make([]uint16, recordCount+1)
	for i := range offsets {
		off := tableStart + i*2
		offsets[i] = be.Uint16(buf[off : off+2])
	}

	// offsets are stored last-to-first; records[i] spans
	// [offsets[recordCount-i], offsets[recordCount-i-1]).
	records := make([][]byte, recordCount)
	prevOffset := uint16(0)
	for i := 0; i < recordCount; i++ {
		start := offsets[recordCount-i]
		end := offsets[recordCount-i-1]
		if i > 0 && start < prevOffset {
			return nil, errs.New(errs.Corruption, "btrees.DecodeNode",
				fmt.Errorf("record offset table is not monotonic at record %d", i))
		}
		if int(end) > len(buf) || int(start) > int(end) {
			return nil, errs.New(errs.Corruption, "btrees.DecodeNode",
				fmt.Errorf("record %d offset range [%d,%d) out of bounds for %d-byte node", i, start, end, len(buf)))
		}
		records[i] = buf[start:end]
		prevOffset = start
	}

	return node{descriptor: desc, records: records, data: buf}, nil
}
