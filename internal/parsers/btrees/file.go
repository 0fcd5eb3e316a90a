package btrees

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/deploymenttheory/go-hfs/internal/cache"
	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/parsers/extents"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// File is a B-tree file reader: given the fork that holds the tree's
// nodes, it resolves and caches individual nodes by number, keyed by a
// fixed per-tree node size read from the header node itself.
type File struct {
	treeID              int
	source              interfaces.ByteSource
	fork                types.ForkDescriptor
	allocationBlockSize uint32
	volumeOffset        int64
	extentsStartBlock   uint32

	nodeSize uint32
	header   *types.BTreeHeaderRecord
	cache    *cache.NodeCache
	abort    *int32
}

// SetAbortFlag wires a shared cooperative-cancellation flag: every
// subsequent GetNodeByNumber call checks it before doing any I/O and
// fails fast with errs.Aborted once it is set. Several trees opened
// against the same volume share one flag so a single Volume.SignalAbort
// call reaches every in-flight descent.
func (f *File) SetAbortFlag(flag *int32) { f.abort = flag }

// Open resolves the fork's inline extents (metadata files never overflow
// them) and reads node 0 to learn the tree's node size and header record.
func Open(treeID int, src interfaces.ByteSource, fork types.ForkDescriptor, allocationBlockSize uint32, volumeOffset int64, extentsStartBlock uint32, nodeCache *cache.NodeCache) (*File, error) {
	f := &File{
		treeID:              treeID,
		source:              src,
		fork:                fork,
		allocationBlockSize: allocationBlockSize,
		volumeOffset:        volumeOffset,
		extentsStartBlock:   extentsStartBlock,
		cache:               nodeCache,
	}

	ranges, err := extents.Resolve(fork, 0, 0, allocationBlockSize, volumeOffset, extentsStartBlock, nil)
	if err != nil {
		return nil, err
	}
	if len(ranges) == 0 || ranges[0].Length < descriptorSize {
		return nil, errs.New(errs.Corruption, "btrees.Open", fmt.Errorf("B-tree file has no readable node 0"))
	}

	// The header record's node_size field sits at a fixed byte offset
	// (descriptorSize + 18) regardless of the tree's actual node size, so
	// a small fixed-size peek is enough to learn how many bytes node 0
	// really occupies before reading it in full.
	const nodeSizeFieldEnd = descriptorSize + 20
	peek := make([]byte, nodeSizeFieldEnd)
	if _, err := src.ReadAt(peek, ranges[0].Offset); err != nil {
		return nil, errs.New(errs.IoError, "btrees.Open", err)
	}
	nodeSize := binary.BigEndian.Uint16(peek[descriptorSize+18 : descriptorSize+20])
	if nodeSize == 0 {
		return nil, errs.New(errs.Corruption, "btrees.Open", fmt.Errorf("B-tree header node reports a zero node size"))
	}
	if ranges[0].Length < int64(nodeSize) {
		return nil, errs.New(errs.Corruption, "btrees.Open", fmt.Errorf("B-tree file is smaller than its own node size"))
	}

	full := make([]byte, nodeSize)
	if _, err := src.ReadAt(full, ranges[0].Offset); err != nil {
		return nil, errs.New(errs.IoError, "btrees.Open", err)
	}
	_, hdr, err := ReadHeaderNode(full)
	if err != nil {
		return nil, err
	}
	f.nodeSize = uint32(hdr.NodeSize)
	f.header = hdr

	return f, nil
}

// Header returns the tree's decoded header record.
func (f *File) Header() *types.BTreeHeaderRecord { return f.header }

// NodeSize returns the fixed size in bytes of every node in this tree.
func (f *File) NodeSize() uint32 { return f.nodeSize }

// GetRootNode returns the tree's root node.
func (f *File) GetRootNode() (interfaces.HFSNode, error) {
	return f.GetNodeByNumber(f.header.RootNode, 0)
}

// GetNodeByNumber reads and decodes the node at the given node number,
// consulting the cache first. depth is the caller's current recursion
// depth, used to enforce types.MaxBTreeRecursionDepth as a guard against
// cyclic sibling/child links.
func (f *File) GetNodeByNumber(nodeNumber uint32, depth int) (interfaces.HFSNode, error) {
	if f.abort != nil && atomic.LoadInt32(f.abort) != 0 {
		return nil, errs.New(errs.Aborted, "btrees.File.GetNodeByNumber",
			fmt.Errorf("volume abort signaled while fetching node %d", nodeNumber))
	}
	if depth > types.MaxBTreeRecursionDepth {
		return nil, errs.New(errs.Corruption, "btrees.File.GetNodeByNumber",
			fmt.Errorf("exceeded max B-tree recursion depth (%d) reading node %d", types.MaxBTreeRecursionDepth, nodeNumber))
	}

	key := cache.NodeKey{TreeID: f.treeID, NodeNumber: nodeNumber}
	if f.cache != nil {
		if n, ok := f.cache.Get(key); ok {
			return n, nil
		}
	}

	byteOffset := int64(nodeNumber) * int64(f.nodeSize)
	if uint64(nodeNumber)*uint64(f.nodeSize) >= f.fork.LogicalSize {
		return nil, errs.New(errs.OutOfRange, "btrees.File.GetNodeByNumber",
			fmt.Errorf("node number %d is past the end of the tree file", nodeNumber))
	}

	ranges, err := extents.Resolve(f.fork, 0, 0, f.allocationBlockSize, f.volumeOffset, f.extentsStartBlock, nil)
	if err != nil {
		return nil, err
	}
	spans, err := extents.RangeForSpan(ranges, byteOffset, int64(f.nodeSize))
	if err != nil {
		return nil, errs.New(errs.Corruption, "btrees.File.GetNodeByNumber", err)
	}

	buf := make([]byte, 0, f.nodeSize)
	for _, s := range spans {
		chunk := make([]byte, s.Length)
		if _, err := f.source.ReadAt(chunk, s.Offset); err != nil {
			return nil, errs.New(errs.IoError, "btrees.File.GetNodeByNumber", err)
		}
		buf = append(buf, chunk...)
	}

	n, err := DecodeNode(buf)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		f.cache.Put(key, n)
	}
	return n, nil
}
