package btrees

import (
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-hfs/internal/cache"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

type memSource struct{ data []byte }

func (m memSource) ReadAt(buf []byte, offset int64) (int, error) {
	n := copy(buf, m.data[offset:])
	return n, nil
}

func (m memSource) Size() int64 { return int64(len(m.data)) }

const testNodeSize = 512

func buildHeaderNode(rootNode, totalNodes uint32) []byte {
	record := make([]byte, 106)
	be := binary.BigEndian
	be.PutUint16(record[0:2], 1) // tree depth
	be.PutUint32(record[2:6], rootNode)
	be.PutUint16(record[18:20], testNodeSize)
	be.PutUint32(record[22:26], totalNodes)

	return buildTestNode(types.KindHeader, [][]byte{record})
}

func padToNodeSize(buf []byte) []byte {
	out := make([]byte, testNodeSize)
	tableBytes := 2 * (int(binary.BigEndian.Uint16(buf[10:12])) + 1)
	copy(out, buf[:len(buf)-tableBytes])
	copy(out[testNodeSize-tableBytes:], buf[len(buf)-tableBytes:])
	return out
}

func buildTestVolume(header, leaf []byte) ([]byte, types.ForkDescriptor) {
	const base = 2048
	vol := make([]byte, base+2*testNodeSize)
	copy(vol[base:], padToNodeSize(header))
	copy(vol[base+testNodeSize:], padToNodeSize(leaf))

	fork := types.ForkDescriptor{
		LogicalSize: 2 * testNodeSize,
		TotalBlocks: 2 * testNodeSize / 512,
		Extents: [8]types.ExtentDescriptor{
			{StartBlock: uint32(base / 512), BlockCount: 2 * testNodeSize / 512},
		},
	}
	return vol, fork
}

func TestFile_OpenAndReadNodes(t *testing.T) {
	header := buildHeaderNode(1, 2)
	leaf := buildTestNode(types.KindLeaf, [][]byte{[]byte("leafrecord")})

	vol, fork := buildTestVolume(header, leaf)
	src := memSource{data: vol}

	f, err := Open(cache.TreeIDCatalog, src, fork, 512, 0, 0, cache.NewNodeCache(8))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if f.NodeSize() != testNodeSize {
		t.Fatalf("NodeSize() = %d, want %d", f.NodeSize(), testNodeSize)
	}
	if f.Header().RootNode != 1 {
		t.Fatalf("RootNode = %d, want 1", f.Header().RootNode)
	}

	root, err := f.GetRootNode()
	if err != nil {
		t.Fatalf("GetRootNode: %v", err)
	}
	if types.NodeKind(root.Kind()) != types.KindLeaf {
		t.Errorf("root Kind() = %v, want leaf", types.NodeKind(root.Kind()))
	}
	if root.RecordCount() != 1 || string(root.Record(0)) != "leafrecord" {
		t.Errorf("unexpected root record: %v", root.RecordCount())
	}
}

func TestFile_GetNodeByNumber_OutOfRange(t *testing.T) {
	header := buildHeaderNode(1, 2)
	leaf := buildTestNode(types.KindLeaf, [][]byte{[]byte("leafrecord")})
	vol, fork := buildTestVolume(header, leaf)
	src := memSource{data: vol}

	f, err := Open(cache.TreeIDCatalog, src, fork, 512, 0, 0, cache.NewNodeCache(8))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := f.GetNodeByNumber(50, 0); err == nil {
		t.Fatalf("expected out-of-range error for node 50")
	}
}

func TestFile_GetNodeByNumber_RecursionDepthGuard(t *testing.T) {
	header := buildHeaderNode(1, 2)
	leaf := buildTestNode(types.KindLeaf, [][]byte{[]byte("leafrecord")})
	vol, fork := buildTestVolume(header, leaf)
	src := memSource{data: vol}

	f, err := Open(cache.TreeIDCatalog, src, fork, 512, 0, 0, cache.NewNodeCache(8))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := f.GetNodeByNumber(1, types.MaxBTreeRecursionDepth+1); err == nil {
		t.Fatalf("expected recursion depth guard to trip")
	}
}
