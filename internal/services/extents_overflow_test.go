package services

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-hfs/internal/cache"
	"github.com/deploymenttheory/go-hfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-hfs/internal/testutil"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

func extentsOverflowKeyHFSPlus(fileID types.CatalogNodeID, forkType uint8, startBlock uint32) []byte {
	be := binary.BigEndian
	const keyLen = 1 + 1 + 4 + 4 // fork_type + pad + file_id + start_block
	buf := make([]byte, 2+keyLen)
	be.PutUint16(buf[0:2], uint16(keyLen))
	buf[2] = forkType
	be.PutUint32(buf[4:8], uint32(fileID))
	be.PutUint32(buf[8:12], startBlock)
	return buf
}

func extentsOverflowValueHFSPlus(descs ...types.ExtentDescriptor) []byte {
	be := binary.BigEndian
	buf := make([]byte, 64)
	for i := 0; i < 8 && i < len(descs); i++ {
		off := i * 8
		be.PutUint32(buf[off:off+4], descs[i].StartBlock)
		be.PutUint32(buf[off+4:off+8], descs[i].BlockCount)
	}
	return buf
}

func buildTestExtentsOverflow(t *testing.T) *ExtentsOverflowService {
	t.Helper()

	records := []testutil.Record{
		testutil.CatalogRecord(
			extentsOverflowKeyHFSPlus(42, types.ForkTypeData, 100),
			extentsOverflowValueHFSPlus(types.ExtentDescriptor{StartBlock: 5000, BlockCount: 50}),
		),
	}
	vol := testutil.BuildVolume(nil, 0)
	leaf := testutil.BuildNode(testutil.NodeSpec{Kind: types.KindLeaf, Records: records})
	// Overwrite the catalog tree's leaf slot (unused here) with our
	// extents-overflow leaf, reusing BuildVolume purely for its header and
	// node-0 layout plumbing.
	copy(vol.Data[vol.CatalogTreeOffset+testutil.NodeSize:], leaf)

	src := &testutil.MemorySource{Data: vol.Data}
	fork := types.ForkDescriptor{
		LogicalSize: 2 * testutil.NodeSize,
		TotalBlocks: 2 * testutil.NodeSize / testutil.BlockSize,
		Extents: [8]types.ExtentDescriptor{
			{StartBlock: uint32(vol.CatalogTreeOffset / testutil.BlockSize), BlockCount: 2 * testutil.NodeSize / testutil.BlockSize},
		},
	}
	tree, err := btrees.Open(cache.TreeIDExtents, src, fork, testutil.BlockSize, 0, 0, cache.NewNodeCache(8))
	require.NoError(t, err)

	svc, err := NewExtentsOverflowService(tree, true)
	require.NoError(t, err)
	return svc
}

func TestExtentsOverflowService_Lookup(t *testing.T) {
	svc := buildTestExtentsOverflow(t)

	descs, found, err := svc.Lookup(42, types.ForkTypeData, 100)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint32(5000), descs[0].StartBlock)
	require.Equal(t, uint32(50), descs[0].BlockCount)
}

func TestExtentsOverflowService_Lookup_Miss(t *testing.T) {
	svc := buildTestExtentsOverflow(t)

	_, found, err := svc.Lookup(42, types.ForkTypeData, 999)
	require.NoError(t, err)
	require.False(t, found)
}
