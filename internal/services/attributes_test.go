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

func attributesKeyHFSPlus(fileID types.CatalogNodeID, name string) []byte {
	be := binary.BigEndian
	units := make([]byte, 0, len(name)*2)
	for _, r := range name {
		units = append(units, byte(r>>8), byte(r))
	}
	const fixed = 2 + 4 + 4 + 2 // pad + file_id + start_block + name_length
	keyLen := fixed + len(units)
	buf := make([]byte, 2+keyLen)
	be.PutUint16(buf[0:2], uint16(keyLen))
	be.PutUint32(buf[4:8], uint32(fileID))
	be.PutUint16(buf[12:14], uint16(len(units)/2))
	copy(buf[14:], units)
	return buf
}

func inlineAttributeValue(data string) []byte {
	be := binary.BigEndian
	buf := make([]byte, 16+len(data))
	be.PutUint32(buf[0:4], types.AttributeKindInline)
	be.PutUint32(buf[12:16], uint32(len(data)))
	copy(buf[16:], data)
	return buf
}

func buildTestAttributes(t *testing.T) *AttributesService {
	t.Helper()

	records := []testutil.Record{
		testutil.CatalogRecord(
			attributesKeyHFSPlus(17, "com.apple.quarantine"),
			inlineAttributeValue("0081;deadbeef;Safari;"),
		),
		testutil.CatalogRecord(
			attributesKeyHFSPlus(17, "com.example.tag"),
			inlineAttributeValue("value"),
		),
		testutil.CatalogRecord(
			attributesKeyHFSPlus(18, "com.example.other"),
			inlineAttributeValue("other"),
		),
	}
	vol := testutil.BuildVolume(nil, 0)
	leaf := testutil.BuildNode(testutil.NodeSpec{Kind: types.KindLeaf, Records: records})
	copy(vol.Data[vol.CatalogTreeOffset+testutil.NodeSize:], leaf)

	src := &testutil.MemorySource{Data: vol.Data}
	fork := types.ForkDescriptor{
		LogicalSize: 2 * testutil.NodeSize,
		TotalBlocks: 2 * testutil.NodeSize / testutil.BlockSize,
		Extents: [8]types.ExtentDescriptor{
			{StartBlock: uint32(vol.CatalogTreeOffset / testutil.BlockSize), BlockCount: 2 * testutil.NodeSize / testutil.BlockSize},
		},
	}
	tree, err := btrees.Open(cache.TreeIDAttributes, src, fork, testutil.BlockSize, 0, 0, cache.NewNodeCache(8))
	require.NoError(t, err)

	svc, err := NewAttributesService(tree)
	require.NoError(t, err)
	return svc
}

func TestAttributesService_ListForFile(t *testing.T) {
	svc := buildTestAttributes(t)

	attrs, err := svc.ListForFile(17)
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	require.Equal(t, "com.apple.quarantine", attrs[0].Name)
	require.Equal(t, "com.example.tag", attrs[1].Name)
	require.True(t, attrs[0].Record.IsInline())
	require.Equal(t, "0081;deadbeef;Safari;", string(attrs[0].Record.InlineData))
}

func TestAttributesService_ListForFile_NoAttributes(t *testing.T) {
	svc := buildTestAttributes(t)

	attrs, err := svc.ListForFile(99)
	require.NoError(t, err)
	require.Empty(t, attrs)
}

func TestAttributesService_LookupByName(t *testing.T) {
	svc := buildTestAttributes(t)

	attr, err := svc.LookupByName(17, "com.example.tag")
	require.NoError(t, err)
	require.Equal(t, "value", string(attr.Record.InlineData))
}

func TestAttributesService_LookupByName_NotFound(t *testing.T) {
	svc := buildTestAttributes(t)

	_, err := svc.LookupByName(17, "com.example.missing")
	require.Error(t, err)
}
