package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-hfs/internal/cache"
	"github.com/deploymenttheory/go-hfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-hfs/internal/testutil"
	"github.com/deploymenttheory/go-hfs/internal/textenc"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

func buildTestCatalog(t *testing.T) *CatalogService {
	t.Helper()

	records := []testutil.Record{
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, ""),
			testutil.ThreadRecordValueHFSPlus(types.RecordTypeHFSPlusDirThread, types.RootParentID, "Macintosh HD"),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, "Documents"),
			testutil.DirectoryRecordValueHFSPlus(16, 1),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(16, ""),
			testutil.ThreadRecordValueHFSPlus(types.RecordTypeHFSPlusDirThread, types.RootFolderID, "Documents"),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(16, "notes.txt"),
			testutil.FileRecordValueHFSPlus(17, 10, 0, 0),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(17, ""),
			testutil.ThreadRecordValueHFSPlus(types.RecordTypeHFSPlusFileThread, 16, "notes.txt"),
		),
	}
	vol := testutil.BuildVolume(records, 0)
	src := &testutil.MemorySource{Data: vol.Data}

	fork := types.ForkDescriptor{
		LogicalSize: 2 * testutil.NodeSize,
		TotalBlocks: 2 * testutil.NodeSize / testutil.BlockSize,
		Extents: [8]types.ExtentDescriptor{
			{StartBlock: uint32(vol.CatalogTreeOffset / testutil.BlockSize), BlockCount: 2 * testutil.NodeSize / testutil.BlockSize},
		},
	}
	tree, err := btrees.Open(cache.TreeIDCatalog, src, fork, testutil.BlockSize, 0, 0, cache.NewNodeCache(8))
	require.NoError(t, err)

	svc, err := NewCatalogService(tree, true, textenc.CompareHFSPlusNames)
	require.NoError(t, err)
	return svc
}

func TestCatalogService_LookupByParentAndName(t *testing.T) {
	svc := buildTestCatalog(t)

	entry, err := svc.LookupByParentAndName(types.RootFolderID, "Documents")
	require.NoError(t, err)
	require.True(t, entry.IsDirectory())
	require.Equal(t, types.CatalogNodeID(16), entry.Identifier)
}

func TestCatalogService_LookupByParentAndName_NotFound(t *testing.T) {
	svc := buildTestCatalog(t)

	_, err := svc.LookupByParentAndName(types.RootFolderID, "Missing")
	require.Error(t, err)
}

func TestCatalogService_LookupByIdentifier(t *testing.T) {
	svc := buildTestCatalog(t)

	entry, err := svc.LookupByIdentifier(17)
	require.NoError(t, err)
	require.False(t, entry.IsDirectory())
	require.Equal(t, "notes.txt", entry.Name)
}

func TestCatalogService_ResolvePath(t *testing.T) {
	svc := buildTestCatalog(t)

	entry, err := svc.ResolvePath("/Documents/notes.txt")
	require.NoError(t, err)
	require.Equal(t, types.CatalogNodeID(17), entry.Identifier)
}

func TestCatalogService_ResolvePath_Root(t *testing.T) {
	svc := buildTestCatalog(t)

	entry, err := svc.ResolvePath("/")
	require.NoError(t, err)
	require.Equal(t, types.RootFolderID, entry.Identifier)
}

func TestCatalogService_ListAll(t *testing.T) {
	svc := buildTestCatalog(t)

	entries, err := svc.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestCatalogService_ListDirectory(t *testing.T) {
	svc := buildTestCatalog(t)

	entries, err := svc.ListDirectory(types.RootFolderID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Documents", entries[0].Name)
}
