package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/testutil"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

func buildTestVolumeImage() *testutil.Volume {
	records := []testutil.Record{
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, ""),
			testutil.ThreadRecordValueHFSPlus(types.RecordTypeHFSPlusDirThread, types.RootParentID, "Macintosh HD"),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, "notes.txt"),
			testutil.FileRecordValueHFSPlus(16, 5, 0, 0),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(16, ""),
			testutil.ThreadRecordValueHFSPlus(types.RecordTypeHFSPlusFileThread, types.RootFolderID, "notes.txt"),
		),
	}
	return testutil.BuildVolume(records, 0)
}

func TestOpenVolume(t *testing.T) {
	vol := buildTestVolumeImage()
	src := &testutil.MemorySource{Data: vol.Data}

	v, err := OpenVolume(src, 8)
	require.NoError(t, err)
	require.Equal(t, VolumeStateOpen, v.State())
	require.True(t, v.IsHFSPlus())

	entry, err := v.Catalog.LookupByParentAndName(types.RootFolderID, "notes.txt")
	require.NoError(t, err)
	require.Equal(t, types.CatalogNodeID(16), entry.Identifier)

	_, found, err := v.Extents.Lookup(16, types.ForkTypeData, 999)
	require.NoError(t, err)
	require.False(t, found)

	require.Nil(t, v.Attrs)
}

func TestVolume_SignalAbort(t *testing.T) {
	vol := buildTestVolumeImage()
	src := &testutil.MemorySource{Data: vol.Data}

	v, err := OpenVolume(src, 8)
	require.NoError(t, err)

	v.SignalAbort()
	_, err = v.Catalog.LookupByParentAndName(types.RootFolderID, "notes.txt")
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrAborted))
}

func TestVolume_Close(t *testing.T) {
	vol := buildTestVolumeImage()
	src := &testutil.MemorySource{Data: vol.Data}

	v, err := OpenVolume(src, 8)
	require.NoError(t, err)
	require.NoError(t, v.Close())
	require.Equal(t, VolumeStateClosed, v.State())
}
