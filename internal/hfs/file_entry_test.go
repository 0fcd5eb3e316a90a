package hfs

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-hfs/internal/services"
	"github.com/deploymenttheory/go-hfs/internal/testutil"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

func openTestVolumeWithContent(t *testing.T, content []byte) (*Volume, *FileEntry) {
	t.Helper()

	blocks := uint32((len(content) + testutil.BlockSize - 1) / testutil.BlockSize)
	vol := testutil.BuildVolume(nil, blocks)

	dataStartBlock := uint32(vol.DataRegionOffset / testutil.BlockSize)
	fileRecords := []testutil.Record{
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootParentID, "Macintosh HD"),
			testutil.DirectoryRecordValueHFSPlus(types.RootFolderID, 1),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, ""),
			testutil.ThreadRecordValueHFSPlus(types.RecordTypeHFSPlusDirThread, types.RootParentID, "Macintosh HD"),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, "data.bin"),
			testutil.FileRecordValueHFSPlus(20, uint64(len(content)), dataStartBlock, blocks),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(20, ""),
			testutil.ThreadRecordValueHFSPlus(types.RecordTypeHFSPlusFileThread, types.RootFolderID, "data.bin"),
		),
	}
	leaf := testutil.BuildNode(testutil.NodeSpec{Kind: types.KindLeaf, Records: fileRecords})
	copy(vol.Data[vol.CatalogTreeOffset+testutil.NodeSize:], leaf)
	copy(vol.Data[vol.DataRegionOffset:], content)

	src := &testutil.MemorySource{Data: vol.Data}
	v, err := OpenSource(src, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	entry, err := v.EntryByPath("/data.bin")
	require.NoError(t, err)
	return v, entry
}

func TestFileEntry_ReadAndSeek(t *testing.T) {
	content := []byte("the quick brown fox")
	_, entry := openTestVolumeWithContent(t, content)

	size, err := entry.GetSize()
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), size)

	buf := make([]byte, len(content))
	n, err := entry.ReadBuffer(buf)
	require.NoError(t, err)
	require.Equal(t, len(content), n)
	require.Equal(t, content, buf)

	pos, err := entry.SeekOffset(4, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	buf2 := make([]byte, 5)
	_, err = entry.ReadBuffer(buf2)
	require.NoError(t, err)
	require.Equal(t, "quick", string(buf2))
}

func TestFileEntry_Timestamps(t *testing.T) {
	_, entry := openTestVolumeWithContent(t, []byte("x"))

	require.False(t, entry.GetCreationTime().IsZero())
	require.False(t, entry.GetModificationTime().IsZero())

	_, err := entry.GetEntryModificationTime()
	require.NoError(t, err)

	_, err = entry.GetAddedTime()
	require.Error(t, err)
}

func TestFileEntry_ExtendedAttributes_NoneOnVolumeWithoutAttrsTree(t *testing.T) {
	_, entry := openTestVolumeWithContent(t, []byte("x"))

	count, err := entry.GetNumberOfExtendedAttributes()
	require.NoError(t, err)
	require.Equal(t, 0, count)

	_, err = entry.GetExtendedAttributeByName("com.example.tag")
	require.Error(t, err)
}

func TestFileEntry_NotAFolder(t *testing.T) {
	_, entry := openTestVolumeWithContent(t, []byte("x"))

	_, err := entry.GetNumberOfSubFileEntries()
	require.Error(t, err)
}

func TestFileEntry_RootHasChild(t *testing.T) {
	v, _ := openTestVolumeWithContent(t, []byte("x"))

	root, err := v.RootEntry()
	require.NoError(t, err)

	n, err := root.GetNumberOfSubFileEntries()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	child, err := root.GetSubFileEntryByIndex(0)
	require.NoError(t, err)
	require.Equal(t, "data.bin", child.GetUTF8Name())

	byName, err := root.GetSubFileEntryByName("data.bin")
	require.NoError(t, err)
	require.Equal(t, child.GetIdentifier(), byName.GetIdentifier())
}

// openTestVolumeWithHardLinks builds a volume with two hard-link file
// records (link1.txt, link2.txt) sharing one private inode file under the
// "HFS+ Private Data" directory, the layout libfshfs and the HFS+ technote
// describe for hard-linked files.
func openTestVolumeWithHardLinks(t *testing.T, content []byte) *Volume {
	t.Helper()

	const (
		privateFolderID = types.CatalogNodeID(15)
		inodeFileID     = types.CatalogNodeID(100)
		link1ID         = types.CatalogNodeID(30)
		link2ID         = types.CatalogNodeID(31)
		linkIdentifier  = uint32(100)
	)
	inodeName := fmt.Sprintf("iNode%d", linkIdentifier)

	blocks := uint32((len(content) + testutil.BlockSize - 1) / testutil.BlockSize)
	vol := testutil.BuildVolume(nil, blocks)
	dataStartBlock := uint32(vol.DataRegionOffset / testutil.BlockSize)

	records := []testutil.Record{
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, ""),
			testutil.ThreadRecordValueHFSPlus(types.RecordTypeHFSPlusDirThread, types.RootParentID, "Macintosh HD"),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, services.HardLinkDirectoryName),
			testutil.DirectoryRecordValueHFSPlus(privateFolderID, 1),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, "link1.txt"),
			testutil.HardLinkFileRecordValueHFSPlus(link1ID, linkIdentifier),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(types.RootFolderID, "link2.txt"),
			testutil.HardLinkFileRecordValueHFSPlus(link2ID, linkIdentifier),
		),
		testutil.CatalogRecord(
			testutil.CatalogKeyHFSPlus(privateFolderID, inodeName),
			testutil.FileRecordValueHFSPlus(inodeFileID, uint64(len(content)), dataStartBlock, blocks),
		),
	}
	leaf := testutil.BuildNode(testutil.NodeSpec{Kind: types.KindLeaf, Records: records})
	copy(vol.Data[vol.CatalogTreeOffset+testutil.NodeSize:], leaf)
	copy(vol.Data[vol.DataRegionOffset:], content)

	src := &testutil.MemorySource{Data: vol.Data}
	v, err := OpenSource(src, 8)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

// TestFileEntry_HardLink_StreamsIdenticalBytes mirrors the two-hard-links
// streaming scenario: two catalog file records marked as hard links to the
// same private inode must read back identical bytes and sizes, and must
// still report their own (distinct) identifiers and flags.
func TestFileEntry_HardLink_StreamsIdenticalBytes(t *testing.T) {
	content := []byte("identical content reached through either hard link")
	v := openTestVolumeWithHardLinks(t, content)

	link1, err := v.EntryByPath("/link1.txt")
	require.NoError(t, err)
	link2, err := v.EntryByPath("/link2.txt")
	require.NoError(t, err)

	require.NotEqual(t, link1.GetIdentifier(), link2.GetIdentifier(), "each hard link keeps its own identifier")

	for _, link := range []*FileEntry{link1, link2} {
		size, err := link.GetSize()
		require.NoError(t, err)
		require.Equal(t, int64(len(content)), size)

		buf := make([]byte, len(content))
		n, err := link.ReadBuffer(buf)
		require.NoError(t, err)
		require.Equal(t, len(content), n)
		require.Equal(t, content, buf)
	}

	require.NotEqual(t, uint16(0), link1.GetFlags()&types.RecordFlagIsHardLink)
}
