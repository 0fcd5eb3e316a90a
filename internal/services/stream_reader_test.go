package services

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-hfs/internal/testutil"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

func buildTestForkReader(t *testing.T, content []byte) *ForkReader {
	t.Helper()

	blocks := uint32((len(content) + testutil.BlockSize - 1) / testutil.BlockSize)
	vol := testutil.BuildVolume(nil, blocks)
	copy(vol.Data[vol.DataRegionOffset:], content)

	src := &testutil.MemorySource{Data: vol.Data}
	fork := types.ForkDescriptor{
		LogicalSize: uint64(len(content)),
		TotalBlocks: blocks,
		Extents: [8]types.ExtentDescriptor{
			{StartBlock: uint32(vol.DataRegionOffset / testutil.BlockSize), BlockCount: blocks},
		},
	}

	r, err := NewForkReader(src, fork, 100, types.ForkTypeData, testutil.BlockSize, 0, 0, nil)
	require.NoError(t, err)
	return r
}

func TestForkReader_ReadFullContent(t *testing.T) {
	content := []byte("hello, hfs fork reader")
	r := buildTestForkReader(t, content)

	buf := make([]byte, len(content))
	n, err := r.ReadBuffer(buf)
	require.NoError(t, err)
	require.Equal(t, len(content), n)
	require.Equal(t, content, buf)
}

func TestForkReader_ShortReadAtEOF(t *testing.T) {
	content := []byte("short")
	r := buildTestForkReader(t, content)

	buf := make([]byte, 100)
	n, err := r.Read(buf)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, len(content), n)
	require.Equal(t, content, buf[:n])
}

func TestForkReader_SeekAndRead(t *testing.T) {
	content := []byte("0123456789")
	r := buildTestForkReader(t, content)

	pos, err := r.Seek(5, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(5), pos)

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("567"), buf)
}

func TestForkReader_ReadPastEnd(t *testing.T) {
	content := []byte("tiny")
	r := buildTestForkReader(t, content)

	_, err := r.Seek(1000, io.SeekStart)
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := r.Read(buf)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 0, n)
}

func TestForkReader_Size(t *testing.T) {
	content := []byte("abcdef")
	r := buildTestForkReader(t, content)
	require.Equal(t, int64(len(content)), r.Size())
}
