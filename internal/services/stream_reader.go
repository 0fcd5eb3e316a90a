package services

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/parsers/extents"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// ForkReader is a cursor over one fork's logical byte stream: it holds
// the current offset, the fork's fully resolved extent list (computed
// once and cached), and the shared byte source those extents point into.
//
// Modeled on a Read/Seek handle built on resolved extents, matching
// io.ReadSeeker's standard-library contract, which this type implements.
type ForkReader struct {
	source    interfaces.ByteSource
	ranges    []extents.ByteRange
	fork      types.ForkDescriptor
	offset    int64
	blockSize uint32
	volOffset int64
	extStart  uint32
	overflow  extents.OverflowSource
	identifer types.CatalogNodeID
	forkType  uint8
}

var _ io.ReadSeeker = (*ForkReader)(nil)

// NewForkReader builds a stream reader over one fork, resolving its
// extents immediately rather than lazily, since a fork's extent count is
// always small enough that deferring buys nothing.
func NewForkReader(
	source interfaces.ByteSource,
	fork types.ForkDescriptor,
	identifier types.CatalogNodeID,
	forkType uint8,
	blockSize uint32,
	volumeOffset int64,
	extentsStartBlock uint32,
	overflow extents.OverflowSource,
) (*ForkReader, error) {
	ranges, err := extents.Resolve(fork, identifier, forkType, blockSize, volumeOffset, extentsStartBlock, overflow)
	if err != nil {
		return nil, err
	}
	return &ForkReader{
		source:    source,
		ranges:    ranges,
		fork:      fork,
		blockSize: blockSize,
		volOffset: volumeOffset,
		extStart:  extentsStartBlock,
		overflow:  overflow,
		identifer: identifier,
		forkType:  forkType,
	}, nil
}

// Size returns the fork's logical size in bytes.
func (r *ForkReader) Size() int64 { return int64(r.fork.LogicalSize) }

// Read implements io.Reader: reads up to len(p) bytes starting at the
// current offset. A short read only ever occurs at EOF; any other
// inability to satisfy a requested length is a corruption error, not a
// short read.
func (r *ForkReader) Read(p []byte) (int, error) {
	if r.offset >= int64(r.fork.LogicalSize) {
		return 0, io.EOF
	}
	remaining := int64(r.fork.LogicalSize) - r.offset
	want := int64(len(p))
	if want > remaining {
		want = remaining
	}
	if want == 0 {
		return 0, nil
	}

	spans, err := extents.RangeForSpan(r.ranges, r.offset, want)
	if err != nil {
		return 0, errs.New(errs.Corruption, "services.ForkReader.Read", err)
	}

	var n int
	for _, s := range spans {
		chunk := p[n : n+int(s.Length)]
		read, err := r.source.ReadAt(chunk, s.Offset)
		if err != nil {
			return n, errs.New(errs.IoError, "services.ForkReader.Read", err)
		}
		if int64(read) != s.Length {
			return n, errs.New(errs.Corruption, "services.ForkReader.Read",
				fmt.Errorf("short read mid-fork: got %d of %d bytes at physical offset %d", read, s.Length, s.Offset))
		}
		n += read
	}
	r.offset += int64(n)

	var readErr error
	if r.offset >= int64(r.fork.LogicalSize) {
		readErr = io.EOF
	}
	return n, readErr
}

// Seek implements io.Seeker: absolute (io.SeekStart), relative to the
// current offset (io.SeekCurrent), or relative to the fork's logical size
// (io.SeekEnd). Seeking past logical_size is valid; a subsequent Read
// there returns EOF rather than an error.
func (r *ForkReader) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = r.offset + offset
	case io.SeekEnd:
		newOffset = int64(r.fork.LogicalSize) + offset
	default:
		return 0, errs.New(errs.Argument, "services.ForkReader.Seek", fmt.Errorf("invalid whence %d", whence))
	}
	if newOffset < 0 {
		return 0, errs.New(errs.Argument, "services.ForkReader.Seek", fmt.Errorf("seek to negative offset %d", newOffset))
	}
	r.offset = newOffset
	return r.offset, nil
}

// ReadBuffer reads exactly len(p) bytes at the current offset, or fewer
// only if EOF is reached first (unlike Read, which follows the plain
// io.Reader contract).
func (r *ForkReader) ReadBuffer(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := r.Read(p[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}
