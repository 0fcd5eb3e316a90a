package device

import (
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
)

// SubRange is an interfaces.ByteSource that exposes a byte range of another
// ByteSource, starting at a fixed base offset. Used when the HFS volume
// begins partway into a disk image or device (the CLI's "-o OFFSET"),
// without requiring the whole underlying source to be rewritten or copied.
type SubRange struct {
	base   interfaces.ByteSource
	offset int64
	size   int64
}

// NewSubRange returns a view of base starting at offset and extending size
// bytes (or to the end of base if size is negative).
func NewSubRange(base interfaces.ByteSource, offset int64, size int64) (*SubRange, error) {
	if offset < 0 || offset > base.Size() {
		return nil, errs.New(errs.Argument, "device.NewSubRange",
			fmt.Errorf("offset %d out of range for source size %d", offset, base.Size()))
	}
	maxSize := base.Size() - offset
	if size < 0 || size > maxSize {
		size = maxSize
	}
	return &SubRange{base: base, offset: offset, size: size}, nil
}

// ReadAt implements interfaces.ByteSource.
func (r *SubRange) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 || offset > r.size {
		return 0, errs.New(errs.OutOfRange, "device.SubRange.ReadAt",
			fmt.Errorf("offset %d out of range for size %d", offset, r.size))
	}
	if offset+int64(len(buf)) > r.size {
		return 0, errs.New(errs.OutOfRange, "device.SubRange.ReadAt",
			fmt.Errorf("read of %d bytes at %d would cross range boundary at %d", len(buf), offset, r.size))
	}
	return r.base.ReadAt(buf, r.offset+offset)
}

// Size implements interfaces.ByteSource.
func (r *SubRange) Size() int64 {
	return r.size
}
