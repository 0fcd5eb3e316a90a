// Package device provides concrete interfaces.ByteSource implementations:
// a plain-file source and a byte-range view over any other source, plus
// Viper-backed configuration for the node cache and default volume offset.
package device

import (
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-hfs/internal/errs"
)

// FileSource is an interfaces.ByteSource backed directly by an *os.File.
type FileSource struct {
	file *os.File
	size int64
}

// OpenFile opens path for positioned reads.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.IoError, "device.OpenFile", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.New(errs.IoError, "device.OpenFile", err)
	}
	return &FileSource{file: f, size: stat.Size()}, nil
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// ReadAt implements interfaces.ByteSource.
func (s *FileSource) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 || offset > s.size {
		return 0, errs.New(errs.OutOfRange, "device.FileSource.ReadAt",
			fmt.Errorf("offset %d out of range for size %d", offset, s.size))
	}
	n, err := s.file.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return n, errs.New(errs.IoError, "device.FileSource.ReadAt", err)
	}
	if n < len(buf) && offset+int64(n) < s.size {
		return n, errs.New(errs.IoError, "device.FileSource.ReadAt",
			fmt.Errorf("short read: got %d of %d bytes before end of source", n, len(buf)))
	}
	return n, nil
}

// Size implements interfaces.ByteSource.
func (s *FileSource) Size() int64 {
	return s.size
}
