// Package interfaces declares the seams between the HFS/HFS+/HFSX parsing
// core's layers, so higher layers depend on behavior rather than concrete
// types.
package interfaces

// ByteSource is the positioned-read byte source the core is built against.
// Implementations live in internal/device.
//
// A short read is only valid when EOF is reached at or after offset; the
// core never performs sequential reads without an explicit offset.
type ByteSource interface {
	// ReadAt reads len(buf) bytes starting at offset. It returns the number
	// of bytes read and a non-nil error if that is less than len(buf),
	// unless EOF was reached exactly at the end of the source.
	ReadAt(buf []byte, offset int64) (int, error)

	// Size returns the total number of bytes available from this source.
	Size() int64
}
