package types

// Mode represents BSD-style file mode bits, stored in HFS+ permissions
// records and reported through the catalog file/folder info.
type Mode uint16

const (
	// ModeIFMT is the bit mask for the file type field.
	ModeIFMT Mode = 0o170000

	ModeIFIFO  Mode = 0o010000
	ModeIFCHR  Mode = 0o020000
	ModeIFDIR  Mode = 0o040000
	ModeIFBLK  Mode = 0o060000
	ModeIFREG  Mode = 0o100000
	ModeIFLNK  Mode = 0o120000
	ModeIFSOCK Mode = 0o140000
	ModeIFWHT  Mode = 0o160000
)
