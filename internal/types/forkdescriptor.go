package types

// ExtentDescriptor is a single (start_block, block_count) pair, in
// allocation blocks.
//
// Reference: libfshfs_extent.c.
type ExtentDescriptor struct {
	StartBlock uint32
	BlockCount uint32
}

// IsEmpty reports whether the extent is the zero-valued terminator used to
// mark the end of the inline extents list.
func (e ExtentDescriptor) IsEmpty() bool {
	return e.StartBlock == 0 && e.BlockCount == 0
}

// ForkDescriptor describes one fork (data or resource) of a file, or one of
// a volume's five special files.
//
// Reference: fshfs_fork_descriptor.h (HFS+,
// 80 bytes: 8 + 4 + 4 + 8*(4+4)); the classic HFS fork extents record
// (3 x (u16,u16) extents plus a separately-carried logical size) is
// normalized into the same shape by internal/parsers/forks.
type ForkDescriptor struct {
	LogicalSize uint64
	ClumpSize   uint32
	TotalBlocks uint32
	Extents     [8]ExtentDescriptor
}

// BlocksCoveredByInline sums the block counts of the inline extents up to
// the first terminating (0,0) entry. If this is less than TotalBlocks, the
// remainder of the fork lives in the extents overflow B-tree.
//
// An on-disk invariant of the fork descriptor format.
func (f ForkDescriptor) BlocksCoveredByInline() uint32 {
	var covered uint32
	for _, e := range f.Extents {
		if e.IsEmpty() {
			break
		}
		covered += e.BlockCount
	}
	return covered
}

// HasOverflow reports whether any part of the fork's block allocation is
// not covered by the eight inline extents.
func (f ForkDescriptor) HasOverflow() bool {
	return f.BlocksCoveredByInline() < f.TotalBlocks
}

// IsZero reports whether the fork descriptor is entirely zeroed, which on
// HFS+/HFSX volume headers marks the attributes or startup fork as absent.
func (f ForkDescriptor) IsZero() bool {
	if f.LogicalSize != 0 || f.ClumpSize != 0 || f.TotalBlocks != 0 {
		return false
	}
	for _, e := range f.Extents {
		if !e.IsEmpty() {
			return false
		}
	}
	return true
}
