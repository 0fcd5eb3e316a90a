package types

// AttributeRecord is the decoded form of an attributes B-tree leaf value,
// one of three discriminated sub-kinds.
//
// Reference: libfshfs_attribute_record.c
// (record_type 0x10 inline @ offset 16, 0x20 fork descriptor @ offset 8,
// 0x30 eight continuation extents starting at offset 8).
type AttributeRecord struct {
	Kind uint32

	// InlineData holds the attribute's bytes when Kind == AttributeKindInline.
	InlineData []byte

	// Fork holds the fork descriptor when Kind == AttributeKindFork.
	Fork ForkDescriptor

	// ContinuationExtents holds up to eight more (start_block, block_count)
	// pairs when Kind == AttributeKindExtents, continuing a fork referenced
	// by an earlier attribute record for the same (file, attribute name).
	ContinuationExtents [8]ExtentDescriptor
}

// IsInline reports whether this record carries its data inline.
func (a *AttributeRecord) IsInline() bool { return a.Kind == AttributeKindInline }

// IsFork reports whether this record carries a fork descriptor for
// out-of-line attribute data.
func (a *AttributeRecord) IsFork() bool { return a.Kind == AttributeKindFork }

// IsExtents reports whether this record carries continuation extents for a
// previously referenced fork.
func (a *AttributeRecord) IsExtents() bool { return a.Kind == AttributeKindExtents }
