// Package types defines the raw on-disk structures of the HFS, HFS+, and
// HFSX volume formats, byte-exact with Apple Technote 1150 and the
// field layouts libfshfs uses to parse them.
package types

// Volume signatures, read from the first two bytes of the 1024-byte volume
// header / master directory block.
const (
	SignatureHFS     uint16 = 0x4244 // 'BD'
	SignatureHFSPlus uint16 = 0x482b // 'H+'
	SignatureHFSX    uint16 = 0x4858 // 'HX'
)

// HFSX key-compare types, stored in the catalog B-tree header's
// key_compare_type byte. Only HFSX ever sets this to KeyCompareBinary.
const (
	KeyCompareCaseFolding uint8 = 0xcf
	KeyCompareBinary      uint8 = 0xbc
)

// Catalog node identifiers with reserved, well-known meanings.
type CatalogNodeID uint32

const (
	RootParentID           CatalogNodeID = 1
	RootFolderID           CatalogNodeID = 2
	ExtentsFileID          CatalogNodeID = 3
	CatalogFileID          CatalogNodeID = 4
	BadBlockFileID         CatalogNodeID = 5
	AllocationFileID       CatalogNodeID = 6
	StartupFileID          CatalogNodeID = 7
	AttributesFileID       CatalogNodeID = 8
	RepairCatalogFileID    CatalogNodeID = 14
	BogusExtentFileID      CatalogNodeID = 15
	FirstUserCatalogNodeID CatalogNodeID = 16
)

// B-tree node kinds, from the node descriptor's "kind" byte.
const (
	NodeKindLeaf   int8 = -1 // 0xff on disk
	NodeKindIndex  int8 = 0x00
	NodeKindHeader int8 = 0x01
	NodeKindMap    int8 = 0x02
)

// Catalog record type discriminants (first big-endian u16 of a leaf value).
const (
	RecordTypeHFSDirectory      uint16 = 0x0001
	RecordTypeHFSFile           uint16 = 0x0002
	RecordTypeHFSDirThread      uint16 = 0x0003
	RecordTypeHFSFileThread     uint16 = 0x0004
	RecordTypeHFSPlusDirectory  uint16 = 0x0001
	RecordTypeHFSPlusFile       uint16 = 0x0002
	RecordTypeHFSPlusDirThread  uint16 = 0x0003
	RecordTypeHFSPlusFileThread uint16 = 0x0004
)

// Catalog record flags (directory/file record "flags" field).
const (
	// FileLocked indicates the file's data fork is locked and cannot be modified.
	FileLocked uint16 = 0x0001
	// RecordFlagThreadRecord marks a thread record sharing the 4-type discriminant space.
	RecordFlagThreadRecord uint16 = 0x0002
	// RecordFlagHasAttributes indicates the file or folder has extended attributes.
	RecordFlagHasAttributes uint16 = 0x0004
	// RecordFlagHasSecurity indicates an ACL entry exists for this file or folder.
	RecordFlagHasSecurity uint16 = 0x0008
	// RecordFlagHasFolderCount indicates a directory record's valence field counts
	// files and folders combined (HFSX) rather than direct children only.
	RecordFlagHasFolderCount uint16 = 0x0010
	// RecordFlagIsHardLink indicates the record's special_permissions field is a
	// hard-link inode reference, contingent on the Finder-info type/creator check.
	RecordFlagIsHardLink uint16 = 0x0020
	// RecordFlagHasDateAdded indicates extended_finder_info carries a valid "date added".
	RecordFlagHasDateAdded uint16 = 0x0080
)

// Finder info type/creator values that mark a file record as a hard link.
const (
	HardLinkFileType    = "hlnk"
	HardLinkFileCreator = "hfs+"
)

// Attribute record sub-kinds (attribute record's 4-byte record_type field).
const (
	AttributeKindInline  uint32 = 0x10
	AttributeKindFork    uint32 = 0x20
	AttributeKindExtents uint32 = 0x30
)

// Extents key fork-type discriminants.
const (
	ForkTypeData     uint8 = 0x00
	ForkTypeResource uint8 = 0xff
)

// MaxBTreeRecursionDepth bounds B-tree descent; exceeding it is treated as
// a fatal Corruption error rather than looping forever on a cyclic tree.
const MaxBTreeRecursionDepth = 1024

// ClassicAllocationBlockSize is the fixed allocation unit size the extent
// resolver uses for classic HFS extents records, regardless of what the
// master directory block's allocation_block_size field reports.
const ClassicAllocationBlockSize = 512

// MinAllocationBlockSize is the smallest allocation block size the volume
// header reader will accept.
const MinAllocationBlockSize = 512

// InlineAttributeDataMax is the maximum number of bytes an inline attribute
// record may carry.
const InlineAttributeDataMax = 4096

// HFSEpochToPOSIXOffset is the number of seconds between the HFS epoch
// (1904-01-01 00:00 UTC) and the POSIX epoch (1970-01-01 00:00 UTC).
const HFSEpochToPOSIXOffset int64 = 2082844800
