package types

// VolumeHeader is the decoded form of either the 1024-byte HFS+/HFSX volume
// header or a classic HFS master directory block, normalized to a single
// shape so the rest of the library never branches on dialect again after
// open time.
//
// Reference: Apple Technote 1150, "Volume Header"; libfshfs_volume_header.c
// and libfshfs_master_directory_block.c for the two on-disk layouts.
type VolumeHeader struct {
	Signature uint16

	Version        uint16
	AttributeFlags uint32

	CreationTime     uint32
	ModificationTime uint32
	BackupTime       uint32
	CheckedTime      uint32

	FileCount   uint32
	FolderCount uint32

	AllocationBlockSize uint32
	TotalBlocks         uint32
	FreeBlocks          uint32

	NextAllocationBlock uint32
	ResourceClumpSize   uint32
	DataClumpSize       uint32
	NextCatalogID       CatalogNodeID

	WriteCount      uint32
	EncodingsBitmap uint64

	FinderInfo [8]uint32

	Allocation ForkDescriptor
	Extents    ForkDescriptor
	Catalog    ForkDescriptor
	Attributes ForkDescriptor
	Startup    ForkDescriptor

	// ExtentsStartBlock is the classic-HFS master directory block's
	// "extents start block number", added to every block number read from
	// a classic extents record. Zero and unused on HFS+/HFSX.
	ExtentsStartBlock uint32

	// VolumeLabel is the classic HFS volume name, decoded from MacRoman.
	// Empty on HFS+/HFSX, where the name instead lives as a catalog thread
	// record for CNID 2.
	VolumeLabel string
}

// IsHFSPlusFamily reports whether the volume is HFS+ or HFSX (as opposed to
// classic HFS), i.e. whether attributes/startup trees and Unicode names are
// meaningful.
func (h *VolumeHeader) IsHFSPlusFamily() bool {
	return h.Signature == SignatureHFSPlus || h.Signature == SignatureHFSX
}

// IsHFSX reports whether the volume uses the case-sensitive HFSX key
// comparator by signature. The definitive answer also depends on the
// catalog B-tree header's key_compare_type byte; this flag
// is the volume-header-level hint used before that header is read.
func (h *VolumeHeader) IsHFSX() bool {
	return h.Signature == SignatureHFSX
}
