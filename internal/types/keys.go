package types

// CatalogKey identifies a catalog B-tree record: the parent folder's CNID
// plus the entry's name. Keys are ordered first by ParentID (unsigned),
// then by the tree's name comparator (internal/textenc).
//
// Reference: libfshfs-style catalog key layout
// (HFS+: u16 key length, u32 parent id, u16 name length, UTF-16BE name;
// classic HFS: u8 key length, u8 reserved, u32 parent id, Str31 name).
type CatalogKey struct {
	ParentID CatalogNodeID
	Name     string

	// KeyLength is the on-disk key_length field value (name following it);
	// preserved for round-tripping debug output, not used for comparison.
	KeyLength uint16
}

// AttributesKey identifies an attributes B-tree record: the owning file or
// folder's CNID plus the attribute name. Ordered first by CNID, then by
// exact (non-folded) name comparison.
//
// Reference: libfshfs_attributes_index_key_hfsplus.
type AttributesKey struct {
	FileID CatalogNodeID
	Name   string
}

// ExtentsKey identifies an extents-overflow B-tree record: which fork of
// which file, and the first allocation block the record's extents start
// covering. Ordered by (FileID, ForkType, StartBlock).
//
// Reference: libfshfs_extents_index_key_hfs / fshfs_extents_index_key_hfsplus.
type ExtentsKey struct {
	ForkType   uint8
	FileID     CatalogNodeID
	StartBlock uint32
}

// Compare orders two catalog keys by (ParentID, folded name) using the
// supplied comparator for the name component.
func (k CatalogKey) Compare(other CatalogKey, nameCompare func(a, b string) int) int {
	if k.ParentID != other.ParentID {
		if k.ParentID < other.ParentID {
			return -1
		}
		return 1
	}
	return nameCompare(k.Name, other.Name)
}

// Compare orders two extents keys by (FileID, ForkType, StartBlock).
func (k ExtentsKey) Compare(other ExtentsKey) int {
	if k.FileID != other.FileID {
		if k.FileID < other.FileID {
			return -1
		}
		return 1
	}
	if k.ForkType != other.ForkType {
		if k.ForkType < other.ForkType {
			return -1
		}
		return 1
	}
	switch {
	case k.StartBlock < other.StartBlock:
		return -1
	case k.StartBlock > other.StartBlock:
		return 1
	default:
		return 0
	}
}

// Compare orders two attributes keys by (FileID, exact name).
func (k AttributesKey) Compare(other AttributesKey) int {
	if k.FileID != other.FileID {
		if k.FileID < other.FileID {
			return -1
		}
		return 1
	}
	switch {
	case k.Name < other.Name:
		return -1
	case k.Name > other.Name:
		return 1
	default:
		return 0
	}
}
