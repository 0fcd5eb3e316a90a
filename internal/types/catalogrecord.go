package types

// Permissions is the BSD-style ownership/mode block embedded in every
// directory and file catalog record.
//
// Reference: Apple TN1150 HFSPlusBSDInfo.
type Permissions struct {
	OwnerID            uint32
	GroupID            uint32
	AdminFlags         uint8
	OwnerFlags         uint8
	FileMode           uint16
	SpecialPermissions uint32
}

// FinderInfo is the 16-byte opaque Finder metadata blob every directory or
// file record carries, plus the 16-byte extended Finder info blob. Only a
// few fields are interpreted by this library: the file type/creator (used
// to detect hard links) and, when RecordFlagHasDateAdded is set, a "date
// added" timestamp packed into the extended blob.
type FinderInfo struct {
	Raw         [16]byte
	ExtendedRaw [16]byte
}

// FileType returns the 4-byte classic Finder "file type" field (bytes 0-3
// of the Finder info blob).
func (f FinderInfo) FileType() string {
	return string(f.Raw[0:4])
}

// Creator returns the 4-byte classic Finder "creator" field (bytes 4-7).
func (f FinderInfo) Creator() string {
	return string(f.Raw[4:8])
}

// Timestamps holds the five/six HFS-epoch timestamps a catalog record may
// carry. Times are kept in the HFS epoch (seconds since 1904-01-01 UTC);
// conversion to POSIX happens only at the external boundary (see
// ToPOSIXTime). EntryModification/Access/Added are not present on every
// dialect or record, so the *Present flags track which of them the decoder
// actually found. Backup has no Present flag and is always reported as
// decoded, even when it is zero.
type Timestamps struct {
	Creation          uint32
	Modification      uint32
	EntryModification uint32
	Access            uint32
	Backup            uint32
	Added             int32 // little-endian signed POSIX seconds; only valid if AddedPresent

	EntryModificationPresent bool
	AccessPresent            bool
	AddedPresent             bool

	// Local is true for classic HFS records, whose timestamps are local
	// time with no recorded timezone.
	Local bool
}

// DirectoryRecord is the decoded form of a catalog directory record,
// normalized across the HFS and HFS+ dialects.
//
// Reference: libfshfs_directory_record.c.
type DirectoryRecord struct {
	Flags        uint16
	Valence      uint32
	FolderID     CatalogNodeID
	Times        Timestamps
	Perms        Permissions
	Finder       FinderInfo
	TextEncoding uint32
}

// FileRecord is the decoded form of a catalog file record, carrying both
// fork descriptors.
//
// Reference: libfshfs_file_record.c.
type FileRecord struct {
	Flags        uint16
	FileID       CatalogNodeID
	Times        Timestamps
	Perms        Permissions
	Finder       FinderInfo
	TextEncoding uint32

	DataFork     ForkDescriptor
	ResourceFork ForkDescriptor
}

// IsHardLink reports whether this file record's special_permissions field
// should be reinterpreted as a hard-link target inode number, per
// flags bit 0x0020 set AND Finder type/creator literally "hlnk"/"hfs+".
func (r *FileRecord) IsHardLink() bool {
	return r.Flags&RecordFlagIsHardLink != 0 &&
		r.Finder.FileType() == HardLinkFileType &&
		r.Finder.Creator() == HardLinkFileCreator
}

// LinkIdentifier returns the hard-link target inode number. Only valid
// when IsHardLink reports true.
func (r *FileRecord) LinkIdentifier() uint32 {
	return r.Perms.SpecialPermissions
}

// ThreadRecord reverse-maps a CNID to its parent CNID and name, letting
// identifier lookups work without scanning the whole catalog.
//
// Reference: libfshfs_thread_record.c.
type ThreadRecord struct {
	ParentID CatalogNodeID
	Name     string
}
