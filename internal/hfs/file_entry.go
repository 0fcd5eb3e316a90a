package hfs

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/services"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// maxSymbolicLinkTargetLength bounds how large a symlink's data fork this
// library will read as a path string.
const maxSymbolicLinkTargetLength = 4096

// FileEntry is a handle onto one catalog entry (file or folder) within an
// open Volume. Children and the data fork reader are resolved lazily and
// cached on first use.
type FileEntry struct {
	volume *Volume
	entry  *services.CatalogEntry

	mu             sync.Mutex
	reader         *services.ForkReader
	childrenLoaded bool
	children       []*services.CatalogEntry
	childrenErr    error

	resolved    *services.CatalogEntry
	resolvedErr error
}

// resolvedEntry returns the catalog entry data-stream and permission/mode
// accessors read from: entry itself, unless it is a hard-link file record,
// in which case it is the private inode file ResolveHardLink finds.
// Identifier and flags are deliberately not resolved this way — callers
// always see the link's own identifier and flags.
func (e *FileEntry) resolvedEntry() (*services.CatalogEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolvedEntryLocked()
}

func (e *FileEntry) resolvedEntryLocked() (*services.CatalogEntry, error) {
	if e.resolved != nil {
		return e.resolved, nil
	}
	if e.resolvedErr != nil {
		return nil, e.resolvedErr
	}
	if e.entry.IsDirectory() || !e.entry.File.IsHardLink() {
		e.resolved = e.entry
		return e.resolved, nil
	}
	target, err := e.volume.impl.Catalog.ResolveHardLink(e.entry.File.LinkIdentifier())
	if err != nil {
		e.resolvedErr = err
		return nil, err
	}
	e.resolved = target
	return e.resolved, nil
}

// IsDirectory reports whether this entry is a folder.
func (e *FileEntry) IsDirectory() bool { return e.entry.IsDirectory() }

// GetIdentifier returns the entry's catalog node ID.
func (e *FileEntry) GetIdentifier() types.CatalogNodeID { return e.entry.Identifier }

// GetParentIdentifier returns the containing folder's catalog node ID.
func (e *FileEntry) GetParentIdentifier() types.CatalogNodeID { return e.entry.ParentID }

// GetLinkIdentifier returns the hard-link target's private inode number.
// Only meaningful for file records where IsHardLink is true; every other
// entry reports NotAvailable.
func (e *FileEntry) GetLinkIdentifier() (uint32, error) {
	if e.entry.IsDirectory() || !e.entry.File.IsHardLink() {
		return 0, errs.ErrNotAvailable
	}
	return e.entry.File.LinkIdentifier(), nil
}

// GetFlags returns the entry's catalog record flags bit field.
func (e *FileEntry) GetFlags() uint16 {
	if e.entry.IsDirectory() {
		return e.entry.Directory.Flags
	}
	return e.entry.File.Flags
}

func (e *FileEntry) timestamps() types.Timestamps {
	if e.entry.IsDirectory() {
		return e.entry.Directory.Times
	}
	return e.entry.File.Times
}

// GetCreationTime returns the entry's creation time, always present.
func (e *FileEntry) GetCreationTime() time.Time {
	return types.ToPOSIXTime(e.timestamps().Creation)
}

// GetModificationTime returns the entry's content modification time,
// always present.
func (e *FileEntry) GetModificationTime() time.Time {
	return types.ToPOSIXTime(e.timestamps().Modification)
}

// GetEntryModificationTime returns the time the catalog record itself was
// last changed, or NotAvailable on dialects/records that omit it.
func (e *FileEntry) GetEntryModificationTime() (time.Time, error) {
	ts := e.timestamps()
	if !ts.EntryModificationPresent {
		return time.Time{}, errs.ErrNotAvailable
	}
	return types.ToPOSIXTime(ts.EntryModification), nil
}

// GetAccessTime returns the entry's last-access time, or NotAvailable.
func (e *FileEntry) GetAccessTime() (time.Time, error) {
	ts := e.timestamps()
	if !ts.AccessPresent {
		return time.Time{}, errs.ErrNotAvailable
	}
	return types.ToPOSIXTime(ts.Access), nil
}

// GetBackupTime returns the entry's last-backup time. Classic HFS and
// HFS+ both carry this field, so it is never NotAvailable; an unbacked-up
// entry simply reads zero (1904-01-01).
func (e *FileEntry) GetBackupTime() time.Time {
	return types.ToPOSIXTime(e.timestamps().Backup)
}

// GetAddedTime returns the time the entry was added to its folder, or
// NotAvailable when RecordFlagHasDateAdded is clear.
func (e *FileEntry) GetAddedTime() (time.Time, error) {
	ts := e.timestamps()
	if !ts.AddedPresent {
		return time.Time{}, errs.ErrNotAvailable
	}
	return time.Unix(int64(ts.Added), 0).UTC(), nil
}

func (e *FileEntry) perms() (types.Permissions, error) {
	target, err := e.resolvedEntry()
	if err != nil {
		return types.Permissions{}, err
	}
	if target.IsDirectory() {
		return target.Directory.Perms, nil
	}
	return target.File.Perms, nil
}

// GetFileMode returns the BSD-style mode bits, or NotAvailable on classic
// HFS volumes, which carry no permission information. For a hard link,
// these are the private inode file's permissions.
func (e *FileEntry) GetFileMode() (uint16, error) {
	if !e.volume.IsHFSPlus() {
		return 0, errs.ErrNotAvailable
	}
	p, err := e.perms()
	if err != nil {
		return 0, err
	}
	return p.FileMode, nil
}

// GetOwnerIdentifier returns the BSD owner UID, or NotAvailable on
// classic HFS. For a hard link, this is the private inode file's owner.
func (e *FileEntry) GetOwnerIdentifier() (uint32, error) {
	if !e.volume.IsHFSPlus() {
		return 0, errs.ErrNotAvailable
	}
	p, err := e.perms()
	if err != nil {
		return 0, err
	}
	return p.OwnerID, nil
}

// GetGroupIdentifier returns the BSD group GID, or NotAvailable on
// classic HFS. For a hard link, this is the private inode file's group.
func (e *FileEntry) GetGroupIdentifier() (uint32, error) {
	if !e.volume.IsHFSPlus() {
		return 0, errs.ErrNotAvailable
	}
	p, err := e.perms()
	if err != nil {
		return 0, err
	}
	return p.GroupID, nil
}

// GetDeviceNumber interprets special_permissions as a packed device
// number, valid only when the file mode's type bits mark a character or
// block device; every other entry reports NotAvailable.
func (e *FileEntry) GetDeviceNumber() (uint32, error) {
	mode, err := e.GetFileMode()
	if err != nil {
		return 0, err
	}
	switch types.Mode(mode) & types.ModeIFMT {
	case types.ModeIFCHR, types.ModeIFBLK:
		p, err := e.perms()
		if err != nil {
			return 0, err
		}
		return p.SpecialPermissions, nil
	default:
		return 0, errs.ErrNotAvailable
	}
}

// GetUTF8Name returns the entry's name, decoded to UTF-8.
func (e *FileEntry) GetUTF8Name() string { return e.entry.Name }

// GetUTF16Name returns the entry's name re-encoded as UTF-16 code units.
func (e *FileEntry) GetUTF16Name() []uint16 {
	return utf16.Encode([]rune(e.entry.Name))
}

// HasResourceFork reports whether the entry's resource fork carries any
// data. Always false for folders.
func (e *FileEntry) HasResourceFork() bool {
	if e.entry.IsDirectory() {
		return false
	}
	return e.entry.File.ResourceFork.LogicalSize > 0
}

func (e *FileEntry) isSymbolicLink() bool {
	mode, err := e.GetFileMode()
	return err == nil && types.Mode(mode)&types.ModeIFMT == types.ModeIFLNK
}

// GetUTF8SymbolicLinkTarget reads the entry's data fork as its symbolic
// link target path, bounded by logical_size and a sanity limit. Reports
// NotAvailable on anything but an HFS+ symbolic link.
func (e *FileEntry) GetUTF8SymbolicLinkTarget() (string, error) {
	if e.entry.IsDirectory() || !e.isSymbolicLink() {
		return "", errs.ErrNotAvailable
	}
	target, err := e.resolvedEntry()
	if err != nil {
		return "", err
	}
	size := target.File.DataFork.LogicalSize
	if size == 0 {
		return "", nil
	}
	if size > maxSymbolicLinkTargetLength {
		return "", errs.New(errs.Corruption, "hfs.FileEntry.GetUTF8SymbolicLinkTarget",
			fmt.Errorf("symbolic link target of %d bytes exceeds the %d byte sanity limit", size, maxSymbolicLinkTargetLength))
	}
	reader, err := e.volume.impl.NewForkReader(target.File.DataFork, target.Identifier, types.ForkTypeData)
	if err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if _, err := reader.ReadBuffer(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// GetUTF16SymbolicLinkTarget is GetUTF8SymbolicLinkTarget re-encoded as
// UTF-16 code units.
func (e *FileEntry) GetUTF16SymbolicLinkTarget() ([]uint16, error) {
	target, err := e.GetUTF8SymbolicLinkTarget()
	if err != nil {
		return nil, err
	}
	return utf16.Encode([]rune(target)), nil
}

func (e *FileEntry) loadChildren() ([]*services.CatalogEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.childrenLoaded {
		return e.children, e.childrenErr
	}
	if !e.entry.IsDirectory() {
		e.childrenErr = errs.New(errs.Argument, "hfs.FileEntry.loadChildren",
			fmt.Errorf("identifier %d is not a folder", e.entry.Identifier))
	} else {
		e.children, e.childrenErr = e.volume.impl.Catalog.ListDirectory(e.entry.Identifier)
	}
	e.childrenLoaded = true
	return e.children, e.childrenErr
}

// GetNumberOfExtendedAttributes returns the count of the entry's extended
// attributes. Always zero on classic HFS, which has no attributes tree.
func (e *FileEntry) GetNumberOfExtendedAttributes() (int, error) {
	attrs, err := e.extendedAttributes()
	if err != nil {
		return 0, err
	}
	return len(attrs), nil
}

func (e *FileEntry) extendedAttributes() ([]services.NamedAttribute, error) {
	if e.volume.impl.Attrs == nil {
		return nil, nil
	}
	return e.volume.impl.Attrs.ListForFile(e.entry.Identifier)
}

// GetExtendedAttributeByIndex returns the entry's extended attribute at
// index, in attributes B-tree key order.
func (e *FileEntry) GetExtendedAttributeByIndex(index int) (*services.NamedAttribute, error) {
	attrs, err := e.extendedAttributes()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(attrs) {
		return nil, errs.New(errs.OutOfRange, "hfs.FileEntry.GetExtendedAttributeByIndex",
			fmt.Errorf("index %d out of range for %d extended attributes", index, len(attrs)))
	}
	return &attrs[index], nil
}

// GetExtendedAttributeByName looks up a single named extended attribute.
func (e *FileEntry) GetExtendedAttributeByName(name string) (*services.NamedAttribute, error) {
	if e.volume.impl.Attrs == nil {
		return nil, errs.ErrNotFound
	}
	return e.volume.impl.Attrs.LookupByName(e.entry.Identifier, name)
}

// GetNumberOfSubFileEntries returns the number of direct children. Only
// valid on folders.
func (e *FileEntry) GetNumberOfSubFileEntries() (int, error) {
	children, err := e.loadChildren()
	if err != nil {
		return 0, err
	}
	return len(children), nil
}

// GetSubFileEntryByIndex returns the folder's child at index, in catalog
// key order.
func (e *FileEntry) GetSubFileEntryByIndex(index int) (*FileEntry, error) {
	children, err := e.loadChildren()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(children) {
		return nil, errs.New(errs.OutOfRange, "hfs.FileEntry.GetSubFileEntryByIndex",
			fmt.Errorf("index %d out of range for %d children", index, len(children)))
	}
	return &FileEntry{volume: e.volume, entry: children[index]}, nil
}

// GetSubFileEntryByName looks up a single named child directly, without
// loading the full listing.
func (e *FileEntry) GetSubFileEntryByName(name string) (*FileEntry, error) {
	entry, err := e.volume.impl.Catalog.LookupByParentAndName(e.entry.Identifier, name)
	if err != nil {
		return nil, err
	}
	return &FileEntry{volume: e.volume, entry: entry}, nil
}

func (e *FileEntry) forkReader() (*services.ForkReader, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reader != nil {
		return e.reader, nil
	}
	if e.entry.IsDirectory() {
		return nil, errs.New(errs.Argument, "hfs.FileEntry.forkReader",
			fmt.Errorf("identifier %d is a folder, not a file", e.entry.Identifier))
	}
	target, err := e.resolvedEntryLocked()
	if err != nil {
		return nil, err
	}
	reader, err := e.volume.impl.NewForkReader(target.File.DataFork, target.Identifier, types.ForkTypeData)
	if err != nil {
		return nil, err
	}
	e.reader = reader
	return e.reader, nil
}

// ReadBuffer reads up to len(p) bytes of the entry's data fork at the
// stream's current offset, filling p fully unless EOF is reached first.
func (e *FileEntry) ReadBuffer(p []byte) (int, error) {
	reader, err := e.forkReader()
	if err != nil {
		return 0, err
	}
	return reader.ReadBuffer(p)
}

// SeekOffset repositions the entry's data fork read cursor.
func (e *FileEntry) SeekOffset(offset int64, whence int) (int64, error) {
	reader, err := e.forkReader()
	if err != nil {
		return 0, err
	}
	return reader.Seek(offset, whence)
}

// GetSize returns the data fork's logical size in bytes. NotAvailable on
// folders, which have no stream to size. For a hard link, this is the
// private inode file's size.
func (e *FileEntry) GetSize() (int64, error) {
	if e.entry.IsDirectory() {
		return 0, errs.ErrNotAvailable
	}
	target, err := e.resolvedEntry()
	if err != nil {
		return 0, err
	}
	return int64(target.File.DataFork.LogicalSize), nil
}
