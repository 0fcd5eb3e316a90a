// Package hfs is the small public surface of this module: Volume and
// FileEntry wrap internal/services' orchestration behind a file-entry
// operation list, keeping the top-level consumer-facing types thin and
// letting internal/services do the work.
package hfs

import (
	"github.com/deploymenttheory/go-hfs/internal/device"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/services"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// Volume is a handle onto one open HFS/HFS+/HFSX volume, tracking a
// Created -> Opening -> Open state machine (Open's constructors below
// only ever return a Volume once that machine has reached Open; anything
// else surfaces as an error instead).
type Volume struct {
	impl   *services.VolumeServiceImpl
	source interfaces.ByteSource
	owned  *device.FileSource
}

// Open opens the file at path as a volume. offset is the byte offset of
// the volume's start within the file (the CLI's "-o OFFSET"; 0 for a
// bare HFS/HFS+/HFSX image). nodeCacheSize bounds the shared B-tree node
// cache's capacity; callers typically pass device.Config.NodeCacheSize.
func Open(path string, offset int64, nodeCacheSize int) (*Volume, error) {
	file, err := device.OpenFile(path)
	if err != nil {
		return nil, err
	}

	var src interfaces.ByteSource = file
	if offset != 0 {
		sub, err := device.NewSubRange(file, offset, -1)
		if err != nil {
			file.Close()
			return nil, err
		}
		src = sub
	}

	impl, err := services.OpenVolume(src, nodeCacheSize)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Volume{impl: impl, source: src, owned: file}, nil
}

// OpenSource wraps an already-open interfaces.ByteSource — e.g. a
// device.SubRange into a partition table entry the caller located some
// other way. The caller keeps ownership of src; Close never closes it.
func OpenSource(src interfaces.ByteSource, nodeCacheSize int) (*Volume, error) {
	impl, err := services.OpenVolume(src, nodeCacheSize)
	if err != nil {
		return nil, err
	}
	return &Volume{impl: impl, source: src}, nil
}

// Close releases the façade. If Open opened the underlying file itself,
// Close closes it too; a Volume built with OpenSource leaves its source
// alone.
func (v *Volume) Close() error {
	err := v.impl.Close()
	if v.owned != nil {
		if cerr := v.owned.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// SignalAbort cooperatively cancels every in-flight and future B-tree
// descent this volume performs.
func (v *Volume) SignalAbort() {
	v.impl.SignalAbort()
}

// Header returns the volume's decoded header.
func (v *Volume) Header() *types.VolumeHeader { return v.impl.Header() }

// IsHFSPlus reports whether the volume uses the HFS+/HFSX dialect.
func (v *Volume) IsHFSPlus() bool { return v.impl.IsHFSPlus() }

// RootEntry resolves the volume's root directory.
func (v *Volume) RootEntry() (*FileEntry, error) {
	return v.EntryByIdentifier(types.RootFolderID)
}

// EntryByPath resolves a '/'-separated path starting at the volume root.
func (v *Volume) EntryByPath(path string) (*FileEntry, error) {
	entry, err := v.impl.Catalog.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	return &FileEntry{volume: v, entry: entry}, nil
}

// EntryByIdentifier resolves a catalog node ID via its thread record.
func (v *Volume) EntryByIdentifier(identifier types.CatalogNodeID) (*FileEntry, error) {
	entry, err := v.impl.Catalog.LookupByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	return &FileEntry{volume: v, entry: entry}, nil
}

// AllEntries returns every directory and file entry on the volume, in
// catalog leaf order, for the CLI's "-E all" mode.
func (v *Volume) AllEntries() ([]*FileEntry, error) {
	raw, err := v.impl.Catalog.ListAll()
	if err != nil {
		return nil, err
	}
	entries := make([]*FileEntry, len(raw))
	for i, e := range raw {
		entries[i] = &FileEntry{volume: v, entry: e}
	}
	return entries, nil
}

// ResolveHardLink follows a hard-link file record to the private inode
// file backing its content.
func (v *Volume) ResolveHardLink(entry *FileEntry) (*FileEntry, error) {
	linkID, err := entry.GetLinkIdentifier()
	if err != nil {
		return nil, err
	}
	resolved, err := v.impl.Catalog.ResolveHardLink(linkID)
	if err != nil {
		return nil, err
	}
	return &FileEntry{volume: v, entry: resolved}, nil
}
