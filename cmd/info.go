package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/hfs"
	"github.com/deploymenttheory/go-hfs/internal/textenc"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

const timeLayout = time.RFC3339

// printEntryByIdentifier implements -E IDENT: a numeric CNID prints one
// entry, "all" walks the whole catalog.
func printEntryByIdentifier(w io.Writer, vol *hfs.Volume, ident string, format string) error {
	if ident == "all" {
		all, err := vol.AllEntries()
		if err != nil {
			return err
		}
		infos := make([]EntryInfo, len(all))
		for i, entry := range all {
			info, err := buildEntryInfo(entry)
			if err != nil {
				return err
			}
			infos[i] = info
		}
		return FormatEntries(w, infos, format)
	}

	id, err := strconv.ParseUint(ident, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid -E identifier %q: %w", ident, err)
	}
	entry, err := vol.EntryByIdentifier(types.CatalogNodeID(id))
	if err != nil {
		return err
	}
	return printEntryInfo(w, entry, format)
}

// printEntryInfo prints one file entry's metadata: identifiers, kind,
// timestamps, permissions (when present), size, and symbolic-link target
// (when applicable).
func printEntryInfo(w io.Writer, entry *hfs.FileEntry, format string) error {
	info, err := buildEntryInfo(entry)
	if err != nil {
		return err
	}
	return FormatEntries(w, []EntryInfo{info}, format)
}

// buildEntryInfo translates one hfs.FileEntry into the CLI's presentation
// shape, applying control-character escaping to every name field.
func buildEntryInfo(entry *hfs.FileEntry) (EntryInfo, error) {
	kind := "file"
	if entry.IsDirectory() {
		kind = "folder"
	}

	info := EntryInfo{
		Name:       textenc.EscapeControlChars(entry.GetUTF8Name()),
		Identifier: uint32(entry.GetIdentifier()),
		Parent:     uint32(entry.GetParentIdentifier()),
		Kind:       kind,
		Created:    entry.GetCreationTime().Format(timeLayout),
		Modified:   entry.GetModificationTime().Format(timeLayout),
	}

	if mode, err := entry.GetFileMode(); err == nil {
		info.Mode = formatModeString(mode)
		owner, _ := entry.GetOwnerIdentifier()
		group, _ := entry.GetGroupIdentifier()
		info.Owner = &owner
		info.Group = &group
	}

	if !entry.IsDirectory() {
		size, err := entry.GetSize()
		if err != nil {
			return EntryInfo{}, err
		}
		info.Size = &size
		info.HasResourceFork = entry.HasResourceFork()

		target, err := entry.GetUTF8SymbolicLinkTarget()
		switch {
		case err == nil && target != "":
			info.LinkTarget = textenc.EscapeControlChars(target)
		case err == nil, errors.Is(err, errs.ErrNotAvailable):
			// no target, or not a symbolic link
		default:
			return EntryInfo{}, err
		}
	}

	count, err := entry.GetNumberOfExtendedAttributes()
	if err != nil {
		return EntryInfo{}, err
	}
	for i := 0; i < count; i++ {
		attr, err := entry.GetExtendedAttributeByIndex(i)
		if err != nil {
			return EntryInfo{}, err
		}
		info.Attributes = append(info.Attributes, textenc.EscapeControlChars(attr.Name))
	}
	return info, nil
}
