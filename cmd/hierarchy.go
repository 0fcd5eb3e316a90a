package cmd

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-hfs/internal/hfs"
	"github.com/deploymenttheory/go-hfs/internal/textenc"
)

// printHierarchy implements -H: an indented tree of the volume's entire
// directory structure.
func printHierarchy(w io.Writer, entry *hfs.FileEntry, indent string) error {
	name := entry.GetUTF8Name()
	if name == "" {
		name = "/"
	}
	marker := ""
	if entry.IsDirectory() {
		marker = "/"
	}
	fmt.Fprintf(w, "%s%s%s\n", indent, textenc.EscapeControlChars(name), marker)

	if !entry.IsDirectory() {
		return nil
	}

	count, err := entry.GetNumberOfSubFileEntries()
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		child, err := entry.GetSubFileEntryByIndex(i)
		if err != nil {
			return err
		}
		if err := printHierarchy(w, child, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}
