package cmd

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-hfs/internal/hfs"
	"github.com/deploymenttheory/go-hfs/internal/textenc"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// writeBodyfile implements -B PATH [-d]: a Sleuthkit-3-compatible bodyfile
// of every catalog entry, one line per entry, in AllEntries order.
func writeBodyfile(vol *hfs.Volume, path string, digest bool) error {
	entries, err := vol.AllEntries()
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bodyfile %s: %w", path, err)
	}
	defer out.Close()

	for _, entry := range entries {
		line, err := bodyfileLine(entry, digest)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

// bodyfileLine builds one Sleuthkit-3 bodyfile line:
// md5|name|inode|mode_string|uid|gid|size|atime|mtime|ctime|crtime.
func bodyfileLine(entry *hfs.FileEntry, digest bool) (string, error) {
	var md5sum string
	if digest && !entry.IsDirectory() {
		var err error
		md5sum, err = md5SumEntry(entry)
		if err != nil {
			return "", err
		}
	}

	name := textenc.EscapeControlChars(entry.GetUTF8Name())
	inode := entry.GetIdentifier()

	mode, _ := entry.GetFileMode()
	modeString := formatModeString(mode)

	uid, _ := entry.GetOwnerIdentifier()
	gid, _ := entry.GetGroupIdentifier()
	size, _ := entry.GetSize()

	atime := optionalUnixTime(entry.GetAccessTime())
	mtime := entry.GetModificationTime().Unix()
	ctime := optionalUnixTime(entry.GetEntryModificationTime())
	crtime := entry.GetCreationTime().Unix()

	return fmt.Sprintf("%s|%s|%d|%s|%d|%d|%d|%d|%d|%d|%d",
		md5sum, name, inode, modeString, uid, gid, size, atime, mtime, ctime, crtime), nil
}

// optionalUnixTime collapses a (time.Time, error) pair from one of
// FileEntry's NotAvailable-returning timestamp getters into the bodyfile's
// convention for an absent field: zero.
func optionalUnixTime(t interface{ Unix() int64 }, err error) int64 {
	if err != nil {
		return 0
	}
	return t.Unix()
}

// md5SumEntry streams a regular file's data fork through MD5 in fixed-size
// chunks, rather than reading the whole fork into memory.
func md5SumEntry(entry *hfs.FileEntry) (string, error) {
	h := md5.New()
	buf := make([]byte, 64*1024)
	for {
		n, err := entry.ReadBuffer(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if n == 0 {
			break
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// formatModeString renders a BSD mode as ls-style "type+rwx" text, e.g.
// "-rw-r--r--" or "drwxr-xr-x".
func formatModeString(mode uint16) string {
	var typeChar byte
	switch types.Mode(mode) & types.ModeIFMT {
	case types.ModeIFDIR:
		typeChar = 'd'
	case types.ModeIFREG:
		typeChar = '-'
	case types.ModeIFLNK:
		typeChar = 'l'
	case types.ModeIFCHR:
		typeChar = 'c'
	case types.ModeIFBLK:
		typeChar = 'b'
	case types.ModeIFIFO:
		typeChar = 'p'
	case types.ModeIFSOCK:
		typeChar = 's'
	default:
		typeChar = '-'
	}
	return string(typeChar) + permTriplet(mode>>6) + permTriplet(mode>>3) + permTriplet(mode)
}

func permTriplet(bits uint16) string {
	out := []byte("---")
	if bits&0o4 != 0 {
		out[0] = 'r'
	}
	if bits&0o2 != 0 {
		out[1] = 'w'
	}
	if bits&0o1 != 0 {
		out[2] = 'x'
	}
	return string(out)
}
