// Package services implements the search, listing, hard-link resolution,
// and stream-reading operations built on top of the B-tree file reader and
// record decoders, and the concrete extents-overflow wiring that lets
// regular files' and folders' forks span more than their eight inline
// extents.
package services

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-hfs/internal/parsers/catalog"
	"github.com/deploymenttheory/go-hfs/internal/parsers/keys"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// HardLinkDirectoryName is the first path component of the private
// directory HFS+ hard-link targets live under. The leading NUL bytes are
// part of the on-disk name and are never shown to callers.
const HardLinkDirectoryName = "\x00\x00\x00\x00HFS+ Private Data"

// CatalogEntry is the decoded form of one catalog leaf entry a search can
// return: exactly one of Directory or File is non-nil.
type CatalogEntry struct {
	Identifier types.CatalogNodeID
	ParentID   types.CatalogNodeID
	Name       string
	Directory  *types.DirectoryRecord
	File       *types.FileRecord
}

// IsDirectory reports whether this entry is a folder.
func (e *CatalogEntry) IsDirectory() bool { return e.Directory != nil }

// CatalogService implements catalog search and directory listing over an
// already-open catalog B-tree file.
type CatalogService struct {
	tree        *btrees.File
	hfsPlus     bool
	nameCompare func(a, b string) int
}

// NewCatalogService wraps an open catalog B-tree file. hfsPlus selects the
// HFS+/HFSX key and record dialect; nameCompare is the tree's configured
// name comparator (case-folding, binary, or MacRoman uppercase-fold).
func NewCatalogService(tree *btrees.File, hfsPlus bool, nameCompare func(a, b string) int) (*CatalogService, error) {
	if tree == nil {
		return nil, errs.New(errs.Argument, "services.NewCatalogService", fmt.Errorf("catalog tree is nil"))
	}
	if nameCompare == nil {
		return nil, errs.New(errs.Argument, "services.NewCatalogService", fmt.Errorf("nameCompare is nil"))
	}
	return &CatalogService{tree: tree, hfsPlus: hfsPlus, nameCompare: nameCompare}, nil
}

// LookupByParentAndName descends the catalog B-tree for the exact
// (parentID, name) key.
func (s *CatalogService) LookupByParentAndName(parentID types.CatalogNodeID, name string) (*CatalogEntry, error) {
	target := types.CatalogKey{ParentID: parentID, Name: name}
	return s.search(target)
}

// LookupByIdentifier finds the entry with the given CNID via its thread
// record: a first descent on (identifier, "") yields the
// thread record carrying the entry's real parent and name, then a second
// descent resolves the entry itself.
func (s *CatalogService) LookupByIdentifier(identifier types.CatalogNodeID) (*CatalogEntry, error) {
	threadKey := types.CatalogKey{ParentID: identifier, Name: ""}
	leaf, recordIndex, err := s.findLeafRecord(threadKey)
	if err != nil {
		return nil, err
	}
	value, err := s.recordValue(leaf, recordIndex)
	if err != nil {
		return nil, err
	}
	recordType, err := catalog.RecordType(value)
	if err != nil {
		return nil, err
	}
	if recordType != types.RecordTypeHFSDirThread && recordType != types.RecordTypeHFSFileThread {
		return nil, errs.New(errs.NotFound, "services.CatalogService.LookupByIdentifier",
			fmt.Errorf("identifier %d has no thread record", identifier))
	}
	thread, err := catalog.DecodeThreadRecord(value, s.hfsPlus)
	if err != nil {
		return nil, err
	}
	return s.LookupByParentAndName(thread.ParentID, thread.Name)
}

// ResolvePath splits a '/'-separated path and performs one
// LookupByParentAndName per component, starting from the HFS+ root folder
// CNID.
func (s *CatalogService) ResolvePath(path string) (*CatalogEntry, error) {
	entry := &CatalogEntry{Identifier: types.RootFolderID, Name: "/"}
	components := strings.Split(path, "/")
	for _, c := range components {
		if c == "" {
			continue
		}
		next, err := s.LookupByParentAndName(entry.Identifier, c)
		if err != nil {
			return nil, err
		}
		entry = next
	}
	return entry, nil
}

// ResolveHardLink looks up the private inode file backing a hard link's
// target.
func (s *CatalogService) ResolveHardLink(linkIdentifier uint32) (*CatalogEntry, error) {
	name := fmt.Sprintf("iNode%d", linkIdentifier)
	return s.ResolvePath(HardLinkDirectoryName + "/" + name)
}

// ListDirectory scans the catalog starting at the smallest key with the
// given parent and walks the leaf chain until a larger parent is seen.
// Thread records are skipped.
func (s *CatalogService) ListDirectory(parentID types.CatalogNodeID) ([]*CatalogEntry, error) {
	firstKey := types.CatalogKey{ParentID: parentID, Name: ""}
	nodeNumber, recordIndex, err := s.descendToLeaf(firstKey)
	if err != nil {
		return nil, err
	}

	var entries []*CatalogEntry
	for {
		node, err := s.tree.GetNodeByNumber(nodeNumber, 0)
		if err != nil {
			return nil, err
		}
		for i := recordIndex; i < node.RecordCount(); i++ {
			value := node.Record(i)
			key, consumed, err := s.decodeKey(value)
			if err != nil {
				return nil, err
			}
			if key.ParentID != parentID {
				return entries, nil
			}
			entry, err := s.decodeEntry(key, value[consumed:])
			if err != nil {
				return nil, err
			}
			if entry != nil {
				entries = append(entries, entry)
			}
		}
		recordIndex = 0
		next := node.ForwardLink()
		if next == 0 {
			return entries, nil
		}
		nodeNumber = next
	}
}

// ListAll walks every leaf node of the catalog B-tree from its first leaf
// and decodes every directory and file record, skipping thread records.
// Grounds the "-E all" CLI mode with a full leaf-chain walk rather than
// identifier enumeration, since CNIDs are not guaranteed contiguous.
func (s *CatalogService) ListAll() ([]*CatalogEntry, error) {
	nodeNumber := s.tree.Header().FirstLeafNode
	if nodeNumber == 0 {
		return nil, nil
	}

	var entries []*CatalogEntry
	for nodeNumber != 0 {
		node, err := s.tree.GetNodeByNumber(nodeNumber, 0)
		if err != nil {
			return nil, err
		}
		for i := 0; i < node.RecordCount(); i++ {
			value := node.Record(i)
			key, consumed, err := s.decodeKey(value)
			if err != nil {
				return nil, err
			}
			entry, err := s.decodeEntry(key, value[consumed:])
			if err != nil {
				return nil, err
			}
			if entry != nil {
				entries = append(entries, entry)
			}
		}
		nodeNumber = node.ForwardLink()
	}
	return entries, nil
}

// search descends to the exact key and decodes the matching entry.
func (s *CatalogService) search(target types.CatalogKey) (*CatalogEntry, error) {
	leaf, recordIndex, err := s.findLeafRecord(target)
	if err != nil {
		return nil, err
	}
	key, consumed, err := s.decodeKey(leaf.Record(recordIndex))
	if err != nil {
		return nil, err
	}
	value := leaf.Record(recordIndex)[consumed:]
	entry, err := s.decodeEntry(key, value)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errs.New(errs.NotFound, "services.CatalogService.search",
			fmt.Errorf("key (%d, %q) is a thread record, not an entry", target.ParentID, target.Name))
	}
	return entry, nil
}

func (s *CatalogService) decodeEntry(key types.CatalogKey, value []byte) (*CatalogEntry, error) {
	recordType, err := catalog.RecordType(value)
	if err != nil {
		return nil, err
	}
	switch recordType {
	case types.RecordTypeHFSDirectory:
		var dir *types.DirectoryRecord
		if s.hfsPlus {
			dir, err = catalog.DecodeDirectoryRecordHFSPlus(value)
		} else {
			dir, err = catalog.DecodeDirectoryRecordClassic(value)
		}
		if err != nil {
			return nil, err
		}
		return &CatalogEntry{Identifier: dir.FolderID, ParentID: key.ParentID, Name: key.Name, Directory: dir}, nil
	case types.RecordTypeHFSFile:
		var file *types.FileRecord
		if s.hfsPlus {
			file, err = catalog.DecodeFileRecordHFSPlus(value)
		} else {
			file, err = catalog.DecodeFileRecordClassic(value)
		}
		if err != nil {
			return nil, err
		}
		return &CatalogEntry{Identifier: file.FileID, ParentID: key.ParentID, Name: key.Name, File: file}, nil
	case types.RecordTypeHFSDirThread, types.RecordTypeHFSFileThread:
		return nil, nil
	default:
		return nil, errs.New(errs.Unsupported, "services.CatalogService.decodeEntry",
			fmt.Errorf("unsupported catalog record type 0x%x", recordType))
	}
}

// recordValue returns a leaf record's value bytes (after its key).
func (s *CatalogService) recordValue(node interfaces.HFSNode, index int) ([]byte, error) {
	_, consumed, err := s.decodeKey(node.Record(index))
	if err != nil {
		return nil, err
	}
	return node.Record(index)[consumed:], nil
}

func (s *CatalogService) decodeKey(record []byte) (types.CatalogKey, int, error) {
	if s.hfsPlus {
		return keys.DecodeCatalogKeyHFSPlus(record)
	}
	return keys.DecodeCatalogKeyClassic(record)
}

// findLeafRecord descends to the leaf node holding the exact key and
// returns the node and the matching record's index.
func (s *CatalogService) findLeafRecord(target types.CatalogKey) (interfaces.HFSNode, int, error) {
	nodeNumber, _, err := s.descendToLeaf(target)
	if err != nil {
		return nil, 0, err
	}
	node, err := s.tree.GetNodeByNumber(nodeNumber, 0)
	if err != nil {
		return nil, 0, err
	}
	for i := 0; i < node.RecordCount(); i++ {
		key, _, err := s.decodeKey(node.Record(i))
		if err != nil {
			return nil, 0, err
		}
		cmp := key.Compare(target, s.nameCompare)
		if cmp == 0 {
			return node, i, nil
		}
		if cmp > 0 {
			break
		}
	}
	return nil, 0, errs.New(errs.NotFound, "services.CatalogService.findLeafRecord",
		fmt.Errorf("key (%d, %q) not found", target.ParentID, target.Name))
}

// descendToLeaf walks index nodes from the root, scanning each in order for
// the largest key <= target, until it reaches a leaf. It returns the leaf
// node number and the index of the first record with a key >= target
// (used by ListDirectory to find the start of a parent's run).
func (s *CatalogService) descendToLeaf(target types.CatalogKey) (uint32, int, error) {
	nodeNumber := s.tree.Header().RootNode
	depth := 0
	for {
		node, err := s.tree.GetNodeByNumber(nodeNumber, depth)
		if err != nil {
			return 0, 0, err
		}
		if types.NodeKind(node.Kind()) == types.KindLeaf {
			for i := 0; i < node.RecordCount(); i++ {
				key, _, err := s.decodeKey(node.Record(i))
				if err != nil {
					return 0, 0, err
				}
				if key.Compare(target, s.nameCompare) >= 0 {
					return nodeNumber, i, nil
				}
			}
			return nodeNumber, node.RecordCount(), nil
		}

		child, err := s.indexSearch(node, target)
		if err != nil {
			return 0, 0, err
		}
		nodeNumber = child
		depth++
		if depth > types.MaxBTreeRecursionDepth {
			return 0, 0, errs.New(errs.Corruption, "services.CatalogService.descendToLeaf",
				fmt.Errorf("exceeded max B-tree recursion depth (%d)", types.MaxBTreeRecursionDepth))
		}
	}
}

// indexSearch picks the child pointer of the largest key <= target in an
// index node, defaulting to the first child if target is smaller than
// every key (descending the left spine).
func (s *CatalogService) indexSearch(node interfaces.HFSNode, target types.CatalogKey) (uint32, error) {
	if node.RecordCount() == 0 {
		return 0, errs.New(errs.Corruption, "services.CatalogService.indexSearch", fmt.Errorf("empty index node"))
	}
	best := -1
	for i := 0; i < node.RecordCount(); i++ {
		key, _, err := s.decodeKey(node.Record(i))
		if err != nil {
			return 0, err
		}
		if key.Compare(target, s.nameCompare) <= 0 {
			best = i
		} else {
			break
		}
	}
	if best < 0 {
		best = 0
	}
	return s.indexChildPointer(node.Record(best))
}

// indexChildPointer decodes the child node number that follows an index
// record's key, accounting for classic HFS's pad byte when the key region
// is an odd number of bytes (HFS+ key regions are always even).
func (s *CatalogService) indexChildPointer(record []byte) (uint32, error) {
	_, consumed, err := s.decodeKey(record)
	if err != nil {
		return 0, err
	}
	if !s.hfsPlus && consumed%2 != 0 {
		consumed++
	}
	if consumed+4 > len(record) {
		return 0, errs.New(errs.Corruption, "services.CatalogService.indexChildPointer",
			fmt.Errorf("index record too short for child pointer"))
	}
	return binary.BigEndian.Uint32(record[consumed : consumed+4]), nil
}
