package services

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/parsers/attributes"
	"github.com/deploymenttheory/go-hfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-hfs/internal/parsers/keys"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// NamedAttribute pairs a decoded attribute record with the name its key
// carried, the shape the file-entry attribute getters return.
type NamedAttribute struct {
	Name   string
	Record *types.AttributeRecord
}

// AttributesService implements lookup and enumeration over the attributes
// B-tree (classic HFS volumes have none; callers on that dialect never
// construct one and report zero extended attributes directly).
//
// Grounded on the same lookup/listing shape as CatalogService, narrowed to
// the attributes key's (FileID, Name) ordering (HFS+ only; classic HFS has
// no attributes tree at all).
type AttributesService struct {
	tree *btrees.File
}

// NewAttributesService wraps an open attributes B-tree file.
func NewAttributesService(tree *btrees.File) (*AttributesService, error) {
	if tree == nil {
		return nil, errs.New(errs.Argument, "services.NewAttributesService", fmt.Errorf("attributes tree is nil"))
	}
	return &AttributesService{tree: tree}, nil
}

// ListForFile returns every attribute of the given file or folder, in key
// order, by walking the leaf chain from the first key with that FileID
// until a larger FileID is seen (the same pattern as
// CatalogService.ListDirectory, applied to the attributes key space).
func (s *AttributesService) ListForFile(fileID types.CatalogNodeID) ([]NamedAttribute, error) {
	firstKey := types.AttributesKey{FileID: fileID, Name: ""}
	nodeNumber, recordIndex, err := s.descendToLeaf(firstKey)
	if err != nil {
		return nil, err
	}

	var out []NamedAttribute
	for {
		node, err := s.tree.GetNodeByNumber(nodeNumber, 0)
		if err != nil {
			return nil, err
		}
		for i := recordIndex; i < node.RecordCount(); i++ {
			record := node.Record(i)
			key, consumed, err := keys.DecodeAttributesKey(record)
			if err != nil {
				return nil, err
			}
			if key.FileID != fileID {
				return out, nil
			}
			rec, err := attributes.Decode(record[consumed:])
			if err != nil {
				return nil, err
			}
			out = append(out, NamedAttribute{Name: key.Name, Record: rec})
		}
		recordIndex = 0
		next := node.ForwardLink()
		if next == 0 {
			return out, nil
		}
		nodeNumber = next
	}
}

// LookupByName finds the single named attribute of fileID, or reports
// NotFound.
func (s *AttributesService) LookupByName(fileID types.CatalogNodeID, name string) (*NamedAttribute, error) {
	target := types.AttributesKey{FileID: fileID, Name: name}
	nodeNumber, recordIndex, err := s.descendToLeaf(target)
	if err != nil {
		return nil, err
	}
	node, err := s.tree.GetNodeByNumber(nodeNumber, 0)
	if err != nil {
		return nil, err
	}
	for i := recordIndex; i < node.RecordCount(); i++ {
		record := node.Record(i)
		key, consumed, err := keys.DecodeAttributesKey(record)
		if err != nil {
			return nil, err
		}
		if key.Compare(target) != 0 {
			break
		}
		rec, err := attributes.Decode(record[consumed:])
		if err != nil {
			return nil, err
		}
		return &NamedAttribute{Name: key.Name, Record: rec}, nil
	}
	return nil, errs.New(errs.NotFound, "services.AttributesService.LookupByName",
		fmt.Errorf("no attribute %q on identifier %d", name, fileID))
}

func (s *AttributesService) descendToLeaf(target types.AttributesKey) (uint32, int, error) {
	nodeNumber := s.tree.Header().RootNode
	depth := 0
	for {
		node, err := s.tree.GetNodeByNumber(nodeNumber, depth)
		if err != nil {
			return 0, 0, err
		}
		if types.NodeKind(node.Kind()) == types.KindLeaf {
			for i := 0; i < node.RecordCount(); i++ {
				key, _, err := keys.DecodeAttributesKey(node.Record(i))
				if err != nil {
					return 0, 0, err
				}
				if key.Compare(target) >= 0 {
					return nodeNumber, i, nil
				}
			}
			return nodeNumber, node.RecordCount(), nil
		}

		child, err := s.indexChildPointer(node, target)
		if err != nil {
			return 0, 0, err
		}
		nodeNumber = child
		depth++
		if depth > types.MaxBTreeRecursionDepth {
			return 0, 0, errs.New(errs.Corruption, "services.AttributesService.descendToLeaf",
				fmt.Errorf("exceeded max B-tree recursion depth (%d)", types.MaxBTreeRecursionDepth))
		}
	}
}

func (s *AttributesService) indexChildPointer(node interfaces.HFSNode, target types.AttributesKey) (uint32, error) {
	if node.RecordCount() == 0 {
		return 0, errs.New(errs.Corruption, "services.AttributesService.indexChildPointer", fmt.Errorf("empty index node"))
	}
	best := -1
	for i := 0; i < node.RecordCount(); i++ {
		key, _, err := keys.DecodeAttributesKey(node.Record(i))
		if err != nil {
			return 0, err
		}
		if key.Compare(target) <= 0 {
			best = i
		} else {
			break
		}
	}
	if best < 0 {
		best = 0
	}
	_, consumed, err := keys.DecodeAttributesKey(node.Record(best))
	if err != nil {
		return 0, err
	}
	record := node.Record(best)
	if consumed+4 > len(record) {
		return 0, errs.New(errs.Corruption, "services.AttributesService.indexChildPointer",
			fmt.Errorf("index record too short for child pointer"))
	}
	return binary.BigEndian.Uint32(record[consumed : consumed+4]), nil
}
