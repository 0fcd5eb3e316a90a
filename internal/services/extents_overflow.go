package services

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-hfs/internal/parsers/forks"
	"github.com/deploymenttheory/go-hfs/internal/parsers/keys"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// ExtentsOverflowService implements extents.OverflowSource over an
// already-open extents-overflow B-tree. A fork that runs past its eight
// inline extents looks here for the extent records that continue its
// allocation, keyed by (identifier, fork type, starting block).
type ExtentsOverflowService struct {
	tree    *btrees.File
	hfsPlus bool
}

// NewExtentsOverflowService wraps an open extents-overflow B-tree file.
func NewExtentsOverflowService(tree *btrees.File, hfsPlus bool) (*ExtentsOverflowService, error) {
	if tree == nil {
		return nil, errs.New(errs.Argument, "services.NewExtentsOverflowService", fmt.Errorf("extents tree is nil"))
	}
	return &ExtentsOverflowService{tree: tree, hfsPlus: hfsPlus}, nil
}

// Lookup finds the extents-overflow record for (identifier, forkType) whose
// key's StartBlock exactly matches startBlock: the resolver always asks
// for the block number one past the last extent it has already consumed,
// and an overflow record's key is always written at the first block it
// continues.
func (s *ExtentsOverflowService) Lookup(identifier types.CatalogNodeID, forkType uint8, startBlock uint32) ([]types.ExtentDescriptor, bool, error) {
	target := types.ExtentsKey{FileID: identifier, ForkType: forkType, StartBlock: startBlock}

	nodeNumber := s.tree.Header().RootNode
	depth := 0
	for {
		node, err := s.tree.GetNodeByNumber(nodeNumber, depth)
		if err != nil {
			return nil, false, err
		}
		if types.NodeKind(node.Kind()) == types.KindLeaf {
			for i := 0; i < node.RecordCount(); i++ {
				record := node.Record(i)
				key, consumed, err := s.decodeKey(record)
				if err != nil {
					return nil, false, err
				}
				if key.Compare(target) != 0 {
					continue
				}
				extents, err := s.decodeExtents(record[consumed:])
				if err != nil {
					return nil, false, err
				}
				return extents, true, nil
			}
			return nil, false, nil
		}

		child, err := s.indexSearch(node, target)
		if err != nil {
			return nil, false, err
		}
		nodeNumber = child
		depth++
		if depth > types.MaxBTreeRecursionDepth {
			return nil, false, errs.New(errs.Corruption, "services.ExtentsOverflowService.Lookup",
				fmt.Errorf("exceeded max B-tree recursion depth (%d)", types.MaxBTreeRecursionDepth))
		}
	}
}

func (s *ExtentsOverflowService) decodeKey(record []byte) (types.ExtentsKey, int, error) {
	if s.hfsPlus {
		return keys.DecodeExtentsKeyHFSPlus(record)
	}
	return keys.DecodeExtentsKeyClassic(record)
}

func (s *ExtentsOverflowService) decodeExtents(value []byte) ([]types.ExtentDescriptor, error) {
	be := binary.BigEndian
	if s.hfsPlus {
		arr, err := forks.DecodeOverflowExtentsHFSPlus(value, be)
		if err != nil {
			return nil, err
		}
		return arr[:], nil
	}
	arr, err := forks.DecodeClassicExtents(value, be)
	if err != nil {
		return nil, err
	}
	return arr[:], nil
}

// indexSearch picks the child pointer of the largest key <= target in an
// index node, defaulting to the first child if target is smaller than
// every key.
func (s *ExtentsOverflowService) indexSearch(node interfaces.HFSNode, target types.ExtentsKey) (uint32, error) {
	if node.RecordCount() == 0 {
		return 0, errs.New(errs.Corruption, "services.ExtentsOverflowService.indexSearch", fmt.Errorf("empty index node"))
	}
	best := -1
	for i := 0; i < node.RecordCount(); i++ {
		key, _, err := s.decodeKey(node.Record(i))
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
	return s.indexChildPointer(node.Record(best))
}

// indexChildPointer decodes the child node number that follows an index
// record's key, accounting for classic HFS's pad byte when the key region
// is an odd number of bytes.
func (s *ExtentsOverflowService) indexChildPointer(record []byte) (uint32, error) {
	_, consumed, err := s.decodeKey(record)
	if err != nil {
		return 0, err
	}
	if !s.hfsPlus && consumed%2 != 0 {
		consumed++
	}
	if consumed+4 > len(record) {
		return 0, errs.New(errs.Corruption, "services.ExtentsOverflowService.indexChildPointer",
			fmt.Errorf("index record too short for child pointer"))
	}
	return binary.BigEndian.Uint32(record[consumed : consumed+4]), nil
}
