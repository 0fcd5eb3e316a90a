package services

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/deploymenttheory/go-hfs/internal/cache"
	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/parsers/btrees"
	"github.com/deploymenttheory/go-hfs/internal/parsers/volumeheader"
	"github.com/deploymenttheory/go-hfs/internal/textenc"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// VolumeState is the Volume façade's lifecycle: Created -> Opening ->
// Open or Error, and Open -> Closed. There is no distinct Aborting state;
// an abort is a flag an open volume carries until Close, checked
// cooperatively by every in-flight and future B-tree descent.
type VolumeState int

const (
	VolumeStateCreated VolumeState = iota
	VolumeStateOpening
	VolumeStateOpen
	VolumeStateError
	VolumeStateClosed
)

func (s VolumeState) String() string {
	switch s {
	case VolumeStateCreated:
		return "Created"
	case VolumeStateOpening:
		return "Opening"
	case VolumeStateOpen:
		return "Open"
	case VolumeStateError:
		return "Error"
	case VolumeStateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// VolumeServiceImpl orchestrates one open volume's catalog, extents, and
// attributes B-trees behind a sync.RWMutex, wiring a cooperative abort
// flag into every tree it opens.
type VolumeServiceImpl struct {
	mu    sync.RWMutex
	state VolumeState

	source interfaces.ByteSource
	header *types.VolumeHeader

	catalogTree *btrees.File
	extentsTree *btrees.File
	attrsTree   *btrees.File

	Catalog *CatalogService
	Extents *ExtentsOverflowService
	Attrs   *AttributesService // nil on classic HFS, which has no attributes tree

	nameCmp   func(a, b string) int
	hfsPlus   bool
	abort     int32
	nodeCache *cache.NodeCache
}

// OpenVolume opens src, reads its volume header, and wires up the catalog,
// extents-overflow, and (HFS+/HFSX only) attributes B-trees, carrying the
// volume through its Created -> Opening -> Open transition. nodeCacheSize
// bounds the shared node cache's capacity (internal/device.Config.NodeCacheSize).
func OpenVolume(source interfaces.ByteSource, nodeCacheSize int) (*VolumeServiceImpl, error) {
	v := &VolumeServiceImpl{source: source, state: VolumeStateOpening}

	header, err := volumeheader.Read(source)
	if err != nil {
		v.state = VolumeStateError
		return nil, err
	}
	v.header = header
	v.hfsPlus = header.IsHFSPlusFamily()
	v.nodeCache = cache.NewNodeCache(nodeCacheSize)

	catalogTree, err := btrees.Open(cache.TreeIDCatalog, source, header.Catalog, header.AllocationBlockSize, 0, header.ExtentsStartBlock, v.nodeCache)
	if err != nil {
		v.state = VolumeStateError
		return nil, err
	}
	v.catalogTree = catalogTree
	v.nameCmp = v.pickNameComparator(catalogTree.Header().KeyCompareType)

	catalogSvc, err := NewCatalogService(catalogTree, v.hfsPlus, v.nameCmp)
	if err != nil {
		v.state = VolumeStateError
		return nil, err
	}
	v.Catalog = catalogSvc

	extentsTree, err := btrees.Open(cache.TreeIDExtents, source, header.Extents, header.AllocationBlockSize, 0, header.ExtentsStartBlock, v.nodeCache)
	if err != nil {
		v.state = VolumeStateError
		return nil, err
	}
	v.extentsTree = extentsTree

	extentsSvc, err := NewExtentsOverflowService(extentsTree, v.hfsPlus)
	if err != nil {
		v.state = VolumeStateError
		return nil, err
	}
	v.Extents = extentsSvc

	if v.hfsPlus && header.Attributes.TotalBlocks > 0 {
		attrsTree, err := btrees.Open(cache.TreeIDAttributes, source, header.Attributes, header.AllocationBlockSize, 0, header.ExtentsStartBlock, v.nodeCache)
		if err != nil {
			v.state = VolumeStateError
			return nil, err
		}
		v.attrsTree = attrsTree
		attrsSvc, err := NewAttributesService(attrsTree)
		if err != nil {
			v.state = VolumeStateError
			return nil, err
		}
		v.Attrs = attrsSvc
	}

	for _, t := range []*btrees.File{v.catalogTree, v.extentsTree, v.attrsTree} {
		if t != nil {
			t.SetAbortFlag(&v.abort)
		}
	}

	v.state = VolumeStateOpen
	return v, nil
}

// pickNameComparator selects the configured comparator: the catalog
// B-tree header's key_compare_type byte is authoritative for HFS+/HFSX;
// classic HFS always uses the MacRoman relative-string comparator,
// wrapped here to the string-based signature CatalogService expects.
func (v *VolumeServiceImpl) pickNameComparator(keyCompareType uint8) func(a, b string) int {
	if !v.hfsPlus {
		return func(a, b string) int {
			return textenc.CompareMacRomanNames(textenc.EncodeMacRoman(a), textenc.EncodeMacRoman(b))
		}
	}
	if keyCompareType == types.KeyCompareBinary {
		return textenc.CompareHFSXNames
	}
	return textenc.CompareHFSPlusNames
}

// Header returns the decoded volume header.
func (v *VolumeServiceImpl) Header() *types.VolumeHeader {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.header
}

// State reports the façade's current lifecycle state.
func (v *VolumeServiceImpl) State() VolumeState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// IsHFSPlus reports whether this volume uses the HFS+/HFSX key and record
// dialect (as opposed to classic HFS).
func (v *VolumeServiceImpl) IsHFSPlus() bool { return v.hfsPlus }

// AllocationBlockSize returns the volume's allocation block size in bytes.
func (v *VolumeServiceImpl) AllocationBlockSize() uint32 { return v.header.AllocationBlockSize }

// ExtentsStartBlock returns the classic-HFS extents start block offset
// (zero on HFS+/HFSX).
func (v *VolumeServiceImpl) ExtentsStartBlock() uint32 { return v.header.ExtentsStartBlock }

// Source returns the underlying byte source, for building ForkReaders.
func (v *VolumeServiceImpl) Source() interfaces.ByteSource { return v.source }

// SignalAbort sets the shared cooperative-cancellation flag every open
// B-tree checks at each node fetch.
func (v *VolumeServiceImpl) SignalAbort() {
	atomic.StoreInt32(&v.abort, 1)
}

// Close releases resources and transitions the volume to Closed. The
// underlying byte source is the caller's to close, following the same
// reader/handle split a file-backed reader's Close uses.
func (v *VolumeServiceImpl) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = VolumeStateClosed
	return nil
}

// NewForkReader builds a stream reader for one of a catalog entry's forks,
// wiring the extents-overflow service as its OverflowSource so a fork
// whose allocation exceeds its eight inline extents still resolves fully.
func (v *VolumeServiceImpl) NewForkReader(fork types.ForkDescriptor, identifier types.CatalogNodeID, forkType uint8) (*ForkReader, error) {
	if v.State() != VolumeStateOpen {
		return nil, errs.New(errs.Argument, "services.VolumeServiceImpl.NewForkReader",
			fmt.Errorf("volume is not open"))
	}
	return NewForkReader(v.source, fork, identifier, forkType, v.header.AllocationBlockSize, 0, v.header.ExtentsStartBlock, v.Extents)
}
