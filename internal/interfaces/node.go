package interfaces

// HFSNode is a decoded B-tree node shared across the catalog, extents, and
// attributes B-trees. Concrete decoding lives in internal/parsers/btrees;
// this seam lets internal/cache and the B-tree file reader depend on
// behavior instead of a concrete struct.
type HFSNode interface {
	// Kind returns the node's descriptor kind (leaf, index, header, map).
	Kind() int8

	// Height returns the descriptor's level byte as stored; leaf nodes
	// are at level 1 on disk.
	Height() uint8

	// RecordCount returns the number of records stored in the node.
	RecordCount() int

	// Record returns the raw bytes of the record at index i, spanning from
	// its offset-table entry to the next.
	Record(i int) []byte

	// ForwardLink returns the node number of the next node at this level,
	// or 0 if there is none.
	ForwardLink() uint32

	// BackwardLink returns the node number of the previous node at this
	// level, or 0 if there is none.
	BackwardLink() uint32
}
