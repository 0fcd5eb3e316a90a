package types

// BTreeHeaderRecord is the first of the three records carried by a B-tree
// file's header node (node 0): the header record itself. The other two
// (a reserved record and a node-allocation bitmap) are opaque to this
// library beyond their byte range.
//
// Reference: Apple TN1150 "B-Tree Header Record".
type BTreeHeaderRecord struct {
	TreeDepth     uint16
	RootNode      uint32
	LeafRecords   uint32
	FirstLeafNode uint32
	LastLeafNode  uint32
	NodeSize      uint16
	MaxKeyLength  uint16
	TotalNodes    uint32
	FreeNodes     uint32

	// KeyCompareType selects the name comparator: 0xCF for case-folding
	// (HFS+), 0xBC for binary/case-sensitive (HFSX). Only the catalog
	// B-tree's header record carries a meaningful value.
	KeyCompareType uint8

	// Attributes is the B-tree's attribute_flags bit field (e.g. "big
	// keys", "variable index keys").
	Attributes uint32
}

// NodeKind discriminates the four kinds of B-tree node.
type NodeKind int8

const (
	KindLeaf   NodeKind = NodeKind(int8(NodeKindLeaf))
	KindIndex  NodeKind = NodeKind(int8(NodeKindIndex))
	KindHeader NodeKind = NodeKind(int8(NodeKindHeader))
	KindMap    NodeKind = NodeKind(int8(NodeKindMap))
)

func (k NodeKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindIndex:
		return "index"
	case KindHeader:
		return "header"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// NodeDescriptor is the fixed 14-byte header every B-tree node begins with.
//
// Reference: Apple TN1150 "B-Tree Node Descriptor".
type NodeDescriptor struct {
	NextNode    uint32
	PrevNode    uint32
	Kind        NodeKind
	Level       uint8
	RecordCount uint16
}

// Node-level flags carried in the B-tree header record's "attributes" bit
// field (not to be confused with a node's own descriptor fields).
const (
	// BTreeAttrBadCloseTree indicates the B-tree was not closed properly.
	BTreeAttrBadCloseTree uint32 = 0x00000001
	// BTreeAttrBigKeysMask indicates keys are recorded as a length followed
	// by big-endian data (always set for catalog/extents/attributes trees).
	BTreeAttrBigKeysMask uint32 = 0x00000002
	// BTreeAttrVariableIndexKeysMask indicates index-node keys are
	// variable-length rather than fixed-length.
	BTreeAttrVariableIndexKeysMask uint32 = 0x00000004
)

// AttributeRecordFixedSize is the fixed portion (record_type + unknown1) of
// every attribute B-tree leaf value, before the sub-kind-specific payload.
const AttributeRecordFixedSize = 8
