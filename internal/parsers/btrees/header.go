package btrees

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-hfs/internal/errs"
	"github.com/deploymenttheory/go-hfs/internal/interfaces"
	"github.com/deploymenttheory/go-hfs/internal/types"
)

// DecodeHeaderRecord decodes the header record carried by a B-tree file's
// node 0 (its first of three records — a reserved record and a node
// allocation bitmap follow but are not modeled beyond their byte range).
//
// Reference: Apple TN1150 "B-Tree Header Record".
func DecodeHeaderRecord(record []byte) (*types.BTreeHeaderRecord, error) {
	const headerRecordSize = 106
	if len(record) < headerRecordSize {
		return nil, errs.New(errs.InvalidFormat, "btrees.DecodeHeaderRecord",
			fmt.Errorf("header record truncated: need %d bytes, have %d", headerRecordSize, len(record)))
	}
	be := binary.BigEndian

	return &types.BTreeHeaderRecord{
		TreeDepth:      be.Uint16(record[0:2]),
		RootNode:       be.Uint32(record[2:6]),
		LeafRecords:    be.Uint32(record[6:10]),
		FirstLeafNode:  be.Uint32(record[10:14]),
		LastLeafNode:   be.Uint32(record[14:18]),
		NodeSize:       be.Uint16(record[18:20]),
		MaxKeyLength:   be.Uint16(record[20:22]),
		TotalNodes:     be.Uint32(record[22:26]),
		FreeNodes:      be.Uint32(record[26:30]),
		KeyCompareType: record[32],
		Attributes:     be.Uint32(record[34:38]),
	}, nil
}

// ReadHeaderNode decodes node 0 of a B-tree file and returns both the
// decoded node (kind must be header) and its header record.
func ReadHeaderNode(buf []byte) (interfaces.HFSNode, *types.BTreeHeaderRecord, error) {
	n, err := DecodeNode(buf)
	if err != nil {
		return nil, nil, err
	}
	if types.NodeKind(n.Kind()) != types.KindHeader {
		return nil, nil, errs.New(errs.InvalidFormat, "btrees.ReadHeaderNode",
			fmt.Errorf("node 0 has kind %s, want header", types.NodeKind(n.Kind())))
	}
	if n.RecordCount() < 1 {
		return nil, nil, errs.New(errs.Corruption, "btrees.ReadHeaderNode",
			fmt.Errorf("header node carries no records"))
	}
	hdr, err := DecodeHeaderRecord(n.Record(0))
	if err != nil {
		return nil, nil, err
	}
	return n, hdr, nil
}
