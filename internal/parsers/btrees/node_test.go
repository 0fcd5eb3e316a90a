package btrees

import (
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-hfs/internal/types"
)

// buildTestNode assembles a minimal node: descriptor, concatenated record
// bytes, and the trailing offset table in the on-disk descending order
// (entry 0 is the end of the last record / start of free space, entry N is
// the start of record 0).
func buildTestNode(kind types.NodeKind, records [][]byte) []byte {
	be := binary.BigEndian
	var body []byte
	starts := make([]uint16, len(records))
	for i, r := range records {
		starts[i] = uint16(descriptorSize + len(body))
		body = append(body, r...)
	}
	end := uint16(descriptorSize + len(body))

	buf := make([]byte, descriptorSize+len(body)+2*(len(records)+1))
	buf[8] = byte(int8(kind))
	be.PutUint16(buf[10:12], uint16(len(records)))
	copy(buf[descriptorSize:], body)

	tableStart := descriptorSize + len(body)
	be.PutUint16(buf[tableStart:tableStart+2], end)
	for i := 0; i < len(records); i++ {
		off := tableStart + (i+1)*2
		be.PutUint16(buf[off:off+2], starts[len(records)-1-i])
	}
	return buf
}

func TestDecodeNode_LeafWithRecords(t *testing.T) {
	records := [][]byte{[]byte("first"), []byte("second-record")}
	buf := buildTestNode(types.KindLeaf, records)

	n, err := DecodeNode(buf)
	if err != nil {
		t.Fatalf("DecodeNode: %v", err)
	}
	if types.NodeKind(n.Kind()) != types.KindLeaf {
		t.Errorf("Kind() = %v, want leaf", types.NodeKind(n.Kind()))
	}
	if n.RecordCount() != 2 {
		t.Fatalf("RecordCount() = %d, want 2", n.RecordCount())
	}
	if string(n.Record(0)) != "first" {
		t.Errorf("Record(0) = %q, want %q", n.Record(0), "first")
	}
	if string(n.Record(1)) != "second-record" {
		t.Errorf("Record(1) = %q, want %q", n.Record(1), "second-record")
	}
}

func TestDecodeNode_EmptyNode(t *testing.T) {
	buf := buildTestNode(types.KindHeader, nil)
	n, err := DecodeNode(buf)
	if err != nil {
		t.Fatalf("DecodeNode: %v", err)
	}
	if n.RecordCount() != 0 {
		t.Errorf("RecordCount() = %d, want 0", n.RecordCount())
	}
}

func TestDecodeNode_Truncated(t *testing.T) {
	_, err := DecodeNode([]byte{1, 2, 3})
	if err == nil {
		t.Fatalf("expected error decoding truncated node")
	}
}
