package attributes

import (
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-hfs/internal/types"
)

func TestDecode_Inline(t *testing.T) {
	be := binary.BigEndian
	payload := []byte("com.apple.quarantine value")
	buf := make([]byte, 16+len(payload))
	be.PutUint32(buf[0:4], types.AttributeKindInline)
	be.PutUint32(buf[12:16], uint32(len(payload)))
	copy(buf[16:], payload)

	rec, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !rec.IsInline() {
		t.Fatalf("expected IsInline() true")
	}
	if string(rec.InlineData) != string(payload) {
		t.Errorf("InlineData = %q, want %q", rec.InlineData, payload)
	}
}

func TestDecode_Inline_SizeOverrun(t *testing.T) {
	be := binary.BigEndian
	buf := make([]byte, 20)
	be.PutUint32(buf[0:4], types.AttributeKindInline)
	be.PutUint32(buf[12:16], 100) // claims far more data than the record carries

	if _, err := Decode(buf); err == nil {
		t.Fatalf("expected error for overrunning inline_data_size")
	}
}

func TestDecode_Fork(t *testing.T) {
	be := binary.BigEndian
	buf := make([]byte, forkRecordSize)
	be.PutUint32(buf[0:4], types.AttributeKindFork)
	be.PutUint64(buf[8:16], 8192) // fork logical size

	rec, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !rec.IsFork() {
		t.Fatalf("expected IsFork() true")
	}
	if rec.Fork.LogicalSize != 8192 {
		t.Errorf("Fork.LogicalSize = %d, want 8192", rec.Fork.LogicalSize)
	}
}

func TestDecode_Extents(t *testing.T) {
	be := binary.BigEndian
	buf := make([]byte, extentsRecordSize)
	be.PutUint32(buf[0:4], types.AttributeKindExtents)
	be.PutUint32(buf[8:12], 500)  // extent 0 start block
	be.PutUint32(buf[12:16], 10)  // extent 0 block count
	be.PutUint32(buf[16:20], 600) // extent 1 start block
	be.PutUint32(buf[20:24], 20)  // extent 1 block count

	rec, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !rec.IsExtents() {
		t.Fatalf("expected IsExtents() true")
	}
	if rec.ContinuationExtents[0].StartBlock != 500 || rec.ContinuationExtents[0].BlockCount != 10 {
		t.Errorf("extent 0 = %+v", rec.ContinuationExtents[0])
	}
	if rec.ContinuationExtents[1].StartBlock != 600 || rec.ContinuationExtents[1].BlockCount != 20 {
		t.Errorf("extent 1 = %+v", rec.ContinuationExtents[1])
	}
}

func TestDecode_UnsupportedKind(t *testing.T) {
	be := binary.BigEndian
	buf := make([]byte, 16)
	be.PutUint32(buf[0:4], 0x99)

	if _, err := Decode(buf); err == nil {
		t.Fatalf("expected error for unsupported record type")
	}
}
