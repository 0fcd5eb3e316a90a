package keys

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

func encodeUTF16BEName(name string) []byte {
	units := utf16.Encode([]rune(name))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.BigEndian.PutUint16(buf[i*2:i*2+2], u)
	}
	return buf
}

func TestDecodeCatalogKeyHFSPlus(t *testing.T) {
	be := binary.BigEndian
	name := encodeUTF16BEName("Documents")
	recordLen := 6 + len(name)
	buf := make([]byte, 2+recordLen)
	be.PutUint16(buf[0:2], uint16(recordLen))
	be.PutUint32(buf[2:6], 2) // parent id
	be.PutUint16(buf[6:8], uint16(len(name)/2))
	copy(buf[8:], name)

	key, n, err := DecodeCatalogKeyHFSPlus(buf)
	if err != nil {
		t.Fatalf("DecodeCatalogKeyHFSPlus: %v", err)
	}
	if key.ParentID != 2 || key.Name != "Documents" {
		t.Errorf("got %+v", key)
	}
	if n != len(buf) {
		t.Errorf("consumed %d, want %d", n, len(buf))
	}
}

func TestDecodeCatalogKeyClassic(t *testing.T) {
	name := []byte("README")
	keyLen := 6 + len(name)
	buf := make([]byte, 1+keyLen)
	buf[0] = byte(keyLen)
	binary.BigEndian.PutUint32(buf[2:6], 16)
	buf[6] = byte(len(name))
	copy(buf[7:], name)

	key, n, err := DecodeCatalogKeyClassic(buf)
	if err != nil {
		t.Fatalf("DecodeCatalogKeyClassic: %v", err)
	}
	if key.ParentID != 16 || key.Name != "README" {
		t.Errorf("got %+v", key)
	}
	if n != len(buf) {
		t.Errorf("consumed %d, want %d", n, len(buf))
	}
}

func TestDecodeExtentsKeyHFSPlus(t *testing.T) {
	be := binary.BigEndian
	buf := make([]byte, 14)
	be.PutUint16(buf[0:2], 12)
	buf[2] = 0x00 // data fork
	be.PutUint32(buf[4:8], 20)
	be.PutUint32(buf[8:12], 8)

	key, _, err := DecodeExtentsKeyHFSPlus(buf)
	if err != nil {
		t.Fatalf("DecodeExtentsKeyHFSPlus: %v", err)
	}
	if key.FileID != 20 || key.StartBlock != 8 || key.ForkType != 0 {
		t.Errorf("got %+v", key)
	}
}

func TestDecodeAttributesKey(t *testing.T) {
	be := binary.BigEndian
	name := encodeUTF16BEName("com.apple.test")
	keyLen := 12 + len(name)
	buf := make([]byte, 2+keyLen)
	be.PutUint16(buf[0:2], uint16(keyLen))
	be.PutUint32(buf[4:8], 30)
	be.PutUint16(buf[12:14], uint16(len(name)/2))
	copy(buf[14:], name)

	key, _, err := DecodeAttributesKey(buf)
	if err != nil {
		t.Fatalf("DecodeAttributesKey: %v", err)
	}
	if key.FileID != 30 || key.Name != "com.apple.test" {
		t.Errorf("got %+v", key)
	}
}
