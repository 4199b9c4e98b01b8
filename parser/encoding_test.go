package parser

import (
	"encoding/binary"
	"testing"
)

func utf16le(s string) []byte {
	out := []byte{0xFF, 0xFE}
	for _, r := range s {
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(r))
		out = append(out, buf[:]...)
	}
	return out
}

func TestDecodePlainUTF8(t *testing.T) {
	got, err := Decode([]byte("CUSTOMER_ID\nC1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "CUSTOMER_ID\nC1" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeStripsUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("CUSTOMER_ID")...)
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "CUSTOMER_ID" {
		t.Errorf("BOM not stripped: %q", got)
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	got, err := Decode(utf16le("A,B\n1,2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A,B\n1,2" {
		t.Errorf("got %q, want %q", got, "A,B\n1,2")
	}
}

func TestDecodeLatin1Fallback(t *testing.T) {
	// 0xE9 is é in Latin-1 and invalid as standalone UTF-8.
	got, err := Decode([]byte{'c', 'a', 'f', 0xE9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q, want café", got)
	}
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
