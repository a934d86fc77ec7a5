package buffer

import (
	"bytes"
	"testing"
)

func TestWritePrimitivesLittleEndian(t *testing.T) {
	b := New(0)
	b.WriteU8(0x01)
	b.WriteU16(0x0302)
	b.WriteU32(0x07060504)
	b.WriteU64(0x0f0e0d0c0b0a0908)

	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("got % x, want % x", b.Bytes(), want)
	}
	if b.Size() != len(want) {
		t.Fatalf("Size()=%d, want %d", b.Size(), len(want))
	}
}

func TestPatchU32(t *testing.T) {
	b := New(0)
	b.WriteU8(0xE9)
	off := b.Size()
	b.WriteU32(0)
	b.PatchU32(off, 0xdeadbeef)

	want := []byte{0xE9, 0xef, 0xbe, 0xad, 0xde}
	if !bytes.Equal(b.Bytes(), want) {
		t.Fatalf("got % x, want % x", b.Bytes(), want)
	}
}

func TestAppend(t *testing.T) {
	b := New(0)
	b.Append([]byte{1, 2, 3})
	if !bytes.Equal(b.Bytes(), []byte{1, 2, 3}) {
		t.Fatalf("got % x", b.Bytes())
	}
}
