// buffer.go - append-only byte buffer for emitted machine code
//
// Mirrors the append-only growth the teacher's CPU emulators use for their
// memory arrays, but here growth is unbounded (no fixed address space) and
// every write is tracked so relocation offsets captured via Size() stay
// valid for the buffer's lifetime (§4.A).

package buffer

// Buffer is an append-only vector of bytes with little-endian primitive
// writers. Appending never invalidates offsets already recorded by a
// relocation sink, since Buffer only grows.
type Buffer struct {
	bytes []byte
}

// New returns an empty Buffer with cap pre-reserved hint.
func New(capHint int) *Buffer {
	return &Buffer{bytes: make([]byte, 0, capHint)}
}

// Size returns the current length in bytes; stable offsets for relocations
// are captured with this call.
func (b *Buffer) Size() int { return len(b.bytes) }

// Bytes returns the underlying slice. Callers must not retain it across
// further writes (it may be reallocated).
func (b *Buffer) Bytes() []byte { return b.bytes }

// WriteU8 appends a single byte.
func (b *Buffer) WriteU8(v byte) {
	b.bytes = append(b.bytes, v)
}

// WriteU16 appends v little-endian.
func (b *Buffer) WriteU16(v uint16) {
	b.bytes = append(b.bytes, byte(v), byte(v>>8))
}

// WriteU32 appends v little-endian.
func (b *Buffer) WriteU32(v uint32) {
	b.bytes = append(b.bytes, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteU64 appends v little-endian.
func (b *Buffer) WriteU64(v uint64) {
	b.bytes = append(b.bytes,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// Append copies raw bytes onto the end of the buffer.
func (b *Buffer) Append(data []byte) {
	b.bytes = append(b.bytes, data...)
}

// PatchU32 overwrites four bytes already written at offset (little-endian),
// for backpatching a displacement whose value becomes known later, such as
// a jump whose target lies in the same buffer. The encoder does not call
// it: it always writes a zero placeholder and registers a relocation.
func (b *Buffer) PatchU32(offset int, v uint32) {
	b.bytes[offset] = byte(v)
	b.bytes[offset+1] = byte(v >> 8)
	b.bytes[offset+2] = byte(v >> 16)
	b.bytes[offset+3] = byte(v >> 24)
}
