// ctx.go - encoder context and shared prefix/ModRM/SIB machinery (§4.E)
//
// The spec's own design notes (§9 "Global mutable encoder state") say a
// faithful implementation should pass an explicit context to every
// emission entry point instead of relying on package-level globals; that
// is what Ctx is. It plays the role the teacher's CPU_X86 struct plays for
// decoding (modrm/sib caching fields, current bus) but for encoding.

package encoder

import (
	"github.com/fador/fadors-c99-sub002/buffer"
	"github.com/fador/fadors-c99-sub002/reloc"
)

// Bits selects the processor mode the encoder targets.
type Bits int

const (
	Bits16 Bits = 16
	Bits32 Bits = 32
	Bits64 Bits = 64
)

// Ctx is the encoder's ambient state for one codegen job: the output
// buffer, the processor mode, and the relocation sink bytes get
// registered against.
type Ctx struct {
	Buf  *buffer.Buffer
	Bits Bits
	Sink *reloc.Sink
}

// New returns an encoder context writing into buf at the given bitness,
// registering relocations with sink.
func New(buf *buffer.Buffer, bits Bits, sink *reloc.Sink) *Ctx {
	return &Ctx{Buf: buf, Bits: bits, Sink: sink}
}

// rexBits holds the four logical bits that compose a REX prefix byte
// before it is known whether emission is required.
type rexBits struct {
	w, r, x, b bool
}

func (rb rexBits) any() bool { return rb.w || rb.r || rb.x || rb.b }

func (rb rexBits) byteValue() byte {
	v := byte(0x40)
	if rb.w {
		v |= 1 << 3
	}
	if rb.r {
		v |= 1 << 2
	}
	if rb.x {
		v |= 1 << 1
	}
	if rb.b {
		v |= 1
	}
	return v
}

// emitRex writes a REX prefix iff in 64-bit mode and (any bit set or an
// extended register is in play or the register mandates REX, e.g.
// spl/bpl/sil/dil) (§4.E "REX emission").
func (c *Ctx) emitRex(rb rexBits, forceRex bool) {
	if c.Bits != Bits64 {
		return
	}
	if rb.any() || forceRex {
		c.Buf.WriteU8(rb.byteValue())
	}
}

// opSizePrefix writes 0x66 when the logical operand size disagrees with
// the mode's default word size (§4.E "Prefix policy").
func (c *Ctx) opSizePrefix(osBytes int) {
	switch c.Bits {
	case Bits16:
		if osBytes == 4 {
			c.Buf.WriteU8(0x66)
		}
	case Bits32, Bits64:
		if osBytes == 2 {
			c.Buf.WriteU8(0x66)
		}
	}
}

// addrSizePrefix writes 0x67 when the addressing size disagrees with the
// mode's default (§4.E "Prefix policy"). The encoder does not model 16-bit
// addressing forms beyond this prefix bit since none of the instruction
// families in §4.E use 16-bit effective addresses.
func (c *Ctx) addrSizePrefix(use32BitAddr bool) {
	switch c.Bits {
	case Bits16:
		if use32BitAddr {
			c.Buf.WriteU8(0x67)
		}
	case Bits32:
		// A 16-bit address in 32-bit mode would need 0x67; operand.Mem
		// only carries 32/64-bit base registers so this never triggers.
	}
}

// modrm packs mod/reg/rm into one byte (§4.E "ModR/M + SIB").
func modrm(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | (rm & 7)
}

// sibPlainBase is the SIB byte expressing "no index, RSP/R12 as base"
// (scale=0, index=0b100, base=0b100) needed whenever rm==4 (§4.E).
const sibPlainBase = 0x24

// encodeMem writes the ModR/M (+ SIB, + displacement) bytes addressing a
// base+disp memory operand with register field reg, returning nothing (all
// output goes to c.Buf). baseID is the register id of the base register;
// only its low three bits are used here, and callers set REX.B/VEX.B from
// it themselves.
func (c *Ctx) encodeMem(reg byte, baseID int, disp int32) {
	rm := byte(baseID & 7)
	needSIB := rm == 4
	base5 := rm == 5

	var mod byte
	switch {
	case disp == 0 && !base5:
		mod = 0b00
	case disp >= -128 && disp <= 127:
		mod = 0b01
	default:
		mod = 0b10
	}
	if base5 && mod == 0b00 {
		// Base==5 (RBP/R13) always needs an explicit disp8/32 (§4.E).
		mod = 0b01
	}

	c.Buf.WriteU8(modrm(mod, reg, rm))
	if needSIB {
		c.Buf.WriteU8(sibPlainBase)
	}
	switch mod {
	case 0b01:
		c.Buf.WriteU8(byte(int8(disp)))
	case 0b10:
		c.Buf.WriteU32(uint32(disp))
	}
}

// encodeRegDirect writes the ModR/M byte for a register-direct operand
// (mod=11).
func (c *Ctx) encodeRegDirect(reg, rm byte) {
	c.Buf.WriteU8(modrm(0b11, reg, rm))
}

// encodeMemLabel writes ModR/M with mod=00, rm=101 (RIP-relative-shaped on
// real silicon; here a flat disp32 address per §4.E "A1/A0... otherwise
// 0x8B/0x8A with mod=00 rm=5 and a 32-bit displacement filled by an
// ABSOLUTE relocation") plus the placeholder displacement and relocation.
func (c *Ctx) encodeMemLabel(reg byte, label string) {
	c.Buf.WriteU8(modrm(0b00, reg, 0b101))
	off := c.Buf.Size()
	c.Buf.WriteU32(0)
	c.Sink.AddReloc(off, label, reloc.ABSOLUTE, reloc.SectText)
}

// emitRelocRel32 writes a placeholder 32-bit displacement and registers a
// RELATIVE relocation at its offset (§4.E "Branches": implicit -4 addend,
// i.e. measured from the end of the instruction/displacement field).
func (c *Ctx) emitRelocRel32(label string) {
	off := c.Buf.Size()
	c.Buf.WriteU32(0)
	c.Sink.AddReloc(off, label, reloc.RELATIVE, reloc.SectText)
}
