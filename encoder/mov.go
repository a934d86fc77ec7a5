// mov.go - mov, lea, and the zero-extending move family (§4.E)

package encoder

import (
	"github.com/fador/fadors-c99-sub002/operand"
	"github.com/fador/fadors-c99-sub002/regs"
	"github.com/fador/fadors-c99-sub002/reloc"
)

func isAccumulator(reg string) bool {
	return reg == "al" || reg == "ax" || reg == "eax" || reg == "rax"
}

// emitMov dispatches every `mov` operand shape the spec covers.
func (c *Ctx) emitMov(src, dst operand.Operand) {
	switch {
	case dst.Kind == operand.KindReg && src.Kind == operand.KindImm:
		c.emitMovImm(dst, src.Imm)
	case dst.Kind == operand.KindReg && src.Kind == operand.KindMemLabel:
		c.emitMovLabel(dst.Reg, src.Label, true)
	case dst.Kind == operand.KindMemLabel && src.Kind == operand.KindReg:
		c.emitMovLabel(src.Reg, dst.Label, false)
	case dst.Kind == operand.KindReg && src.Kind == operand.KindReg:
		c.emitMovRegRM(dst.Reg, src, true)
	case dst.Kind == operand.KindReg && src.IsMemory():
		c.emitMovRegRM(dst.Reg, src, true)
	case dst.IsMemory() && src.Kind == operand.KindReg:
		c.emitMovRegRM(src.Reg, dst, false)
	}
}

// emitMovImm handles `mov reg, imm` with B0+rb (8-bit) / B8+rd (wider),
// including the 64-bit full-width immediate form of scenario 3
// ("mov rax, 0x1234567890abcdef" -> 48 B8 <8 imm bytes>).
func (c *Ctx) emitMovImm(dst operand.Operand, imm int64) {
	osBytes := c.operandSizeBytes(dst)
	id := regs.ID(dst.Reg)
	rb := rexBits{w: needsRexW(c.Bits, osBytes), b: id >= 8}

	c.opSizePrefix(osBytes)
	c.emitRex(rb, regs.RequiresRex(dst.Reg))
	if osBytes == 1 {
		c.Buf.WriteU8(0xB0 + byte(id&7))
		c.Buf.WriteU8(byte(imm))
		return
	}
	c.Buf.WriteU8(0xB8 + byte(id&7))
	switch osBytes {
	case 2:
		c.Buf.WriteU16(uint16(imm))
	case 4:
		c.Buf.WriteU32(uint32(imm))
	case 8:
		c.Buf.WriteU64(uint64(imm))
	}
}

// emitMovLabel implements §4.E's "A1/A0 accumulator form ... otherwise
// 0x8B/0x8A with mod=00 rm=5 and a 32-bit displacement filled by an
// ABSOLUTE relocation". loadDirection is true for `mov reg, [label]`,
// false for `mov [label], reg`.
func (c *Ctx) emitMovLabel(reg, label string, loadDirection bool) {
	osBytes := regs.Size(reg)
	if isAccumulator(reg) {
		c.opSizePrefix(osBytes)
		rb := rexBits{w: needsRexW(c.Bits, osBytes)}
		c.emitRex(rb, false)
		switch {
		case osBytes == 1 && loadDirection:
			c.Buf.WriteU8(0xA0)
		case osBytes == 1 && !loadDirection:
			c.Buf.WriteU8(0xA2)
		case loadDirection:
			c.Buf.WriteU8(0xA1)
		default:
			c.Buf.WriteU8(0xA3)
		}
		off := c.Buf.Size()
		c.Buf.WriteU32(0)
		c.Sink.AddReloc(off, label, reloc.ABSOLUTE, reloc.SectText)
		return
	}

	id := regs.ID(reg)
	rb := rexBits{w: needsRexW(c.Bits, osBytes), r: id >= 8}
	c.opSizePrefix(osBytes)
	c.emitRex(rb, regs.RequiresRex(reg))
	if osBytes == 1 {
		if loadDirection {
			c.Buf.WriteU8(0x8A)
		} else {
			c.Buf.WriteU8(0x88)
		}
	} else {
		if loadDirection {
			c.Buf.WriteU8(0x8B)
		} else {
			c.Buf.WriteU8(0x89)
		}
	}
	c.encodeMemLabel(byte(id), label)
}

// emitMovRegRM handles register<->register and register<->memory mov in
// both directions via opcodes 0x88/0x89 (store) / 0x8A/0x8B (load).
func (c *Ctx) emitMovRegRM(reg string, rm operand.Operand, loadDirection bool) {
	osBytes := c.operandSizeBytes(operand.Reg(reg), rm)
	id := regs.ID(reg)
	rb := rexBits{w: needsRexW(c.Bits, osBytes), r: id >= 8}
	forceRex := regs.RequiresRex(reg)

	var opcode8, opcodeWide byte
	if loadDirection {
		opcode8, opcodeWide = 0x8A, 0x8B
	} else {
		opcode8, opcodeWide = 0x88, 0x89
	}
	opcode := opcodeWide
	if osBytes == 1 {
		opcode = opcode8
	}

	switch rm.Kind {
	case operand.KindReg:
		rmID := regs.ID(rm.Reg)
		rb.b = rmID >= 8
		forceRex = forceRex || regs.RequiresRex(rm.Reg)
		c.opSizePrefix(osBytes)
		c.emitRex(rb, forceRex)
		c.Buf.WriteU8(opcode)
		c.encodeRegDirect(byte(id), byte(rmID))
	case operand.KindMem:
		baseID := regs.ID(*rm.Base)
		rb.b = baseID >= 8
		c.opSizePrefix(osBytes)
		c.emitRex(rb, forceRex)
		c.Buf.WriteU8(opcode)
		c.encodeMem(byte(id), baseID, rm.Disp)
	}
}

// emitLea handles `lea reg, [mem]` (0x8D) and `lea reg, label`, which this
// spec compresses to `B8+rd imm32` with an ABSOLUTE relocation rather than
// a RIP-relative LEA, "rationale: it's a no-relocation-safe absolute
// materialization" (§4.E).
func (c *Ctx) emitLea(src, dst operand.Operand) {
	if dst.Kind != operand.KindReg {
		return
	}
	osBytes := c.operandSizeBytes(dst)
	id := regs.ID(dst.Reg)

	if src.Kind == operand.KindLabel {
		rb := rexBits{w: needsRexW(c.Bits, osBytes), b: id >= 8}
		c.opSizePrefix(osBytes)
		c.emitRex(rb, false)
		c.Buf.WriteU8(0xB8 + byte(id&7))
		off := c.Buf.Size()
		c.Buf.WriteU32(0)
		c.Sink.AddReloc(off, src.Label, reloc.ABSOLUTE, reloc.SectText)
		return
	}

	if src.Kind != operand.KindMem {
		return
	}
	baseID := regs.ID(*src.Base)
	rb := rexBits{w: needsRexW(c.Bits, osBytes), r: id >= 8, b: baseID >= 8}
	c.opSizePrefix(osBytes)
	c.emitRex(rb, false)
	c.Buf.WriteU8(0x8D)
	c.encodeMem(byte(id), baseID, src.Disp)
}

// emitMovzx handles movzbl/movzwl (§4.E "Zero-extends"): 0F B6 /r and
// 0F B7 /r with 32-bit operand size.
func (c *Ctx) emitMovzx(mnemonic string, src, dst operand.Operand) {
	if dst.Kind != operand.KindReg {
		return
	}
	id := regs.ID(dst.Reg)
	rb := rexBits{r: id >= 8}

	var opcode byte
	if mnemonic == "movzbl" {
		opcode = 0xB6
	} else {
		opcode = 0xB7
	}

	switch src.Kind {
	case operand.KindReg:
		srcID := regs.ID(src.Reg)
		rb.b = srcID >= 8
		c.emitRex(rb, regs.RequiresRex(src.Reg))
		c.Buf.WriteU8(0x0F)
		c.Buf.WriteU8(opcode)
		c.encodeRegDirect(byte(id), byte(srcID))
	case operand.KindMem:
		baseID := regs.ID(*src.Base)
		rb.b = baseID >= 8
		c.emitRex(rb, false)
		c.Buf.WriteU8(0x0F)
		c.Buf.WriteU8(opcode)
		c.encodeMem(byte(id), baseID, src.Disp)
	}
}
