// alu.go - arithmetic family, shifts, and imul (§4.E)

package encoder

import (
	"github.com/fador/fadors-c99-sub002/operand"
	"github.com/fador/fadors-c99-sub002/regs"
)

// aluExt maps the arithmetic mnemonics to their ModR/M reg-field extension
// (§4.E "Arithmetic family"); aluBaseOpcode holds their base opcodes.
var aluExt = map[string]byte{
	"add": 0, "or": 1, "and": 4, "sub": 5, "xor": 6, "cmp": 7,
}

var aluBaseOpcode = map[string]byte{
	"add": 0x00, "or": 0x08, "and": 0x20, "sub": 0x28, "xor": 0x30, "cmp": 0x38,
}

func isALUMnemonic(m string) bool {
	_, ok := aluExt[m]
	return ok
}

// rmInfo bundles what the ModR/M/SIB encoder needs to know about the
// operand that will occupy the rm field.
type rmInfo struct {
	extended bool // needs REX.B / VEX.B
}

// emitALU handles add/or/and/sub/xor/cmp in all operand shapes the spec
// covers: reg,reg / reg,mem / mem,reg / reg,imm / mem,imm.
func (c *Ctx) emitALU(mnemonic string, src, dst operand.Operand) {
	ext := aluExt[mnemonic]
	base := aluBaseOpcode[mnemonic]
	osBytes := c.operandSizeBytes(src, dst)

	switch {
	case dst.Kind == operand.KindReg && src.Kind == operand.KindImm:
		c.emitALUImm(ext, dst, src.Imm, mnemonic, osBytes)
	case dst.Kind == operand.KindMem && src.Kind == operand.KindImm:
		c.emitALUImm(ext, dst, src.Imm, mnemonic, osBytes)
	case dst.Kind == operand.KindReg && src.Kind == operand.KindReg:
		c.emitRegRM(base+directionBit(false), osBytes, src.Reg, dst)
	case dst.Kind == operand.KindReg && src.IsMemory():
		c.emitRegRM(base+directionBit(true), osBytes, dst.Reg, src)
	case dst.IsMemory() && src.Kind == operand.KindReg:
		c.emitRegRM(base+directionBit(false), osBytes, src.Reg, dst)
	}
}

// directionBit returns the D-bit contribution: 0x02 when the register
// operand is the destination (reg<-r/m direction 1), 0 when the register
// is the source being stored to r/m (direction 0). Either way the
// instruction computes dst OP src, which matters for the non-commutative
// members of the family (sub, cmp); the reg,reg form uses direction 0 with
// src in the reg field and dst in r/m.
func directionBit(regIsDst bool) byte {
	if regIsDst {
		return 0x02
	}
	return 0x00
}

// emitRegRM emits `opcode /r` with reg as the ModR/M reg field and rm as
// either a register-direct or memory r/m operand, handling the 8-bit
// variant's `+0/+1` opcode selection and REX/VEX-style extension bits.
func (c *Ctx) emitRegRM(opcode byte, osBytes int, reg string, rm operand.Operand) {
	if osBytes == 1 {
		opcode &^= 0x01 // 8-bit register variant selects +0 on the base opcode
	} else {
		opcode |= 0x01
	}

	regID := regs.ID(reg)
	rb := rexBits{w: needsRexW(c.Bits, osBytes), r: regID >= 8}
	forceRex := regs.RequiresRex(reg)

	switch rm.Kind {
	case operand.KindReg:
		rmID := regs.ID(rm.Reg)
		rb.b = rmID >= 8
		forceRex = forceRex || regs.RequiresRex(rm.Reg)
		c.opSizePrefix(osBytes)
		c.emitRex(rb, forceRex)
		c.Buf.WriteU8(opcode)
		c.encodeRegDirect(byte(regID), byte(rmID))
	case operand.KindMem:
		baseID := regs.ID(*rm.Base)
		rb.b = baseID >= 8
		c.opSizePrefix(osBytes)
		c.emitRex(rb, forceRex)
		c.Buf.WriteU8(opcode)
		c.encodeMem(byte(regID), baseID, rm.Disp)
	case operand.KindMemLabel:
		c.opSizePrefix(osBytes)
		c.emitRex(rb, forceRex)
		c.Buf.WriteU8(opcode)
		c.encodeMemLabel(byte(regID), rm.Label)
	}
}

// emitALUImm emits the immediate forms of the arithmetic family: 0x80
// (8-bit imm), 0x83 (sign-extended 8-bit into wider operand), or 0x81
// (full-width immediate). `and` always uses the full-width immediate form
// (§4.E: "and always uses full-width immediates").
func (c *Ctx) emitALUImm(ext byte, dst operand.Operand, imm int64, mnemonic string, osBytes int) {
	regID := -1
	forceRex := false
	rb := rexBits{w: needsRexW(c.Bits, osBytes)}

	if osBytes == 1 {
		c.emitALUImmOpcode(0x80, ext, dst, rb, forceRex, osBytes)
		c.Buf.WriteU8(byte(imm))
		return
	}

	canSignExtend8 := mnemonic != "and" && imm >= -128 && imm <= 127
	if canSignExtend8 {
		c.emitALUImmOpcode(0x83, ext, dst, rb, forceRex, osBytes)
		c.Buf.WriteU8(byte(int8(imm)))
		return
	}

	c.emitALUImmOpcode(0x81, ext, dst, rb, forceRex, osBytes)
	if osBytes == 2 {
		c.Buf.WriteU16(uint16(imm))
	} else {
		c.Buf.WriteU32(uint32(imm))
	}
	_ = regID
}

func (c *Ctx) emitALUImmOpcode(opcode, ext byte, dst operand.Operand, rb rexBits, forceRex bool, osBytes int) {
	switch dst.Kind {
	case operand.KindReg:
		id := regs.ID(dst.Reg)
		rb.b = id >= 8
		forceRex = forceRex || regs.RequiresRex(dst.Reg)
		c.opSizePrefix(osBytes)
		c.emitRex(rb, forceRex)
		c.Buf.WriteU8(opcode)
		c.encodeRegDirect(ext, byte(id))
	case operand.KindMem:
		baseID := regs.ID(*dst.Base)
		rb.b = baseID >= 8
		c.opSizePrefix(osBytes)
		c.emitRex(rb, forceRex)
		c.Buf.WriteU8(opcode)
		c.encodeMem(ext, baseID, dst.Disp)
	}
}

// shiftExt maps shl/shr/sar to their ModR/M reg-field extension (§4.E
// "Shifts").
var shiftExt = map[string]byte{"shl": 4, "shr": 5, "sar": 7}

func isShiftMnemonic(m string) bool {
	_, ok := shiftExt[m]
	return ok
}

// emitShift handles shl/shr/sar reg|mem, imm|cl (§4.E "Shifts"): 0xD1 for
// imm==1, 0xC1 for imm8, 0xD3 for cl-as-count.
func (c *Ctx) emitShift(mnemonic string, src, dst operand.Operand) {
	ext := shiftExt[mnemonic]
	osBytes := c.operandSizeBytes(dst)

	var opcode byte
	var immByte *byte
	switch {
	case src.Kind == operand.KindImm && src.Imm == 1:
		opcode = 0xD1
	case src.Kind == operand.KindImm:
		opcode = 0xC1
		b := byte(src.Imm)
		immByte = &b
	case src.Kind == operand.KindReg && src.Reg == "cl":
		opcode = 0xD3
	default:
		return
	}

	rb := rexBits{w: needsRexW(c.Bits, osBytes)}
	switch dst.Kind {
	case operand.KindReg:
		id := regs.ID(dst.Reg)
		rb.b = id >= 8
		c.opSizePrefix(osBytes)
		c.emitRex(rb, regs.RequiresRex(dst.Reg))
		c.Buf.WriteU8(opcode)
		c.encodeRegDirect(ext, byte(id))
	case operand.KindMem:
		baseID := regs.ID(*dst.Base)
		rb.b = baseID >= 8
		c.opSizePrefix(osBytes)
		c.emitRex(rb, false)
		c.Buf.WriteU8(opcode)
		c.encodeMem(ext, baseID, dst.Disp)
	default:
		return
	}
	if immByte != nil {
		c.Buf.WriteU8(*immByte)
	}
}

// emitIMul handles `imul reg, imm` (0x6B/0x69) and `imul reg, reg`
// (0F AF /r) (§4.E "imul reg, imm"). Per §9's open design question, the
// two-operand `imul reg, imm` form here drives REX.R and REX.B both from
// the single destination register (ModR/M reg==rm==dst), matching the
// "intent is two-operand imul reg, reg, imm" reading rather than the
// alternate 3-operand-with-independent-R/B reading; see DESIGN.md.
func (c *Ctx) emitIMul(src, dst operand.Operand) {
	if dst.Kind != operand.KindReg || (src.Kind != operand.KindImm && src.Kind != operand.KindReg) {
		return
	}
	osBytes := c.operandSizeBytes(dst)
	id := regs.ID(dst.Reg)
	rb := rexBits{w: needsRexW(c.Bits, osBytes), r: id >= 8, b: id >= 8}

	if src.Kind == operand.KindImm {
		c.opSizePrefix(osBytes)
		c.emitRex(rb, false)
		if src.Imm >= -128 && src.Imm <= 127 {
			c.Buf.WriteU8(0x6B)
			c.encodeRegDirect(byte(id), byte(id))
			c.Buf.WriteU8(byte(int8(src.Imm)))
		} else {
			c.Buf.WriteU8(0x69)
			c.encodeRegDirect(byte(id), byte(id))
			c.Buf.WriteU32(uint32(src.Imm))
		}
		return
	}

	// imul reg, reg -> 0F AF /r (dst is reg field, src is rm field).
	srcID := regs.ID(src.Reg)
	rb = rexBits{w: needsRexW(c.Bits, osBytes), r: id >= 8, b: srcID >= 8}
	c.opSizePrefix(osBytes)
	c.emitRex(rb, false)
	c.Buf.WriteU8(0x0F)
	c.Buf.WriteU8(0xAF)
	c.encodeRegDirect(byte(id), byte(srcID))
}
