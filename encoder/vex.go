// vex.go - VEX-prefixed AVX encoding (§4.E "VEX prefix")

package encoder

import (
	"github.com/fador/fadors-c99-sub002/operand"
	"github.com/fador/fadors-c99-sub002/regs"
)

// vexInfo captures the fields that compose either VEX form.
type vexInfo struct {
	rInv, xInv, bInv byte // inverted REX.R/X/B equivalents (1 when bit is 0)
	mmmmm            byte // opcode-map selector, 3-byte form only
	w                byte // VEX.W, 3-byte form only
	vvvv             byte // inverted second source register (1111 if unused)
	l                byte // vector length: 0 = 128-bit (xmm), 1 = 256-bit (ymm)
	pp               byte // mandatory-prefix selector (0=none,1=66,2=F3,3=F2)
}

// needsThreeByte reports whether the 3-byte C4 form is required. The 2-byte
// C5 form suffices only when mmmmm==0F, W==0, and X/B are both clear (§4.E
// "2-byte VEX").
func (v vexInfo) needsThreeByte() bool {
	return v.mmmmm != 1 || v.w != 0 || v.xInv == 0 || v.bInv == 0
}

// emit writes either the 2-byte (0xC5) or 3-byte (0xC4) VEX prefix.
func (c *Ctx) emitVex(v vexInfo, opcode byte) {
	if !v.needsThreeByte() {
		b1 := v.rInv<<7 | v.vvvv<<3 | v.l<<2 | v.pp
		c.Buf.WriteU8(0xC5)
		c.Buf.WriteU8(b1)
		c.Buf.WriteU8(opcode)
		return
	}
	c.Buf.WriteU8(0xC4)
	b1 := v.rInv<<7 | v.xInv<<6 | v.bInv<<5 | v.mmmmm
	b2 := v.w<<7 | v.vvvv<<3 | v.l<<2 | v.pp
	c.Buf.WriteU8(b1)
	c.Buf.WriteU8(b2)
	c.Buf.WriteU8(opcode)
}

// inv produces the VEX inverted-bit encoding of a raw extension bit: 0
// maps to 1 and vice versa, so "no extension" reads as all-ones.
func inv(bit bool) byte {
	if bit {
		return 0
	}
	return 1
}

// vecLen returns 0 for xmm operands and 1 for ymm operands.
func vecLen(reg string) byte {
	if regs.IsYMM(reg) {
		return 1
	}
	return 0
}

// emitVexArith covers the three-operand SSE/AVX arithmetic forms this
// backend targets (vaddps/vsubps/vmulps/vxorps on xmm/ymm registers),
// dst = src1 OP src2, all register-direct (§4.E "representative AVX
// ops").
var vexArithOpcode = map[string]byte{
	"vaddps": 0x58, "vsubps": 0x5C, "vmulps": 0x59, "vdivps": 0x5E, "vxorps": 0x57,
}

func isVexArithMnemonic(m string) bool {
	_, ok := vexArithOpcode[m]
	return ok
}

func (c *Ctx) emitVexArith(mnemonic string, src1, src2, dst operand.Operand) {
	opcode, ok := vexArithOpcode[mnemonic]
	if !ok || dst.Kind != operand.KindReg || src1.Kind != operand.KindReg || src2.Kind != operand.KindReg {
		return
	}
	dstID := regs.ID(dst.Reg)
	src1ID := regs.ID(src1.Reg)
	src2ID := regs.ID(src2.Reg)

	v := vexInfo{
		rInv: inv(dstID >= 8),
		xInv: 1,
		bInv: inv(src2ID >= 8),
		mmmmm: 1, // 0F
		w:    0,
		vvvv: byte(^src1ID) & 0xF,
		l:    vecLen(dst.Reg),
		pp:   0,
	}
	c.emitVex(v, opcode)
	c.encodeRegDirect(byte(dstID), byte(src2ID))
}

// emitVMovaps handles `vmovaps dst, src` register-to-register moves
// (0F 28 /r), used to materialize values into vector registers ahead of
// a vectorized arithmetic op.
func (c *Ctx) emitVMovaps(src, dst operand.Operand) {
	if dst.Kind != operand.KindReg || src.Kind != operand.KindReg {
		return
	}
	dstID := regs.ID(dst.Reg)
	srcID := regs.ID(src.Reg)
	v := vexInfo{
		rInv:  inv(dstID >= 8),
		xInv:  1,
		bInv:  inv(srcID >= 8),
		mmmmm: 1,
		vvvv:  0xF,
		l:     vecLen(dst.Reg),
	}
	c.emitVex(v, 0x28)
	c.encodeRegDirect(byte(dstID), byte(srcID))
}

// emitVZeroupper handles vzeroupper (C5 F8 77), which clears the upper
// ymm halves to avoid the SSE/AVX transition penalty (§4.E "vzeroupper").
// The encoder emits it only when a caller requests it through EmitInst0.
func (c *Ctx) emitVZeroupper() {
	c.Buf.WriteU8(0xC5)
	c.Buf.WriteU8(0xF8)
	c.Buf.WriteU8(0x77)
}
