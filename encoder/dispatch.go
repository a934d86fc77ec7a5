// dispatch.go - mnemonic dispatch entry points (§4.E, §7 "Failure semantics")
//
// Every EmitInstN call is silent on an unsupported mnemonic/operand-shape
// pairing: nothing is written to the buffer and no relocation is
// registered. Callers that need to know whether an instruction was
// actually encoded can compare c.Buf.Size() before and after the call.

package encoder

import "github.com/fador/fadors-c99-sub002/operand"

// EmitInst0 dispatches operand-less instructions (ret, leave, cdq, cqo,
// nop, ud2, hlt, syscall, vzeroupper).
func (c *Ctx) EmitInst0(mnemonic string) {
	if mnemonic == "vzeroupper" {
		c.emitVZeroupper()
		return
	}
	if isAtomMnemonic(mnemonic) {
		c.emitAtom(mnemonic)
	}
}

// EmitInst1 dispatches single-operand instructions: conditional/
// unconditional jumps, calls, setCC, and loop.
func (c *Ctx) EmitInst1(mnemonic string, op operand.Operand) {
	switch {
	case mnemonic == "jmp":
		c.emitJmp(op)
	case mnemonic == "call":
		c.emitCall(op)
	case mnemonic == "loop":
		c.emitLoop(mnemonic, op)
	default:
		if cond, ok := jccCondFromMnemonic(mnemonic); ok {
			c.emitJcc(cond, op)
			return
		}
		if cond, ok := setccCondFromMnemonic(mnemonic); ok {
			c.emitSetcc(cond, op)
		}
	}
}

// EmitInst2 dispatches two-operand instructions: the arithmetic family,
// shifts, imul, mov, lea, and movzx. Operand order follows the spec's
// AT&T-style (src, dst) convention throughout §4.E's scenarios.
func (c *Ctx) EmitInst2(mnemonic string, src, dst operand.Operand) {
	switch {
	case isALUMnemonic(mnemonic):
		c.emitALU(mnemonic, src, dst)
	case isShiftMnemonic(mnemonic):
		c.emitShift(mnemonic, src, dst)
	case mnemonic == "imul":
		c.emitIMul(src, dst)
	case mnemonic == "mov":
		c.emitMov(src, dst)
	case mnemonic == "lea":
		c.emitLea(src, dst)
	case mnemonic == "movzbl", mnemonic == "movzwl":
		c.emitMovzx(mnemonic, src, dst)
	case mnemonic == "vmovaps":
		c.emitVMovaps(src, dst)
	}
}

// EmitInst3 dispatches three-operand VEX arithmetic instructions
// (vaddps/vsubps/vmulps/vdivps/vxorps): dst = src1 OP src2.
func (c *Ctx) EmitInst3(mnemonic string, src1, src2, dst operand.Operand) {
	if isVexArithMnemonic(mnemonic) {
		c.emitVexArith(mnemonic, src1, src2, dst)
	}
}
