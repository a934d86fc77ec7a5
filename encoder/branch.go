// branch.go - conditional/unconditional branches, calls, and setcc (§4.E)

package encoder

import (
	"github.com/fador/fadors-c99-sub002/operand"
	"github.com/fador/fadors-c99-sub002/regs"
)

// condCodes maps the condition mnemonic suffix used by jCC/setCC to the
// 4-bit condition code embedded in the opcode (§4.E "Branches", "SETcc").
var condCodes = map[string]byte{
	"o": 0x0, "no": 0x1, "b": 0x2, "nb": 0x3, "ae": 0x3, "nc": 0x3,
	"e": 0x4, "z": 0x4, "ne": 0x5, "nz": 0x5,
	"be": 0x6, "a": 0x7, "nbe": 0x7,
	"s": 0x8, "ns": 0x9, "p": 0xA, "pe": 0xA, "np": 0xB, "po": 0xB,
	"l": 0xC, "nge": 0xC, "ge": 0xD, "nl": 0xD,
	"le": 0xE, "ng": 0xE, "g": 0xF, "nle": 0xF,
}

// jccCondFromMnemonic strips the "j" prefix of a conditional-jump
// mnemonic (e.g. "jne" -> "ne").
func jccCondFromMnemonic(mnemonic string) (string, bool) {
	if len(mnemonic) < 2 || mnemonic[0] != 'j' {
		return "", false
	}
	cond := mnemonic[1:]
	_, ok := condCodes[cond]
	return cond, ok
}

// emitJcc handles conditional jumps: the two-byte `0F 8x` form with a
// 32-bit relative displacement and a RELATIVE relocation (§4.E
// "Branches"; scenario 5: "jne label" -> 0F 85 00 00 00 00 + reloc at +2).
func (c *Ctx) emitJcc(cond string, target operand.Operand) {
	if target.Kind != operand.KindLabel {
		return
	}
	cc, ok := condCodes[cond]
	if !ok {
		return
	}
	c.Buf.WriteU8(0x0F)
	c.Buf.WriteU8(0x80 | cc)
	c.emitRelocRel32(target.Label)
}

// emitJmp handles unconditional `jmp label` (0xE9 rel32 + RELATIVE reloc).
func (c *Ctx) emitJmp(target operand.Operand) {
	if target.Kind != operand.KindLabel {
		return
	}
	c.Buf.WriteU8(0xE9)
	c.emitRelocRel32(target.Label)
}

// emitCall handles `call label` (0xE8 rel32 + RELATIVE reloc).
func (c *Ctx) emitCall(target operand.Operand) {
	if target.Kind != operand.KindLabel {
		return
	}
	c.Buf.WriteU8(0xE8)
	c.emitRelocRel32(target.Label)
}

// emitSetcc handles `setCC reg8` (0F 9x /0, no REX.W) (§4.E "SETcc").
func (c *Ctx) emitSetcc(cond string, dst operand.Operand) {
	cc, ok := condCodes[cond]
	if !ok || dst.Kind != operand.KindReg {
		return
	}
	id := regs.ID(dst.Reg)
	rb := rexBits{b: id >= 8}
	c.emitRex(rb, regs.RequiresRex(dst.Reg))
	c.Buf.WriteU8(0x0F)
	c.Buf.WriteU8(0x90 | cc)
	c.encodeRegDirect(0, byte(id))
}

// setccCondFromMnemonic strips the "set" prefix of a setCC mnemonic.
func setccCondFromMnemonic(mnemonic string) (string, bool) {
	if len(mnemonic) < 4 || mnemonic[:3] != "set" {
		return "", false
	}
	cond := mnemonic[3:]
	_, ok := condCodes[cond]
	return cond, ok
}

// emitLoop is deliberately a no-op: per §9's unresolved-behavior note, the
// corpus's `loop` encoding writes a placeholder rel8 byte but registers a
// 32-bit relocation against it, which the comment in that revision admits
// is wrong unless a custom linker supports rel8 fixups. This
// implementation treats `loop` as unsupported until a rel8 relocation
// kind exists, emitting nothing (§4.E "Failure semantics").
func (c *Ctx) emitLoop(string, operand.Operand) {}
