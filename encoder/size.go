// size.go - operand size inference shared by the instruction encoders

package encoder

import (
	"github.com/fador/fadors-c99-sub002/operand"
	"github.com/fador/fadors-c99-sub002/regs"
)

// operandSizeBytes infers the logical operand size for a (src, dst) pair:
// a register operand's own width wins; with no register present the
// context's default word size is used (spec.md §4.E specifies size
// inference only for register-bearing forms; this fallback is this
// implementation's documented extension for memory-immediate forms).
func (c *Ctx) operandSizeBytes(ops ...operand.Operand) int {
	for _, op := range ops {
		if op.Kind == operand.KindReg {
			if sz := regs.Size(op.Reg); sz != 0 {
				return sz
			}
		}
	}
	return int(c.Bits) / 8
}

// needsRexW reports whether the W bit must be set for a given operand size
// in 64-bit mode.
func needsRexW(bits Bits, osBytes int) bool {
	return bits == Bits64 && osBytes == 8
}
