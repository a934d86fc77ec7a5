// operand.go - tagged operand value consumed by the x86 encoder

package operand

// Kind tags which case of Operand is populated.
type Kind int

const (
	KindReg Kind = iota
	KindMem
	KindMemLabel
	KindLabel
	KindImm
)

// Operand is the encoder's input value: a register, a base+displacement
// memory reference, a label-addressed memory reference, a bare label (for
// call/jmp targets and `lea reg, label`), or an immediate (§3).
type Operand struct {
	Kind Kind

	Reg string // register name, e.g. "eax", "r12b", "xmm0"

	Base *string // memory: base register name, nil => no base (SIB-less abs not modeled here)
	Disp int32   // memory: displacement

	Label string // mem_label / label

	Imm int64 // immediate
}

// Reg builds a register operand.
func Reg(name string) Operand { return Operand{Kind: KindReg, Reg: name} }

// Mem builds a base+displacement memory operand.
func Mem(base string, disp int32) Operand {
	b := base
	return Operand{Kind: KindMem, Base: &b, Disp: disp}
}

// MemLabel builds a label-addressed memory operand (`[label]`).
func MemLabel(label string) Operand { return Operand{Kind: KindMemLabel, Label: label} }

// Label builds a bare label operand (branch/call targets).
func Label(name string) Operand { return Operand{Kind: KindLabel, Label: name} }

// Imm builds an immediate operand.
func Imm(v int64) Operand { return Operand{Kind: KindImm, Imm: v} }

// IsRegister reports whether op is a register operand.
func (op Operand) IsRegister() bool { return op.Kind == KindReg }

// IsMemory reports whether op addresses memory (either form).
func (op Operand) IsMemory() bool { return op.Kind == KindMem || op.Kind == KindMemLabel }
