package operand

import "testing"

func TestConstructorsSetKind(t *testing.T) {
	if Reg("eax").Kind != KindReg {
		t.Error("Reg should set KindReg")
	}
	if !Reg("eax").IsRegister() {
		t.Error("IsRegister should be true for a register operand")
	}
	if !Mem("rbp", -8).IsMemory() {
		t.Error("IsMemory should be true for a base+disp operand")
	}
	if !MemLabel("x").IsMemory() {
		t.Error("IsMemory should be true for a label-addressed memory operand")
	}
	if Label("x").IsMemory() || Label("x").IsRegister() {
		t.Error("a bare label is neither memory nor register")
	}
	if Imm(42).Imm != 42 {
		t.Error("Imm should preserve its value")
	}
}

func TestMemStoresBaseAndDisp(t *testing.T) {
	op := Mem("rbp", -16)
	if op.Base == nil || *op.Base != "rbp" {
		t.Fatalf("expected base rbp, got %+v", op.Base)
	}
	if op.Disp != -16 {
		t.Fatalf("expected disp -16, got %d", op.Disp)
	}
}
