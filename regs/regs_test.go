package regs

import "testing"

func TestUnknownRegisterReturnsNegativeOne(t *testing.T) {
	if id := ID("not_a_register"); id != -1 {
		t.Fatalf("expected -1, got %d", id)
	}
}

func TestSplBplCollideWithAhBhAtSameID(t *testing.T) {
	if ID("spl") != ID("ah") {
		t.Fatalf("expected spl and ah to share id %d/%d", ID("spl"), ID("ah"))
	}
	if !RequiresRex("spl") {
		t.Error("expected spl to require REX")
	}
	if RequiresRex("ah") {
		t.Error("expected ah not to require REX")
	}
}

func TestExtendedRegisters(t *testing.T) {
	if IsExtended("eax") {
		t.Error("eax should not be extended")
	}
	if !IsExtended("r8d") {
		t.Error("r8d should be extended")
	}
}

func TestSizes(t *testing.T) {
	cases := map[string]int{"al": 1, "ax": 2, "eax": 4, "rax": 8, "xmm0": 16, "ymm0": 32}
	for reg, want := range cases {
		if got := Size(reg); got != want {
			t.Errorf("Size(%s) = %d, want %d", reg, got, want)
		}
	}
}

func TestIsXMMIsYMM(t *testing.T) {
	if !IsXMM("xmm3") || IsYMM("xmm3") {
		t.Error("xmm3 should be XMM only")
	}
	if !IsYMM("ymm3") || IsXMM("ymm3") {
		t.Error("ymm3 should be YMM only")
	}
}
