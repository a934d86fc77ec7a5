package reloc

import "testing"

func TestAddRelocCreatesForwardSymbol(t *testing.T) {
	s := New()
	s.AddReloc(4, "label", RELATIVE, SectText)

	idx := s.FindSymbol("label")
	if idx == -1 {
		t.Fatal("expected label to be interned")
	}
	if s.IsDefined(idx) {
		t.Fatal("expected forward-referenced symbol to be undefined")
	}
	if len(s.Relocs) != 1 || s.Relocs[0].Offset != 4 || s.Relocs[0].Kind != RELATIVE {
		t.Fatalf("unexpected reloc: %+v", s.Relocs)
	}
}

func TestAddSymbolUpdatesExisting(t *testing.T) {
	s := New()
	first := s.AddSymbol("foo", 0x10, SectData, 0, SymLocal)
	second := s.AddSymbol("foo", 0x20, SectData, 0, SymGlobal)

	if first != second {
		t.Fatalf("expected same index, got %d and %d", first, second)
	}
	if s.Symbols[first].Value != 0x20 || s.Symbols[first].Class != SymGlobal {
		t.Fatalf("expected symbol to be updated, got %+v", s.Symbols[first])
	}
}

func TestFindSymbolMissing(t *testing.T) {
	s := New()
	if idx := s.FindSymbol("nope"); idx != -1 {
		t.Fatalf("expected -1 for missing symbol, got %d", idx)
	}
}

func TestAddRelocThenAddSymbolDefinesIt(t *testing.T) {
	s := New()
	s.AddReloc(0, "fn", ABSOLUTE, SectText)
	idx := s.FindSymbol("fn")
	if s.IsDefined(idx) {
		t.Fatal("expected undefined before AddSymbol")
	}

	s.AddSymbol("fn", 0x1000, SectText, 0, SymGlobal)
	if !s.IsDefined(idx) {
		t.Fatal("expected defined after AddSymbol")
	}
}
