package encoder

import (
	"bytes"
	"testing"

	"github.com/fador/fadors-c99-sub002/buffer"
	"github.com/fador/fadors-c99-sub002/operand"
	"github.com/fador/fadors-c99-sub002/reloc"
)

func newTestCtx(bits Bits) (*Ctx, *buffer.Buffer, *reloc.Sink) {
	buf := buffer.New(16)
	sink := reloc.New()
	return New(buf, bits, sink), buf, sink
}

func TestEmitMovImm64Full(t *testing.T) {
	c, buf, _ := newTestCtx(Bits64)
	c.EmitInst2("mov", operand.Imm(0x1234567890abcdef), operand.Reg("rax"))

	want := []byte{0x48, 0xB8, 0xef, 0xcd, 0xab, 0x90, 0x78, 0x56, 0x34, 0x12}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestEmitAddRegRegRexW(t *testing.T) {
	c, buf, _ := newTestCtx(Bits64)
	c.EmitInst2("add", operand.Reg("rbx"), operand.Reg("rax"))

	// 48 01 d8 -- REX.W, opcode 0x01 (add r/m64, r64 direction), modrm rax<-rbx
	want := []byte{0x48, 0x01, 0xD8}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestEmitJneRelativeReloc(t *testing.T) {
	c, buf, sink := newTestCtx(Bits64)
	c.EmitInst1("jne", operand.Label("loop_top"))

	want := []byte{0x0F, 0x85, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
	if len(sink.Relocs) != 1 {
		t.Fatalf("expected 1 reloc, got %d", len(sink.Relocs))
	}
	r := sink.Relocs[0]
	if r.Offset != 2 {
		t.Errorf("expected reloc offset 2, got %d", r.Offset)
	}
	if r.Kind != reloc.RELATIVE {
		t.Errorf("expected RELATIVE reloc, got %v", r.Kind)
	}
	name := sink.Symbols[r.Symbol].Name
	if name != "loop_top" {
		t.Errorf("expected symbol loop_top, got %s", name)
	}
}

func TestEmitCmpRegImm8(t *testing.T) {
	c, buf, _ := newTestCtx(Bits32)
	c.EmitInst2("cmp", operand.Imm(5), operand.Reg("eax"))

	// 83 /7 ib: sign-extended 8-bit immediate form.
	want := []byte{0x83, 0xF8, 0x05}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestEmitAndAlwaysFullWidthImm(t *testing.T) {
	c, buf, _ := newTestCtx(Bits32)
	c.EmitInst2("and", operand.Imm(5), operand.Reg("eax"))

	want := []byte{0x81, 0xE0, 0x05, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestEmitSetccNoRexW(t *testing.T) {
	c, buf, _ := newTestCtx(Bits64)
	c.EmitInst1("sete", operand.Reg("al"))

	want := []byte{0x0F, 0x94, 0xC0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestEmitMovzbl(t *testing.T) {
	c, buf, _ := newTestCtx(Bits64)
	c.EmitInst2("movzbl", operand.Reg("al"), operand.Reg("eax"))

	want := []byte{0x0F, 0xB6, 0xC0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestEmitSplRequiresRexEvenUnextended(t *testing.T) {
	c, buf, _ := newTestCtx(Bits64)
	c.EmitInst2("mov", operand.Imm(1), operand.Reg("spl"))

	if len(buf.Bytes()) == 0 || buf.Bytes()[0]&0xF0 != 0x40 {
		t.Fatalf("expected a REX prefix byte, got % x", buf.Bytes())
	}
}

func TestUnsupportedMnemonicIsSilent(t *testing.T) {
	c, buf, _ := newTestCtx(Bits64)
	c.EmitInst2("bogus", operand.Reg("eax"), operand.Reg("ebx"))

	if buf.Size() != 0 {
		t.Fatalf("expected no bytes written for unsupported mnemonic, got % x", buf.Bytes())
	}
}

func TestEmitVaddpsVexTwoByteForm(t *testing.T) {
	c, buf, _ := newTestCtx(Bits64)
	c.EmitInst3("vaddps", operand.Reg("xmm1"), operand.Reg("xmm2"), operand.Reg("xmm0"))

	if buf.Size() == 0 || buf.Bytes()[0] != 0xC5 {
		t.Fatalf("expected 2-byte VEX prefix (C5), got % x", buf.Bytes())
	}
}
