package asm

import (
	"testing"

	"cursedvm/internal/code"
)

func TestAssembleExitImmediate(t *testing.T) {
	text, _, err := Assemble("exit.i #7")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(text.Words) != 1 {
		t.Fatalf("want 1 word, got %d", len(text.Words))
	}
	f := code.Decode(text.Words[0])
	if f.Class != code.ClassExit {
		t.Fatalf("class = %v, want exit", f.Class)
	}
	if f.ImmSigned() != 7 {
		t.Fatalf("imm = %d, want 7", f.ImmSigned())
	}
}

func TestAssembleAddRoundTrip(t *testing.T) {
	text, _, err := Assemble("cvt.int.i $3, #2\ncvt.int.i $4, #3\nadd $5, $3, $4\nexit.r $5")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(text.Words) != 4 {
		t.Fatalf("want 4 words, got %d", len(text.Words))
	}
	f := code.Decode(text.Words[2])
	if f.Class != code.ClassNum || f.C0 != 0 {
		t.Fatalf("unexpected add encoding: %+v", f)
	}
	if f.R0 != 5 || f.R1 != 3 || f.R2 != 4 {
		t.Fatalf("unexpected add operands: r0=%d r1=%d r2=%d", f.R0, f.R1, f.R2)
	}
	if f.S {
		t.Fatalf("add (non-.f) should not set T")
	}

	f = code.Decode(text.Words[3])
	if f.Class != code.ClassExit || f.C0&1 == 0 {
		t.Fatalf("exit.r should select register mode: %+v", f)
	}
	if f.R0 != 5 {
		t.Fatalf("exit.r operand = %d, want 5", f.R0)
	}
}

// TestRelativeBranchLabel pins the assembler half of spec.md section 8
// scenario 5: label "start" sits at offset 0 and the branch word at
// offset 1 carries one relative relocation against it. Linking that
// relocation into the low 16 bits is covered by the link package tests.
func TestRelativeBranchLabel(t *testing.T) {
	text, _, err := Assemble("start: cvt.int.i $3, #1\nb.i ^start")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	off, ok := text.Labels["start"]
	if !ok || off != 0 {
		t.Fatalf("label start = (%d,%v), want (0,true)", off, ok)
	}
	if len(text.Relocs) != 1 {
		t.Fatalf("want 1 relocation, got %d", len(text.Relocs))
	}
	r := text.Relocs[0]
	if r.Target != "start" || r.Kind != RelocRelative || r.Site != 1 {
		t.Fatalf("unexpected relocation: %+v", r)
	}
}

func TestStringDirectiveEmitsPaddedRodata(t *testing.T) {
	text, rdata, err := Assemble(`.rodata
s: .str "hi"
.text
exit.i #0`)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(text.Words) != 1 {
		t.Fatalf("want 1 text word, got %d", len(text.Words))
	}
	if len(rdata.Words) != 3 {
		// "hi" + NUL terminator, one word per character.
		t.Fatalf("want 3 rodata words, got %d", len(rdata.Words))
	}
	if off, ok := rdata.Labels["s"]; !ok || off != 0 {
		t.Fatalf("expected label %q at offset 0, got (%d,%v)", "s", off, ok)
	}
}

func TestQuotedStringOperandHoistsAutoLabel(t *testing.T) {
	text, rdata, err := Assemble(`cvt.ptr.i $0, "hi there"`)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(rdata.Words) == 0 {
		t.Fatalf("expected the string to be hoisted into rodata")
	}
	if len(text.Relocs) != 1 || text.Relocs[0].Kind != RelocAbsolute {
		t.Fatalf("expected one absolute relocation, got %+v", text.Relocs)
	}
}

// TestSubstrateBitRotation pins the deliberate "?" quirk from spec.md
// section 9: unused bit positions copy the previous emitted word
// rotated left by one.
func TestSubstrateBitRotation(t *testing.T) {
	// ret uses no register/imm operand, so every bit in the 21-bit
	// argument area is substrate. Two ret in a row: the second word's
	// argument-area bits must equal rotl32(first word, 1) restricted to
	// that mask.
	text, _, err := Assemble("ret\nret")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	first, second := text.Words[0], text.Words[1]
	const argMask = uint32(0x1F<<16 | 0x7<<13 | 0x1F<<8 | 0x7<<5 | 0x1F)
	want := rotl32(first, 1) & argMask
	got := second & argMask
	if got != want {
		t.Fatalf("substrate bits = %#x, want %#x (rotl of %#x)", got, want, first)
	}
}

func TestIpushRewritesPriorWord(t *testing.T) {
	text, _, err := Assemble("nop\nipush #-5")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(text.Words) != 1 {
		t.Fatalf("ipush must rewrite, not append: got %d words", len(text.Words))
	}
	f := code.Decode(text.Words[0])
	if !f.S {
		t.Fatalf("ipush should set S")
	}
	if f.ImmSigned() != -5 {
		t.Fatalf("imm = %d, want -5", f.ImmSigned())
	}
}

func TestIpushRequiresSEligiblePredecessor(t *testing.T) {
	_, _, err := Assemble("add $0, $1, $2\nipush #1")
	if err == nil {
		t.Fatalf("expected error: add does not declare S meaningful")
	}
}

func TestDuplicateLabelIsFatal(t *testing.T) {
	_, _, err := Assemble("a: nop\na: nop")
	if err == nil {
		t.Fatalf("expected duplicate label error")
	}
}

func TestDefineMacroSubstitution(t *testing.T) {
	text, _, err := Assemble("DEFINE ANSWER #42\nexit.i [ANSWER]")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	f := code.Decode(text.Words[0])
	if f.ImmSigned() != 42 {
		t.Fatalf("imm = %d, want 42", f.ImmSigned())
	}
}

func TestDefinexParameterizedMacro(t *testing.T) {
	src := "DEFINEX (DOUBLE;?x) cvt.int.i $0, x\n[DOUBLE] #9"
	text, _, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	f := code.Decode(text.Words[0])
	if f.Class != code.ClassCvt {
		t.Fatalf("expanded macro class = %v, want cvt", f.Class)
	}
	if f.ImmSigned() != 9 {
		t.Fatalf("imm = %d, want 9", f.ImmSigned())
	}
}
