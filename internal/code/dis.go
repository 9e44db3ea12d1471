package code

import (
	"bytes"
	"fmt"
)

// Disassemble decodes each word in a program image and renders one line
// per instruction: offset, class/submode bits, registers and immediate.
// It does not attempt to recover the exact source mnemonic (several
// mnemonics share a class/submode and differ only in how the assembler
// validated their operands); it shows the decoded fields the
// interpreter itself would act on, which is what the -dump CLI flag
// prints. The sys "print full VM state" submode does not use it.
// Grounded on the teacher's
// code.Instructions.String, adapted from a variable-width byte stream
// to this spec's fixed-width word stream.
func Disassemble(words []uint32) string {
	var out bytes.Buffer
	for i, w := range words {
		f := Decode(w)
		fmt.Fprintf(&out, "%08x: %08x  %-4s s=%d c0=%03b c1=%03b r0=%-2d c2=%03b r1=%-2d c3=%03b r2=%-2d imm=%d\n",
			i, w, f.Class, b2i(f.S), f.C0, f.C1, f.R0, f.C2, f.R1, f.C3, f.R2, f.ImmSigned())
	}
	return out.String()
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
