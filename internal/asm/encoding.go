// Package asm implements CursedVM's two-pass assembler: a line-oriented
// tokenizer, a macro preprocessor, and a bit-template encoder that
// produces a "text" object and a "rodata" object with labels and
// relocations (spec.md section 4.3), grounded on the teacher's
// code.Make (big-endian, fixed operand widths per opcode) generalized
// from byte-oriented opcodes to CursedVM's 32-bit field layout.
package asm

import "cursedvm/internal/code"

// slot names which bit-field group of the 32-bit word a mnemonic's
// Nth textual operand binds into.
type slot int

const (
	slotReg0 slot = iota // r0, bits 20..16
	slotReg1             // r1, bits 12..8
	slotReg2             // r2, bits 4..0
	slotImm              // the 16-bit imm alias, bits 15..0 (c2,r1,c3,r2 together)
)

// encoding describes one mnemonic's fixed bits and operand bindings.
// class/c0/c1 are always literal per mnemonic: a mnemonic fixes the
// class subfunction, so the only bits bound to textual operands are
// the register fields and/or the immediate alias. Every other bit
// position in the 21-bit "argument area" (r0, c2, r1, c3, r2) that no
// operand binds is a substrate "?" position, filled at emission time
// by rotating the previous emitted word (spec.md section 9).
type encoding struct {
	class code.Class
	c0    uint8
	c1    uint8
	s     bool // literal starting value of the S bit
	sElig bool // whether "ipush" may legally rewrite this word's S bit + low 16
	args  []slot
}

// mnemonics is the fixed table the assembler's tokenizer consults:
// exactly one encoding per mnemonic, per spec.md section 6's "stable
// contract". Names and argument order are chosen so the concrete
// scenarios in spec.md section 8 assemble unmodified, e.g. "exit.i #7",
// "add $5, $3, $4", "c.eq.i $3, #4", "bc.i #2", "b.i ^start", "call.r $3".
var mnemonics = map[string]encoding{
	"nop": {class: code.ClassNop, sElig: true},

	"exit.i": {class: code.ClassExit, c0: 0b000, args: []slot{slotImm}},
	"exit.r": {class: code.ClassExit, c0: 0b001, args: []slot{slotReg0}},

	"push.i": {class: code.ClassPush, c0: 0b000, args: []slot{slotImm}},
	"push.r": {class: code.ClassPush, c0: 0b001, sElig: true, args: []slot{slotReg0}},

	"pop":       {class: code.ClassPop, c0: 0b000, sElig: true, args: []slot{slotReg0}},
	"pop.irs.i": {class: code.ClassPop, c0: 0b001, sElig: true, args: []slot{slotReg0}},
	"pop.irs.p": {class: code.ClassPop, c0: 0b011, sElig: true, args: []slot{slotReg0}},

	"ret": {class: code.ClassRet, sElig: true},

	"env.get":   {class: code.ClassEnv, c0: 0b000, args: []slot{slotReg0, slotReg1}},
	"env.getp":  {class: code.ClassEnv, c0: 0b001, args: []slot{slotReg0, slotReg1, slotReg2}},
	"env.load":  {class: code.ClassEnv, c0: 0b010, args: []slot{slotReg0, slotReg1}},
	"env.loadp": {class: code.ClassEnv, c0: 0b011, args: []slot{slotReg0, slotReg1, slotReg2}},
	"env.set":   {class: code.ClassEnv, c0: 0b100, args: []slot{slotReg0, slotReg1}},
	"env.setp":  {class: code.ClassEnv, c0: 0b101, args: []slot{slotReg0, slotReg1, slotReg2}},

	// b class: c0 bit0=call, bit1=abs; c1 bit0=cond, bit1=regMode.
	// Relative call (c0=0b001) is deliberately absent: spec.md section
	// 4.2 makes it illegal, and the decoder rejects it as a DecodeError
	// if ever reached, so there is no mnemonic that could encode it.
	"b.i":     {class: code.ClassB, c0: 0b000, c1: 0b000, args: []slot{slotImm}},
	"b.r":     {class: code.ClassB, c0: 0b000, c1: 0b010, args: []slot{slotReg0}},
	"bc.i":    {class: code.ClassB, c0: 0b000, c1: 0b001, args: []slot{slotImm}},
	"bc.r":    {class: code.ClassB, c0: 0b000, c1: 0b011, args: []slot{slotReg0}},
	"ba.i":    {class: code.ClassB, c0: 0b010, c1: 0b000, args: []slot{slotImm}},
	"ba.r":    {class: code.ClassB, c0: 0b010, c1: 0b010, args: []slot{slotReg0}},
	"bca.i":   {class: code.ClassB, c0: 0b010, c1: 0b001, args: []slot{slotImm}},
	"bca.r":   {class: code.ClassB, c0: 0b010, c1: 0b011, args: []slot{slotReg0}},
	"call.i":  {class: code.ClassB, c0: 0b011, c1: 0b000, args: []slot{slotImm}},
	"call.r":  {class: code.ClassB, c0: 0b011, c1: 0b010, args: []slot{slotReg0}},
	"callc.i": {class: code.ClassB, c0: 0b011, c1: 0b001, args: []slot{slotImm}},
	"callc.r": {class: code.ClassB, c0: 0b011, c1: 0b011, args: []slot{slotReg0}},

	// cmp immediate mode: c1=0b000, dest is the implicit comp register;
	// every immediate form still takes an (unused by c.not) #imm operand.
	"c.cmp.i":      {class: code.ClassCmp, c0: 0b000, c1: 0b000, args: []slot{slotReg0, slotImm}},
	"c.eq.i":       {class: code.ClassCmp, c0: 0b001, c1: 0b000, args: []slot{slotReg0, slotImm}},
	"c.ne.i":       {class: code.ClassCmp, c0: 0b010, c1: 0b000, args: []slot{slotReg0, slotImm}},
	"c.isnull.i":   {class: code.ClassCmp, c0: 0b011, c1: 0b000, args: []slot{slotReg0, slotImm}},
	"c.not.i":      {class: code.ClassCmp, c0: 0b100, c1: 0b000, sElig: true, args: []slot{slotReg0, slotImm}},
	"c.lt.i":       {class: code.ClassCmp, c0: 0b101, c1: 0b000, args: []slot{slotReg0, slotImm}},
	"c.gt.i":       {class: code.ClassCmp, c0: 0b110, c1: 0b000, args: []slot{slotReg0, slotImm}},
	"c.isnotnull.i": {class: code.ClassCmp, c0: 0b111, c1: 0b000, args: []slot{slotReg0, slotImm}},

	// cmp register mode: c1=0b001, destination is r1, operands r0/r2;
	// textual order is (dest, x, y) which binds to (slotReg1, slotReg0, slotReg2).
	"c.cmp.r":      {class: code.ClassCmp, c0: 0b000, c1: 0b001, args: []slot{slotReg1, slotReg0, slotReg2}},
	"c.eq.r":       {class: code.ClassCmp, c0: 0b001, c1: 0b001, args: []slot{slotReg1, slotReg0, slotReg2}},
	"c.ne.r":       {class: code.ClassCmp, c0: 0b010, c1: 0b001, args: []slot{slotReg1, slotReg0, slotReg2}},
	"c.isnull.r":   {class: code.ClassCmp, c0: 0b011, c1: 0b001, args: []slot{slotReg1, slotReg0, slotReg2}},
	"c.is.r":       {class: code.ClassCmp, c0: 0b100, c1: 0b001, args: []slot{slotReg1, slotReg0, slotReg2}},
	"c.lt.r":       {class: code.ClassCmp, c0: 0b101, c1: 0b001, args: []slot{slotReg1, slotReg0, slotReg2}},
	"c.gt.r":       {class: code.ClassCmp, c0: 0b110, c1: 0b001, args: []slot{slotReg1, slotReg0, slotReg2}},
	"c.isnotnull.r": {class: code.ClassCmp, c0: 0b111, c1: 0b001, args: []slot{slotReg1, slotReg0, slotReg2}},

	// cvt: c1 bit0=1 for immediate, 0 for register (opposite of cmp's
	// convention; the decoder in internal/vm/instr_cvt.go is authoritative).
	"cvt.null.i":  {class: code.ClassCvt, c0: 0b00, c1: 0b001, sElig: true, args: []slot{slotReg0, slotImm}},
	"cvt.int.i":   {class: code.ClassCvt, c0: 0b01, c1: 0b001, args: []slot{slotReg0, slotImm}},
	"cvt.float.i": {class: code.ClassCvt, c0: 0b10, c1: 0b001, args: []slot{slotReg0, slotImm}},
	"cvt.ptr.i":   {class: code.ClassCvt, c0: 0b11, c1: 0b001, args: []slot{slotReg0, slotImm}},

	"cvt.null.r":  {class: code.ClassCvt, c0: 0b000, c1: 0b000, args: []slot{slotReg0, slotReg2}},
	"cvt.int.r":   {class: code.ClassCvt, c0: 0b001, c1: 0b000, args: []slot{slotReg0, slotReg2}},
	"cvt.float.r": {class: code.ClassCvt, c0: 0b010, c1: 0b000, args: []slot{slotReg0, slotReg2}},
	"cvt.ptr.r":   {class: code.ClassCvt, c0: 0b011, c1: 0b000, args: []slot{slotReg0, slotReg2}},

	// repr: nested "reinterpret raw view as r1's named type, then
	// convert" form, c0 high bit set (0b100 | dest).
	"repr.int":   {class: code.ClassCvt, c0: 0b101, c1: 0b000, args: []slot{slotReg0, slotReg1, slotReg2}},
	"repr.float": {class: code.ClassCvt, c0: 0b110, c1: 0b000, args: []slot{slotReg0, slotReg1, slotReg2}},
	"repr.ptr":   {class: code.ClassCvt, c0: 0b111, c1: 0b000, args: []slot{slotReg0, slotReg1, slotReg2}},

	// num: dest, X, Y in textual order, matching spec.md's own example
	// "add $5, $3, $4". T occupies the S bit position.
	"add":  {class: code.ClassNum, c0: 0, s: false, args: []slot{slotReg0, slotReg1, slotReg2}},
	"add.f": {class: code.ClassNum, c0: 0, s: true, args: []slot{slotReg0, slotReg1, slotReg2}},
	"sub":  {class: code.ClassNum, c0: 1, s: false, args: []slot{slotReg0, slotReg1, slotReg2}},
	"sub.f": {class: code.ClassNum, c0: 1, s: true, args: []slot{slotReg0, slotReg1, slotReg2}},
	"mult": {class: code.ClassNum, c0: 2, s: false, args: []slot{slotReg0, slotReg1, slotReg2}},
	"mult.f": {class: code.ClassNum, c0: 2, s: true, args: []slot{slotReg0, slotReg1, slotReg2}},
	"div":  {class: code.ClassNum, c0: 3, s: false, args: []slot{slotReg0, slotReg1, slotReg2}},
	"div.f": {class: code.ClassNum, c0: 3, s: true, args: []slot{slotReg0, slotReg1, slotReg2}},
	"mod":  {class: code.ClassNum, c0: 4, s: false, args: []slot{slotReg0, slotReg1, slotReg2}},
	"mod.f": {class: code.ClassNum, c0: 4, s: true, args: []slot{slotReg0, slotReg1, slotReg2}},
	"and":  {class: code.ClassNum, c0: 5, s: false, args: []slot{slotReg0, slotReg1, slotReg2}},
	"or":   {class: code.ClassNum, c0: 5, s: true, args: []slot{slotReg0, slotReg1, slotReg2}},
	"xor":  {class: code.ClassNum, c0: 6, s: false, args: []slot{slotReg0, slotReg1, slotReg2}},
	"xnor": {class: code.ClassNum, c0: 6, s: true, args: []slot{slotReg0, slotReg1, slotReg2}},
	"shl":  {class: code.ClassNum, c0: 7, s: false, args: []slot{slotReg0, slotReg1, slotReg2}},
	"shr":  {class: code.ClassNum, c0: 7, s: true, args: []slot{slotReg0, slotReg1, slotReg2}},

	"read.int":   {class: code.ClassMem, c0: 0, c1: 0b000, args: []slot{slotReg0, slotReg1, slotReg2}},
	"read.float": {class: code.ClassMem, c0: 1, c1: 0b000, args: []slot{slotReg0, slotReg1, slotReg2}},
	"read.ptr":   {class: code.ClassMem, c0: 2, c1: 0b000, args: []slot{slotReg0, slotReg1, slotReg2}},
	"write":      {class: code.ClassMem, c0: 0, c1: 0b001, args: []slot{slotReg0, slotReg1, slotReg2}},

	"sys.reg":      {class: code.ClassSys, c0: 0b000, args: []slot{slotReg0}},
	"sys.reg.bp":   {class: code.ClassSys, c0: 0b100, args: []slot{slotReg0}},
	"sys.state":    {class: code.ClassSys, c0: 0b001},
	"sys.state.bp": {class: code.ClassSys, c0: 0b101},
}

// lookupMnemonic returns the encoding for a mnemonic and whether it exists.
func lookupMnemonic(name string) (encoding, bool) {
	e, ok := mnemonics[name]
	return e, ok
}
