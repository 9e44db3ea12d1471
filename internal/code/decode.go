// Package code implements the 32-bit big-endian instruction word
// format: field extraction (decode), class/mnemonic tables, and a
// disassembler. Words are always big-endian on the wire (spec.md
// section 6); in memory they are plain uint32s, matching the teacher's
// own convention of using encoding/binary.BigEndian at the I/O
// boundary rather than inside the interpreter loop.
package code

// Class identifies one of the sixteen 4-bit instruction classes.
type Class uint8

const (
	ClassNop   Class = 0
	ClassExit  Class = 1
	ClassPush  Class = 2
	ClassPop   Class = 3
	ClassRet   Class = 4
	ClassEnv   Class = 5
	ClassB     Class = 6
	ClassCmp   Class = 7
	ClassCvt   Class = 8
	ClassNum   Class = 9
	ClassMem   Class = 10
	ClassSys   Class = 15
)

// IsReserved reports whether class has no handler (spec.md section
// 4.1: classes 11..14 are reserved and fatal).
func (c Class) IsReserved() bool {
	switch c {
	case 11, 12, 13, 14:
		return true
	}
	return c > 15
}

func (c Class) String() string {
	switch c {
	case ClassNop:
		return "nop"
	case ClassExit:
		return "exit"
	case ClassPush:
		return "push"
	case ClassPop:
		return "pop"
	case ClassRet:
		return "ret"
	case ClassEnv:
		return "env"
	case ClassB:
		return "b"
	case ClassCmp:
		return "cmp"
	case ClassCvt:
		return "cvt"
	case ClassNum:
		return "num"
	case ClassMem:
		return "mem"
	case ClassSys:
		return "sys"
	default:
		return "reserved"
	}
}

// Fields is a 32-bit instruction word decomposed into its fixed-position
// bit groups, per spec.md section 4.1.
type Fields struct {
	Word  uint32
	Class Class
	S     bool
	C0    uint8 // 3 bits
	C1    uint8 // 3 bits
	R0    uint8 // 5 bits
	C2    uint8 // 3 bits
	R1    uint8 // 5 bits
	C3    uint8 // 3 bits
	R2    uint8 // 5 bits
	Imm   uint16
}

// ImmSigned sign-extends the 16-bit immediate field to 32 bits.
func (f Fields) ImmSigned() int32 {
	return int32(int16(f.Imm))
}

// Decode splits a 32-bit word into its fields.
func Decode(word uint32) Fields {
	return Fields{
		Word:  word,
		Class: Class(word >> 28 & 0xF),
		S:     word>>27&0x1 != 0,
		C0:    uint8(word >> 24 & 0x7),
		C1:    uint8(word >> 21 & 0x7),
		R0:    uint8(word >> 16 & 0x1F),
		C2:    uint8(word >> 13 & 0x7),
		R1:    uint8(word >> 8 & 0x1F),
		C3:    uint8(word >> 5 & 0x7),
		R2:    uint8(word & 0x1F),
		Imm:   uint16(word & 0xFFFF),
	}
}

// Encode reassembles a word from its fields, ignoring f.Word. Used by
// tests to verify the decode/encode round trip; the assembler builds
// its words directly and does not call it.
func Encode(f Fields) uint32 {
	var w uint32
	w |= uint32(f.Class&0xF) << 28
	if f.S {
		w |= 1 << 27
	}
	w |= uint32(f.C0&0x7) << 24
	w |= uint32(f.C1&0x7) << 21
	w |= uint32(f.R0&0x1F) << 16
	w |= uint32(f.C2&0x7) << 13
	w |= uint32(f.R1&0x1F) << 8
	w |= uint32(f.C3&0x7) << 5
	w |= uint32(f.R2 & 0x1F)
	return w
}
