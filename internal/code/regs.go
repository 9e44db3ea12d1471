package code

// Register slot indices with side-effecting read/write hooks, per
// spec.md sections 3 and 4.1. Lives in package code (rather than
// package vm) so the assembler can resolve symbolic register names
// without importing the interpreter.
const (
	RegZero = 0
	RegComp = 1
	RegPC   = 2
	RegP0   = 24
	RegP1   = 25
	RegIRSP = 26
	RegIPOP = 27
	RegIPTR = 28
	RegSP   = 29
	RegPUSH = 30
	RegPOP  = 31

	NumRegisters = 32
)

// RegisterNames maps the fixed symbolic register names the assembler
// recognizes (spec.md section 4.3) to their slot index.
var RegisterNames = map[string]int{
	"ZERO": RegZero,
	"COMP": RegComp,
	"PC":   RegPC,
	"P0":   RegP0,
	"P1":   RegP1,
	"IRSP": RegIRSP,
	"IPOP": RegIPOP,
	"IPTR": RegIPTR,
	"SP":   RegSP,
	"PUSH": RegPUSH,
	"POP":  RegPOP,
}
