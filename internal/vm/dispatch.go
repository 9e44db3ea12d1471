package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
)

// classHandler executes one decoded instruction. branched reports
// whether the handler already updated PC (so dispatch must not advance
// it); usesS reports whether this particular submode declares the S
// flag meaningful for an IRS push (spec.md section 4.1: "conditionally
// pushes imm_signed onto the IRS if both (a) S is set and (b) the
// handler declared its encoding uses S in this variant").
type classHandler func(vm *VM, f code.Fields) (branched bool, usesS bool, err error)

var handlers = map[code.Class]classHandler{
	code.ClassNop:  execNop,
	code.ClassExit: execExit,
	code.ClassPush: execPush,
	code.ClassPop:  execPop,
	code.ClassRet:  execRet,
	code.ClassEnv:  execEnv,
	code.ClassB:    execBranch,
	code.ClassCmp:  execCmp,
	code.ClassCvt:  execCvt,
	code.ClassNum:  execNum,
	code.ClassMem:  execMem,
	code.ClassSys:  execSys,
}

// Step decodes and dispatches exactly one instruction. It returns a
// fault (never a panic) on any error, leaving registers and memory
// exactly as they were at the point of fault, per spec.md section 7.
func (vm *VM) Step() error {
	if vm.stopped {
		return nil
	}

	word, err := vm.Word.ReadRaw(vm.pc())
	if err != nil {
		return diag.Wrap(diag.BoundsError, err, "")
	}

	f := vm.decode.Decode(word)
	vm.Sink.Debugf("%08x: %08x %s", vm.pc(), word, f.Class)
	if f.Class.IsReserved() {
		return diag.New(diag.DecodeError, "reserved instruction class %d", f.Class)
	}
	h, ok := handlers[f.Class]
	if !ok {
		return diag.New(diag.DecodeError, "unimplemented instruction class %d", f.Class)
	}

	branched, usesS, err := h(vm, f)
	if err != nil {
		return err
	}

	if err := vm.Budget.Charge(1); err != nil {
		vm.stopped = true
		return diag.Wrap(diag.DomainError, err, "")
	}

	if usesS && f.S {
		if err := vm.pushIRS(uint32(f.ImmSigned())); err != nil {
			return err
		}
	}

	if !branched {
		vm.setPC(vm.pc() + 1)
	}
	return nil
}

// Run steps the VM until it stops (exit or breakpoint) or a fault
// occurs.
func (vm *VM) Run() error {
	for !vm.stopped {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}
