// Package vm implements the CursedVM interpreter: the register file,
// the four segregated memory regions, the decoder/dispatch loop and the
// twelve instruction class handlers.
package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/env"
	"cursedvm/internal/limits"
	"cursedvm/internal/trace"
	"cursedvm/internal/value"
)

const (
	WordMemSize   = 1 << 24
	DataStackSize = 1 << 16
	CallStackSize = 1 << 16
	IRSSize       = 1 << 16
)

// VM owns the four memory regions, the register file, the environment
// mapping and the call-stack pointer described in spec.md section 5.
type VM struct {
	Word      *value.WordMemory
	DataStack *value.ObjectMemory
	CallStack *value.WordMemory
	IRS       *value.WordMemory

	Env *env.Environment

	regs *registerFile
	csp  uint32 // private call-stack pointer; not exposed as a register

	stopped   bool
	exitValue value.Value

	Budget *limits.Budget
	Sink   *trace.Sink

	decode *code.Cache
}

// New builds a VM with fresh, empty regions and no environment bindings.
func New() *VM {
	vm := &VM{
		Word:      value.NewWordMemory(value.RegionWord, WordMemSize),
		DataStack: value.NewObjectMemory(value.RegionDataStack, DataStackSize),
		CallStack: value.NewWordMemory(value.RegionCallStack, CallStackSize),
		IRS:       value.NewWordMemory(value.RegionIRS, IRSSize),
		Env:       env.New(),
		regs:      newRegisterFile(),
		decode:    code.NewCache(512),
	}
	vm.resetRegisters()
	return vm
}

// resetRegisters re-initializes PC/SP/IRSP and clears all slots except
// P0/P1, per spec.md section 3.
func (vm *VM) resetRegisters() {
	vm.regs.reset()
	vm.regs.slots[RegPC] = value.NewPtr(value.RegionWord, 0)
	vm.regs.slots[RegIRSP] = value.NewPtr(value.RegionIRS, 0)
	vm.regs.slots[RegSP] = value.NewPtr(value.RegionDataStack, 0)
}

// Reset zeroes all four regions, re-initializes the pointer registers
// and clears the cycle budget's used counter, preserving P0/P1 and the
// configured budget limit.
func (vm *VM) Reset() {
	vm.Word.Clear()
	vm.DataStack.Clear()
	vm.CallStack.Clear()
	vm.IRS.Clear()
	vm.csp = 0
	vm.stopped = false
	vm.exitValue = value.Value{}
	vm.resetRegisters()
	vm.Budget.Reset()
}

// LoadProgram resets the VM and copies words into word memory starting
// at offset 0 (spec.md section 6).
func (vm *VM) LoadProgram(words []uint32) {
	vm.Reset()
	vm.Word.LoadProgram(words)
}

// Stopped reports whether the VM has halted (exit or breakpoint).
func (vm *VM) Stopped() bool { return vm.stopped }

// ExitValue returns the Value the program exited with.
func (vm *VM) ExitValue() value.Value { return vm.exitValue }

func (vm *VM) pc() uint32 {
	return vm.regs.slots[RegPC].Offset()
}

func (vm *VM) setPC(offset uint32) {
	vm.regs.slots[RegPC] = value.NewPtr(value.RegionWord, offset)
}

// pushData pushes v onto the data stack through the SP register.
func (vm *VM) pushData(v value.Value) error {
	sp := vm.regs.slots[RegSP]
	if !sp.IsPtr() || sp.Region() != value.RegionDataStack {
		return diag.New(diag.TypeError, "SP does not hold a pointer into the data stack")
	}
	off := sp.Offset()
	if err := vm.DataStack.Write(off, v); err != nil {
		return diag.Wrap(diag.BoundsError, err, "")
	}
	vm.regs.slots[RegSP] = value.NewPtr(value.RegionDataStack, off+1)
	return nil
}

// popData pops a Value from the data stack through the SP register.
func (vm *VM) popData() (value.Value, error) {
	sp := vm.regs.slots[RegSP]
	if !sp.IsPtr() || sp.Region() != value.RegionDataStack {
		return value.Value{}, diag.New(diag.TypeError, "SP does not hold a pointer into the data stack")
	}
	off := sp.Offset()
	if off == 0 {
		return value.Value{}, diag.New(diag.BoundsError, "data stack underflow")
	}
	off--
	v, err := vm.DataStack.Read(off)
	if err != nil {
		return value.Value{}, diag.Wrap(diag.BoundsError, err, "")
	}
	vm.regs.slots[RegSP] = value.NewPtr(value.RegionDataStack, off)
	return v, nil
}

// pushIRS pushes a raw 32-bit word onto the IRS through the IRSP register.
func (vm *VM) pushIRS(raw uint32) error {
	irsp := vm.regs.slots[RegIRSP]
	if !irsp.IsPtr() || irsp.Region() != value.RegionIRS {
		return diag.New(diag.TypeError, "IRSP does not hold a pointer into the IRS")
	}
	off := irsp.Offset()
	if err := vm.IRS.WriteRaw(off, raw); err != nil {
		return diag.Wrap(diag.BoundsError, err, "")
	}
	vm.regs.slots[RegIRSP] = value.NewPtr(value.RegionIRS, off+1)
	return nil
}

// popIRS pops a raw 32-bit word from the IRS through the IRSP register.
func (vm *VM) popIRS() (uint32, error) {
	irsp := vm.regs.slots[RegIRSP]
	if !irsp.IsPtr() || irsp.Region() != value.RegionIRS {
		return 0, diag.New(diag.TypeError, "IRSP does not hold a pointer into the IRS")
	}
	off := irsp.Offset()
	if off == 0 {
		return 0, diag.New(diag.BoundsError, "IRS underflow")
	}
	off--
	w, err := vm.IRS.ReadRaw(off)
	if err != nil {
		return 0, diag.Wrap(diag.BoundsError, err, "")
	}
	vm.regs.slots[RegIRSP] = value.NewPtr(value.RegionIRS, off)
	return w, nil
}

// pushCall pushes a return PC onto the private call stack.
func (vm *VM) pushCall(retPC uint32) error {
	if err := vm.CallStack.WriteRaw(vm.csp, retPC); err != nil {
		return diag.Wrap(diag.BoundsError, err, "")
	}
	vm.csp++
	return nil
}

// popCall pops a return PC from the private call stack.
func (vm *VM) popCall() (uint32, error) {
	if vm.csp == 0 {
		return 0, diag.New(diag.BoundsError, "call stack underflow")
	}
	vm.csp--
	w, err := vm.CallStack.ReadRaw(vm.csp)
	if err != nil {
		return 0, diag.Wrap(diag.BoundsError, err, "")
	}
	return w, nil
}
