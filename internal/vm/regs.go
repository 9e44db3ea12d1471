package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/value"
)

// Register slot indices, re-exported from package code so the rest of
// package vm can refer to them without a qualifier.
const (
	RegZero = code.RegZero
	RegComp = code.RegComp
	RegPC   = code.RegPC
	RegP0   = code.RegP0
	RegP1   = code.RegP1
	RegIRSP = code.RegIRSP
	RegIPOP = code.RegIPOP
	RegIPTR = code.RegIPTR
	RegSP   = code.RegSP
	RegPUSH = code.RegPUSH
	RegPOP  = code.RegPOP

	NumRegisters = code.NumRegisters
)

// registerFile holds the 32 Value slots. Side effects for the
// designated indices (zero, IPOP, IPTR, PUSH, POP) are implemented in
// VM.GetReg/VM.SetReg rather than here, since they need access to the
// VM's memory regions; this type is just the backing storage plus the
// reset discipline (spec.md section 3: "Slots 24 and 25 (P0, P1) are
// preserved across reset; all other slots... are cleared to Null").
type registerFile struct {
	slots [NumRegisters]value.Value
}

func newRegisterFile() *registerFile {
	return &registerFile{}
}

func (r *registerFile) reset() {
	p0, p1 := r.slots[RegP0], r.slots[RegP1]
	r.slots = [NumRegisters]value.Value{}
	r.slots[RegP0] = p0
	r.slots[RegP1] = p1
}

// GetReg reads register i, applying the side-effecting hooks for IPOP,
// IPTR, POP and the always-zero ZERO slot. Every instruction handler
// that reads an operand register goes through this, so the hooks fire
// uniformly regardless of which instruction triggered the read (DESIGN
// NOTES section 9: "a small per-slot capability record rather than
// dynamic per-object method lookup").
func (vm *VM) GetReg(i uint8) (value.Value, error) {
	switch int(i) {
	case RegZero:
		return value.NewInt(0), nil
	case RegIPOP:
		w, err := vm.popIRS()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewIntFromRaw(w), nil
	case RegIPTR:
		w, err := vm.popIRS()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewPtr(value.RegionWord, w), nil
	case RegPOP:
		v, err := vm.popData()
		if err != nil {
			return value.Value{}, err
		}
		vm.regs.slots[RegPOP] = v
		return v, nil
	default:
		if int(i) >= NumRegisters {
			return value.Value{}, diag.New(diag.DecodeError, "register index %d out of range", i)
		}
		return vm.regs.slots[i], nil
	}
}

// SetReg writes register i, applying the side-effecting hooks for ZERO
// (write dropped) and PUSH (write also pushes onto the data stack).
func (vm *VM) SetReg(i uint8, v value.Value) error {
	switch int(i) {
	case RegZero:
		return nil
	case RegPUSH:
		if err := vm.pushData(v); err != nil {
			return err
		}
		vm.regs.slots[RegPUSH] = v
		return nil
	case RegIPOP, RegIPTR, RegPOP:
		return diag.New(diag.TypeError, "register %d is read-only", i)
	default:
		if int(i) >= NumRegisters {
			return diag.New(diag.DecodeError, "register index %d out of range", i)
		}
		vm.regs.slots[i] = v
		return nil
	}
}
