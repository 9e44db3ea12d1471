package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/value"
)

// execNop implements the nop class (0): does nothing beyond the
// generic S-flag IRS push every instruction dispatch already applies.
func execNop(vm *VM, f code.Fields) (bool, bool, error) {
	return false, true, nil
}

// execExit implements the exit class (1): if c0 bit 0 is set, the exit
// value is the Value held in r0; otherwise it is a fresh Int built from
// the immediate. No IRS push (spec.md section 4.2).
func execExit(vm *VM, f code.Fields) (bool, bool, error) {
	if f.C0&1 != 0 {
		v, err := vm.GetReg(f.R0)
		if err != nil {
			return false, false, err
		}
		vm.stopped = true
		vm.exitValue = v
		return true, false, nil
	}
	vm.stopped = true
	vm.exitValue = value.NewInt(f.ImmSigned())
	return true, false, nil
}

// execPush implements the push class (2). c0 bit 0 set pushes the
// Value held in r0 (and honors the S-flag IRS push); clear pushes a
// fresh Int built from the immediate (S is not honored in this form).
func execPush(vm *VM, f code.Fields) (bool, bool, error) {
	if f.C0&1 != 0 {
		v, err := vm.GetReg(f.R0)
		if err != nil {
			return false, false, err
		}
		if err := vm.pushData(v); err != nil {
			return false, false, err
		}
		return false, true, nil
	}
	if err := vm.pushData(value.NewInt(f.ImmSigned())); err != nil {
		return false, false, err
	}
	return false, false, nil
}

// execPop implements the pop class (3). The low two bits of c0 select
// one of three variants; all three honor the S-flag IRS push.
func execPop(vm *VM, f code.Fields) (bool, bool, error) {
	switch f.C0 & 0x3 {
	case 0b00:
		v, err := vm.popData()
		if err != nil {
			return false, true, err
		}
		if err := vm.SetReg(f.R0, v); err != nil {
			return false, true, err
		}
	case 0b01:
		w, err := vm.popIRS()
		if err != nil {
			return false, true, err
		}
		if err := vm.SetReg(f.R0, value.NewIntFromRaw(w)); err != nil {
			return false, true, err
		}
	case 0b11:
		w, err := vm.popIRS()
		if err != nil {
			return false, true, err
		}
		if err := vm.SetReg(f.R0, value.NewPtr(value.RegionWord, w)); err != nil {
			return false, true, err
		}
	default:
		return false, false, diag.New(diag.DecodeError, "reserved pop submode %02b", f.C0&0x3)
	}
	return false, true, nil
}

// execRet implements the ret class (4): pops the call stack into PC
// and honors the S-flag IRS push.
func execRet(vm *VM, f code.Fields) (bool, bool, error) {
	retPC, err := vm.popCall()
	if err != nil {
		return false, true, err
	}
	vm.setPC(retPC)
	return true, true, nil
}
