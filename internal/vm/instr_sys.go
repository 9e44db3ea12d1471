package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
)

// execSys implements the sys class (15). c0 bit 0 selects printing a
// single register (r0) from dumping the full VM state; c0 bit 2, set
// in either variant, additionally halts the VM as a breakpoint. c0
// bit 1 is unenumerated by spec.md section 4.2 and is treated as a
// reserved subfunction (DESIGN NOTES, open question 2).
func execSys(vm *VM, f code.Fields) (bool, bool, error) {
	if f.C0&0x2 != 0 {
		return false, false, diag.New(diag.DecodeError, "reserved sys submode %03b", f.C0)
	}

	if f.C0&0x1 == 0 {
		v, err := vm.GetReg(f.R0)
		if err != nil {
			return false, false, err
		}
		vm.Sink.Infof("r%d = %s", f.R0, v.String())
	} else {
		vm.dumpState()
	}

	if f.C0&0x4 != 0 {
		vm.stopped = true
	}
	return false, false, nil
}

func (vm *VM) dumpState() {
	vm.Sink.Infof("pc=%d sp=%d irsp=%d csp=%d", vm.pc(), vm.regs.slots[RegSP].Offset(), vm.regs.slots[RegIRSP].Offset(), vm.csp)
	for i := 0; i < NumRegisters; i++ {
		vm.Sink.Infof("  r%-2d = %s", i, vm.regs.slots[i].String())
	}
}
