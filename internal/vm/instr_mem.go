package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/value"
)

// execMem implements the mem class (10): read and write through a Ptr
// base register plus an Int/Ptr offset register. c1 bit 0 selects
// write(1) from read(0); in read mode c0 selects the reinterpretation
// type (0 = int, 1 = float, 2 = ptr) applied to word-memory cells —
// object-memory cells are always loaded verbatim, ignoring c0.
func execMem(vm *VM, f code.Fields) (bool, bool, error) {
	base, err := vm.GetReg(f.R1)
	if err != nil {
		return false, false, err
	}
	if !base.IsPtr() {
		return false, false, diag.New(diag.TypeError, "mem base register must hold a Ptr, got %s", base.Tag())
	}
	addend, err := vm.GetReg(f.R2)
	if err != nil {
		return false, false, err
	}
	delta, err := ptrDelta(addend)
	if err != nil {
		return false, false, err
	}
	offset := uint32(int64(base.Offset()) + delta)

	write := f.C1&1 != 0
	if write {
		return execMemWrite(vm, f, base.Region(), offset)
	}
	return execMemRead(vm, f, base.Region(), offset)
}

func execMemRead(vm *VM, f code.Fields, region value.Region, offset uint32) (bool, bool, error) {
	if region == value.RegionObject || region == value.RegionDataStack {
		v, err := vm.DataStack.Read(offset)
		if err != nil {
			return false, false, diag.Wrap(diag.BoundsError, err, "")
		}
		if err := vm.SetReg(f.R0, v); err != nil {
			return false, false, err
		}
		return false, false, nil
	}

	mem := vm.memoryFor(region)
	if mem == nil {
		return false, false, diag.New(diag.DomainError, "region %s is not addressable by mem", region)
	}
	raw, err := mem.ReadRaw(offset)
	if err != nil {
		return false, false, diag.Wrap(diag.BoundsError, err, "")
	}

	var out value.Value
	switch f.C0 {
	case 0:
		out = value.NewIntFromRaw(raw)
	case 1:
		out = value.NewFloatFromRaw(raw)
	case 2:
		out = value.NewPtr(value.RegionWord, raw)
	default:
		return false, false, diag.New(diag.DecodeError, "reserved mem read destination type %03b", f.C0)
	}
	if err := vm.SetReg(f.R0, out); err != nil {
		return false, false, err
	}
	return false, false, nil
}

func execMemWrite(vm *VM, f code.Fields, region value.Region, offset uint32) (bool, bool, error) {
	v, err := vm.GetReg(f.R0)
	if err != nil {
		return false, false, err
	}

	if region == value.RegionObject || region == value.RegionDataStack {
		if err := vm.DataStack.Write(offset, v); err != nil {
			return false, false, diag.Wrap(diag.BoundsError, err, "")
		}
		return false, false, nil
	}

	mem := vm.memoryFor(region)
	if mem == nil {
		return false, false, diag.New(diag.DomainError, "region %s is not addressable by mem", region)
	}
	raw, ok := v.RawView()
	if !ok {
		return false, false, diag.New(diag.TypeError, "mem write requires a raw-view value, got %s", v.Tag())
	}
	if err := mem.WriteRaw(offset, raw); err != nil {
		return false, false, diag.Wrap(diag.BoundsError, err, "")
	}
	return false, false, nil
}

// memoryFor resolves a region to its backing word memory. Object and
// data-stack regions are handled separately by callers since they are
// tagged-Value memory, not raw words.
func (vm *VM) memoryFor(region value.Region) *value.WordMemory {
	switch region {
	case value.RegionWord:
		return vm.Word
	case value.RegionCallStack:
		return vm.CallStack
	case value.RegionIRS:
		return vm.IRS
	default:
		return nil
	}
}
