package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/env"
	"cursedvm/internal/value"
)

// execBranch implements the b class (6): branch and call, relative and
// absolute, conditional and unconditional, immediate and register
// targets, plus the external-call path to a host Ext callable.
//
// Bit layout decisions (spec.md section 4.2 left these underspecified
// and they are recorded as open-question decisions in DESIGN.md):
//
//	c0 bit 0: 0 = branch, 1 = call
//	c0 bit 1: 0 = relative, 1 = absolute
//	c0 bit 2: must be 0 (reserved)
//	c1 bit 0: 0 = unconditional, 1 = conditional
//	c1 bit 1: 0 = immediate target, 1 = register target (r0)
//	c1 bit 2: must be 0 (reserved)
//
// Relative call (c0 == 0b01) is illegal per spec.md section 4.2.
func execBranch(vm *VM, f code.Fields) (bool, bool, error) {
	if f.C0>>2 != 0 || f.C1>>2 != 0 {
		return false, false, diag.New(diag.DecodeError, "reserved b-class subfunction bits c0=%03b c1=%03b", f.C0, f.C1)
	}
	isCall := f.C0&1 != 0
	isAbs := f.C0&2 != 0
	if isCall && !isAbs {
		return false, false, diag.New(diag.DecodeError, "relative call is illegal")
	}

	cond := f.C1&1 != 0
	regMode := f.C1&2 != 0

	if cond {
		comp, err := vm.GetReg(RegComp)
		if err != nil {
			return false, false, err
		}
		if !comp.IsInt() {
			return false, false, diag.New(diag.TypeError, "conditional branch requires slot 1 to hold an Int")
		}
		if comp.Int32() == 0 {
			return false, false, nil
		}
	}

	site := vm.pc()

	if regMode {
		tv, err := vm.GetReg(f.R0)
		if err != nil {
			return false, false, err
		}
		if isCall && isAbs && tv.IsExt() {
			if err := vm.externalCall(tv); err != nil {
				return false, false, err
			}
			return false, false, nil
		}
		if !isAbs {
			if !tv.IsInt() {
				return false, false, diag.New(diag.TypeError, "relative branch target must be Int, got %s", tv.Tag())
			}
			vm.setPC(site + uint32(tv.Int32()))
		} else {
			switch {
			case tv.IsInt():
				vm.setPC(uint32(tv.Int32()))
			case tv.IsPtr():
				vm.setPC(tv.Offset())
			default:
				return false, false, diag.New(diag.TypeError, "absolute branch target must be Int or Ptr, got %s", tv.Tag())
			}
		}
	} else {
		if isAbs {
			vm.setPC(uint32(f.ImmSigned()))
		} else {
			vm.setPC(site + uint32(f.ImmSigned()))
		}
	}

	if isCall {
		if err := vm.pushCall(site + 1); err != nil {
			return false, false, err
		}
	}
	return true, false, nil
}

// externalCall invokes the Ext-bound host callable referenced by
// target, marshalling arguments from the data stack and pushing the
// result (spec.md section 4.2, "host callable duality").
func (vm *VM) externalCall(target value.Value) error {
	fn, ok := target.Handle().(*env.HostFunc)
	if !ok {
		return diag.New(diag.TypeError, "external call target is not a callable")
	}

	n := fn.Arity
	if !fn.FixedArity() {
		countV, err := vm.popData()
		if err != nil {
			return err
		}
		if !countV.IsInt() {
			return diag.New(diag.TypeError, "ordinary callable argument count must be Int")
		}
		n = int(countV.Int32())
	}
	if n < 0 {
		return diag.New(diag.DomainError, "negative callable argument count %d", n)
	}

	args := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := vm.popData()
		if err != nil {
			return err
		}
		host, err := vm.marshalToHost(v)
		if err != nil {
			return err
		}
		args[i] = host
	}

	result, err := fn.Call(args)
	if err != nil {
		return diag.Wrap(diag.DomainError, err, "host call %q failed", fn.Name)
	}
	if result == nil {
		return vm.pushData(value.NewNull())
	}
	return vm.pushData(value.NewExt(result))
}

// marshalToHost converts a Value into the Go-native representation
// passed to a host callable: Ptr values are read back as NUL-terminated
// UTF-8 strings, everything else passes through its scalar value.
func (vm *VM) marshalToHost(v value.Value) (any, error) {
	switch v.Tag() {
	case value.Int:
		return v.Int32(), nil
	case value.Float:
		return v.Float32(), nil
	case value.Ext:
		return v.Handle(), nil
	case value.Null:
		return nil, nil
	case value.Ptr:
		return vm.readCString(v)
	default:
		return nil, diag.New(diag.TypeError, "unmarshalable value tag %s", v.Tag())
	}
}

// readCString reads a NUL-terminated UTF-8 string out of word memory
// starting at ptr's offset. ptr must address the word region.
func (vm *VM) readCString(ptr value.Value) (string, error) {
	if ptr.Region() != value.RegionWord {
		return "", diag.New(diag.DomainError, "string pointer must address word memory, got %s", ptr.Region())
	}
	var bs []byte
	off := ptr.Offset()
	for {
		w, err := vm.Word.ReadRaw(off)
		if err != nil {
			return "", diag.Wrap(diag.BoundsError, err, "")
		}
		if w == 0 {
			break
		}
		bs = append(bs, byte(w))
		off++
	}
	return string(bs), nil
}
