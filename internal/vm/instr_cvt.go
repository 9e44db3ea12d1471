package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/value"
)

// execCvt implements the cvt class (8). c1 bit 0 selects immediate
// mode (source is the immediate field) from register mode (source is
// r2); in register mode, c0 bit 2 additionally selects the nested
// "repr" form, which first reinterprets r2's raw view as the type
// named by r1 before converting. These mode bits are another
// open-question decision recorded in DESIGN.md; the destination type
// mapping (0 = null, 1 = int, 2 = float, 3 = ptr) is shared by both
// modes.
func execCvt(vm *VM, f code.Fields) (bool, bool, error) {
	registerMode := f.C1&1 == 0
	if !registerMode {
		return execCvtImmediate(vm, f)
	}
	return execCvtRegister(vm, f)
}

func execCvtImmediate(vm *VM, f code.Fields) (bool, bool, error) {
	dest := f.C0 & 0x3
	var out value.Value
	usesS := false
	switch dest {
	case 0: // null
		out = value.NewNull()
		usesS = true
	case 1:
		out = value.NewInt(f.ImmSigned())
	case 2:
		out = value.NewFloat(float32(f.ImmSigned()))
	case 3:
		out = value.NewPtr(value.RegionWord, uint32(f.ImmSigned()))
	default:
		return false, false, diag.New(diag.DecodeError, "reserved cvt immediate destination %02b", dest)
	}
	if err := vm.SetReg(f.R0, out); err != nil {
		return false, false, err
	}
	return false, usesS, nil
}

func execCvtRegister(vm *VM, f code.Fields) (bool, bool, error) {
	src, err := vm.GetReg(f.R2)
	if err != nil {
		return false, false, err
	}

	if f.C0&0x4 != 0 {
		selector, err := vm.GetReg(f.R1)
		if err != nil {
			return false, false, err
		}
		if !selector.IsInt() {
			return false, false, diag.New(diag.TypeError, "repr source-type selector must be Int, got %s", selector.Tag())
		}
		raw, ok := src.RawView()
		if !ok {
			return false, false, diag.New(diag.TypeError, "repr requires a source with a raw view, got %s", src.Tag())
		}
		srcTag, err := tagFromSelector(selector.Int32())
		if err != nil {
			return false, false, err
		}
		src = value.ReinterpretAs(srcTag, raw, src.Region())
	}

	out, err := convertRegister(src, f.C0&0x3)
	if err != nil {
		return false, false, err
	}
	if err := vm.SetReg(f.R0, out); err != nil {
		return false, false, err
	}
	return false, false, nil
}

func tagFromSelector(n int32) (value.Tag, error) {
	switch n {
	case 1:
		return value.Int, nil
	case 2:
		return value.Float, nil
	case 3:
		return value.Ptr, nil
	default:
		return 0, diag.New(diag.DomainError, "repr source-type selector %d is not Int/Float/Ptr", n)
	}
}

// convertRegister implements the register-mode (non-repr) conversion
// matrix: a Null destination always yields a fresh Null whatever the
// source, Int<->Float convert numerically, Int->Ptr constructs a word
// pointer from the integer offset, Ptr->Ptr is the identity, and every
// other combination (Float<->Ptr, Ptr->Int, or a Null or Ext source
// with a non-Null destination) is fatal, per spec.md section 4.2.
func convertRegister(src value.Value, dest uint8) (value.Value, error) {
	if dest == 0 {
		return value.NewNull(), nil
	}
	switch src.Tag() {
	case value.Int:
		switch dest {
		case 1:
			return src, nil
		case 2:
			return value.NewFloat(float32(src.Int32())), nil
		case 3:
			return value.NewPtr(value.RegionWord, uint32(src.Int32())), nil
		}
	case value.Float:
		switch dest {
		case 1:
			return value.NewInt(int32(src.Float32())), nil
		case 2:
			return src, nil
		case 3:
			return value.Value{}, diag.New(diag.TypeError, "cannot convert Float to Ptr")
		}
	case value.Ptr:
		switch dest {
		case 1:
			return value.Value{}, diag.New(diag.TypeError, "cannot convert Ptr to Int")
		case 2:
			return value.Value{}, diag.New(diag.TypeError, "cannot convert Ptr to Float")
		case 3:
			return src, nil
		}
	}
	return value.Value{}, diag.New(diag.TypeError, "cannot convert %s to destination type %d", src.Tag(), dest)
}
