package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/value"
)

// execCmp implements the cmp class (7). c1 bit 0 selects immediate
// mode (destination slot 1) from register-register mode (destination
// r1, operands r0 and r2). Only the immediate logical-not submode
// (c0 == 0b100) honors the S-flag IRS push (spec.md DESIGN NOTES, open
// question 1: "the c.not immediate form honors S but the immediate is
// otherwise unused; this implementation preserves that behavior").
func execCmp(vm *VM, f code.Fields) (bool, bool, error) {
	registerMode := f.C1&1 != 0
	if registerMode {
		return execCmpRegister(vm, f)
	}
	return execCmpImmediate(vm, f)
}

func execCmpImmediate(vm *VM, f code.Fields) (bool, bool, error) {
	x, err := vm.GetReg(f.R0)
	if err != nil {
		return false, false, err
	}

	var result int32
	usesS := false
	switch f.C0 {
	case 0b011: // is-null
		result = b2i32(x.IsNull())
	case 0b111: // is-not-null
		result = b2i32(!x.IsNull())
	case 0b100: // logical-not
		if !x.IsInt() {
			return false, false, diag.New(diag.TypeError, "logical-not requires an Int operand, got %s", x.Tag())
		}
		result = b2i32(x.Int32() == 0)
		usesS = true
	case 0b000, 0b001, 0b010, 0b101, 0b110:
		if !x.IsInt() {
			return false, false, diag.New(diag.TypeError, "immediate comparison requires an Int operand, got %s", x.Tag())
		}
		result = intCompare(f.C0, x.Int32(), f.ImmSigned())
	default:
		return false, false, diag.New(diag.DecodeError, "reserved cmp immediate submode %03b", f.C0)
	}

	if err := vm.SetReg(RegComp, value.NewInt(result)); err != nil {
		return false, false, err
	}
	return false, usesS, nil
}

func execCmpRegister(vm *VM, f code.Fields) (bool, bool, error) {
	x, err := vm.GetReg(f.R0)
	if err != nil {
		return false, false, err
	}
	y, err := vm.GetReg(f.R2)
	if err != nil {
		return false, false, err
	}

	var result int32
	switch f.C0 {
	case 0b011: // is-null
		result = b2i32(x.IsNull())
	case 0b111: // is-not-null
		result = b2i32(!x.IsNull())
	case 0b100: // object identity
		if x.IsNull() || x.IsExt() || y.IsNull() || y.IsExt() {
			return false, false, diag.New(diag.TypeError, "object identity requires numeric or pointer operands")
		}
		result = b2i32(x.IdentityEqual(y))
	case 0b000, 0b001, 0b010, 0b101, 0b110:
		result, err = orderedCompare(f.C0, x, y)
		if err != nil {
			return false, false, err
		}
	default:
		return false, false, diag.New(diag.DecodeError, "reserved cmp register submode %03b", f.C0)
	}

	if err := vm.SetReg(f.R1, value.NewInt(result)); err != nil {
		return false, false, err
	}
	return false, false, nil
}

// orderedCompare implements the three-way/equals/not-equals/less/greater
// comparisons for register-register mode, honoring the pointer rules:
// Ptr compares only with a same-region Ptr; mixing Ptr with a non-Ptr,
// or Null/Ext on either side, is fatal.
func orderedCompare(c0 uint8, x, y value.Value) (int32, error) {
	if x.IsPtr() || y.IsPtr() {
		if !x.IsPtr() || !y.IsPtr() {
			return 0, diag.New(diag.TypeError, "cannot compare %s with %s", x.Tag(), y.Tag())
		}
		if !x.SameRegion(y) {
			return 0, diag.New(diag.TypeError, "cannot compare pointers into different regions")
		}
		return intCompare(c0, int32(x.Offset()), int32(y.Offset())), nil
	}
	if !((x.IsInt() || x.IsFloat()) && (y.IsInt() || y.IsFloat())) {
		return 0, diag.New(diag.TypeError, "cannot compare %s with %s", x.Tag(), y.Tag())
	}
	if x.IsFloat() || y.IsFloat() {
		return floatCompare(c0, asFloat64(x), asFloat64(y)), nil
	}
	return intCompare(c0, x.Int32(), y.Int32()), nil
}

func intCompare(c0 uint8, x, y int32) int32 {
	switch c0 {
	case 0b000:
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case 0b001:
		return b2i32(x == y)
	case 0b010:
		return b2i32(x != y)
	case 0b101:
		return b2i32(x < y)
	case 0b110:
		return b2i32(x > y)
	}
	return 0
}

func floatCompare(c0 uint8, x, y float64) int32 {
	switch c0 {
	case 0b000:
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case 0b001:
		return b2i32(x == y)
	case 0b010:
		return b2i32(x != y)
	case 0b101:
		return b2i32(x < y)
	case 0b110:
		return b2i32(x > y)
	}
	return 0
}

func asFloat64(v value.Value) float64 {
	if v.IsFloat() {
		return float64(v.Float32())
	}
	return float64(v.Int32())
}

func b2i32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
