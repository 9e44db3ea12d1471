package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/value"
)

// execNum implements the num class (9): add, sub, mult, div, mod and
// the bitwise pair (and/or, xor/xnor, shl/shr). The S bit position is
// repurposed in this class as the T flag rather than an IRS-push
// toggle (spec.md section 4.2), so execNum always reports usesS=false.
// Operands are r1 (X) and r2 (Y); destination is r0 (Z).
func execNum(vm *VM, f code.Fields) (bool, bool, error) {
	x, err := vm.GetReg(f.R1)
	if err != nil {
		return false, false, err
	}
	y, err := vm.GetReg(f.R2)
	if err != nil {
		return false, false, err
	}
	t := f.S

	var out value.Value
	switch f.C0 {
	case 0, 1, 2, 3, 4:
		out, err = numArith(f.C0, x, y, t)
	case 5, 6, 7:
		out, err = numBitwise(f.C0, x, y, t)
	default:
		return false, false, diag.New(diag.DecodeError, "reserved num submode %03b", f.C0)
	}
	if err != nil {
		return false, false, err
	}

	if err := vm.SetReg(f.R0, out); err != nil {
		return false, false, err
	}
	return false, false, nil
}

// numArith implements add(0)/sub(1)/mult(2)/div(3)/mod(4). Add and sub
// additionally accept a Ptr operand in X, producing a Ptr result in
// X's region; T forces a float result and is fatal when X is Ptr.
func numArith(c0 uint8, x, y value.Value, t bool) (value.Value, error) {
	if x.IsPtr() {
		if t {
			return value.Value{}, diag.New(diag.DomainError, "T flag is fatal when X is Ptr")
		}
		if c0 != 0 && c0 != 1 {
			return value.Value{}, diag.New(diag.TypeError, "Ptr operand only valid for add/sub")
		}
		delta, err := ptrDelta(y)
		if err != nil {
			return value.Value{}, err
		}
		if c0 == 1 {
			delta = -delta
		}
		return value.NewPtr(x.Region(), uint32(int64(x.Offset())+delta)), nil
	}

	if !((x.IsInt() || x.IsFloat()) && (y.IsInt() || y.IsFloat())) {
		return value.Value{}, diag.New(diag.TypeError, "arithmetic requires Int/Float operands, got %s and %s", x.Tag(), y.Tag())
	}

	// Computation runs in float64 whenever either operand is Float, but
	// the result's tag follows X alone (spec.md section 4.2: "Result
	// type when T clear and X is Int or Ptr: same as X. ... when T clear
	// and X is Float: Float."): T only matters to force an Int X's
	// result to Float, a Float X always yields Float regardless of T,
	// and an Int X with a Float Y still yields Int (truncated toward
	// zero) when T is clear.
	resultFloat := t || x.IsFloat()
	computeFloat := resultFloat || y.IsFloat()

	if computeFloat {
		xf, yf := asFloat64(x), asFloat64(y)
		var res float64
		switch c0 {
		case 0:
			res = xf + yf
		case 1:
			res = xf - yf
		case 2:
			res = xf * yf
		case 3:
			if yf == 0 {
				return value.Value{}, diag.New(diag.DomainError, "division by zero")
			}
			res = xf / yf
		case 4:
			if yf == 0 {
				return value.Value{}, diag.New(diag.DomainError, "division by zero")
			}
			res = xf - yf*float64(int64(xf/yf))
		}
		if resultFloat {
			return value.NewFloat(float32(res)), nil
		}
		return value.NewInt(int32(res)), nil
	}

	xi, yi := x.Int32(), y.Int32()
	switch c0 {
	case 0:
		return value.NewInt(xi + yi), nil
	case 1:
		return value.NewInt(xi - yi), nil
	case 2:
		return value.NewInt(xi * yi), nil
	case 3:
		if yi == 0 {
			return value.Value{}, diag.New(diag.DomainError, "division by zero")
		}
		return value.NewInt(xi / yi), nil
	case 4:
		if yi == 0 {
			return value.Value{}, diag.New(diag.DomainError, "division by zero")
		}
		return value.NewInt(xi % yi), nil
	}
	panic("unreachable")
}

func ptrDelta(y value.Value) (int64, error) {
	switch {
	case y.IsInt():
		return int64(y.Int32()), nil
	case y.IsPtr():
		return int64(int32(y.Offset())), nil
	default:
		return 0, diag.New(diag.TypeError, "pointer arithmetic requires an Int or Ptr offset, got %s", y.Tag())
	}
}

// numBitwise implements the and/or(5), xor/xnor(6) and shl/shr(7)
// pairs, with T selecting the second of each pair. Both operands must
// be Int.
func numBitwise(c0 uint8, x, y value.Value, t bool) (value.Value, error) {
	if !x.IsInt() || !y.IsInt() {
		return value.Value{}, diag.New(diag.TypeError, "bitwise operations require Int operands, got %s and %s", x.Tag(), y.Tag())
	}
	xu, yu := x.Uint32(), y.Uint32()
	switch c0 {
	case 5:
		if t {
			return value.NewIntFromRaw(xu | yu), nil
		}
		return value.NewIntFromRaw(xu & yu), nil
	case 6:
		if t {
			return value.NewIntFromRaw(^(xu ^ yu)), nil
		}
		return value.NewIntFromRaw(xu ^ yu), nil
	case 7:
		if t {
			return value.NewIntFromRaw(xu >> (yu & 0x1F)), nil
		}
		return value.NewIntFromRaw(xu << (yu & 0x1F)), nil
	}
	panic("unreachable")
}
