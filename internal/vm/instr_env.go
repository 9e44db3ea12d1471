package vm

import (
	"cursedvm/internal/code"
	"cursedvm/internal/diag"
	"cursedvm/internal/env"
	"cursedvm/internal/value"
)

// execEnv implements the env class (5): get/getp/load/loadp/set/setp
// against the host-binding environment, keyed by a string built from
// r1 (an Int/Float stringified, or a Ptr read back as a NUL-terminated
// string) and, for the *p variants, scoped to the Ext handle in r2.
func execEnv(vm *VM, f code.Fields) (bool, bool, error) {
	key, err := vm.envKey(f.R1)
	if err != nil {
		return false, false, err
	}

	switch f.C0 {
	case 0, 1: // get, getp
		raw, found, err := vm.envLookup(f, key)
		if err != nil {
			return false, false, err
		}
		if !found {
			return false, false, vm.SetReg(f.R0, value.NewNull())
		}
		fv, err := env.CoerceFloat32(raw)
		if err != nil {
			return false, false, diag.Wrap(diag.DomainError, err, "")
		}
		return false, false, vm.SetReg(f.R0, value.NewFloat(fv))
	case 2, 3: // load, loadp
		raw, found, err := vm.envLookup(f, key)
		if err != nil {
			return false, false, err
		}
		if !found {
			return false, false, vm.SetReg(f.R0, value.NewNull())
		}
		return false, false, vm.SetReg(f.R0, value.NewExt(raw))
	case 4, 5: // set, setp
		v, err := vm.GetReg(f.R0)
		if err != nil {
			return false, false, err
		}
		hostVal, err := vm.envSetValue(v)
		if err != nil {
			return false, false, err
		}
		return false, false, vm.envStore(f, key, hostVal)
	default:
		return false, false, diag.New(diag.DecodeError, "reserved env submode %03b", f.C0)
	}
}

// envKey renders register r's Value as the string key the env class
// uses for lookups: Int/Float stringify, Ptr reads a C string.
func (vm *VM) envKey(r uint8) (string, error) {
	v, err := vm.GetReg(r)
	if err != nil {
		return "", err
	}
	switch v.Tag() {
	case value.Int, value.Float:
		return v.String(), nil
	case value.Ptr:
		return vm.readCString(v)
	default:
		return "", diag.New(diag.TypeError, "env key must be Int, Float or Ptr, got %s", v.Tag())
	}
}

func isPropertyVariant(c0 uint8) bool { return c0&1 != 0 }

func (vm *VM) envLookup(f code.Fields, key string) (any, bool, error) {
	if !isPropertyVariant(f.C0) {
		v, found := vm.Env.Get(key)
		return v, found, nil
	}
	base, err := vm.hostBase(f.R2)
	if err != nil {
		return nil, false, err
	}
	v, found := vm.Env.GetProperty(base, key)
	return v, found, nil
}

func (vm *VM) envStore(f code.Fields, key string, val any) error {
	if !isPropertyVariant(f.C0) {
		vm.Env.Set(key, val)
		return nil
	}
	base, err := vm.hostBase(f.R2)
	if err != nil {
		return err
	}
	vm.Env.SetProperty(base, key, val)
	return nil
}

func (vm *VM) hostBase(r uint8) (any, error) {
	v, err := vm.GetReg(r)
	if err != nil {
		return nil, err
	}
	if !v.IsExt() {
		return nil, diag.New(diag.TypeError, "property base must be Ext, got %s", v.Tag())
	}
	return v.Handle(), nil
}

// envSetValue converts r0's Value into the Go-native representation
// stored by set/setp: Ptr is read back as a string, everything else
// passes through its scalar value.
func (vm *VM) envSetValue(v value.Value) (any, error) {
	return vm.marshalToHost(v)
}
