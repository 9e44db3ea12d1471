// Package env implements the host-binding environment CursedVM programs
// read and write through the "env" instruction class: a string-keyed
// map of host-visible bindings, plus property access on Ext handles.
package env

import (
	"fmt"
	"math"
)

// HostFunc is a callable bound into the environment. Arity < 0 marks an
// "ordinary host callable" that expects the caller to have already
// pushed an argument count (spec.md section 4.2, "host callable
// duality"); Arity >= 0 marks a "declared host function with fixed
// arity N".
type HostFunc struct {
	Name  string
	Arity int
	Call  func(args []any) (any, error)
}

// FixedArity reports whether this callable is the fixed-arity declared
// shape rather than the ordinary stack-counted shape.
func (h *HostFunc) FixedArity() bool { return h.Arity >= 0 }

// Environment is the global key/value namespace the "env" instruction
// class's get/getp/load/loadp/set/setp submodes operate on, plus a
// property table keyed by host object for the *p (property) variants.
type Environment struct {
	globals    map[string]any
	properties map[any]map[string]any
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{
		globals:    map[string]any{},
		properties: map[any]map[string]any{},
	}
}

// Set binds name to value in the global namespace.
func (e *Environment) Set(name string, val any) {
	e.globals[name] = val
}

// Get looks up name in the global namespace.
func (e *Environment) Get(name string) (any, bool) {
	v, ok := e.globals[name]
	return v, ok
}

// DeclareHostFunction registers a fixed-arity host callable distinguishable
// at call time from an ordinary callable (spec.md section 4.2).
func (e *Environment) DeclareHostFunction(name string, arity int, fn func(args []any) (any, error)) {
	e.globals[name] = &HostFunc{Name: name, Arity: arity, Call: fn}
}

// DeclareCallable registers an ordinary host callable: its arity is
// determined at call time from a stacked argument count instead of the
// registration.
func (e *Environment) DeclareCallable(name string, fn func(args []any) (any, error)) {
	e.globals[name] = &HostFunc{Name: name, Arity: -1, Call: fn}
}

// SetProperty binds name on the property table of base.
func (e *Environment) SetProperty(base any, name string, val any) {
	m, ok := e.properties[base]
	if !ok {
		m = map[string]any{}
		e.properties[base] = m
	}
	m[name] = val
}

// GetProperty looks up name on the property table of base.
func (e *Environment) GetProperty(base any, name string) (any, bool) {
	m, ok := e.properties[base]
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// CoerceFloat32 converts a raw host value fetched through get/getp into
// the finite float32 the "env" instruction class stores in its
// destination register. It returns an error (a DomainError at the VM
// layer) if the value cannot be coerced to a finite number.
func CoerceFloat32(v any) (float32, error) {
	switch n := v.(type) {
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return 0, fmt.Errorf("env value is not a finite number: %v", n)
		}
		return n, nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("env value is not a finite number: %v", n)
		}
		return float32(n), nil
	case int:
		return float32(n), nil
	case int32:
		return float32(n), nil
	case int64:
		return float32(n), nil
	case uint32:
		return float32(n), nil
	default:
		return 0, fmt.Errorf("env value %v (%T) is not coercible to a finite number", v, v)
	}
}
