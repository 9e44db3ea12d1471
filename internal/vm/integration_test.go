package vm_test

import (
	"testing"

	"cursedvm/internal/asm"
	"cursedvm/internal/limits"
	"cursedvm/internal/link"
	"cursedvm/internal/value"
	"cursedvm/internal/vm"
)

// assembleAndRun assembles src, links it into a single word stream,
// loads and runs it on a fresh VM, and returns the VM for inspection.
func assembleAndRun(t *testing.T, src string) *vm.VM {
	t.Helper()
	text, rdata, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	words, err := link.Link(text, rdata)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	m := vm.New()
	m.LoadProgram(words)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return m
}

// TestExitImmediate is spec.md section 8 scenario 1.
func TestExitImmediate(t *testing.T) {
	m := assembleAndRun(t, "exit.i #7")
	got := m.ExitValue()
	if !got.IsInt() || got.Int32() != 7 {
		t.Fatalf("exit value = %v, want Int 7", got)
	}
}

// TestAddRegisters is spec.md section 8 scenario 2.
func TestAddRegisters(t *testing.T) {
	m := assembleAndRun(t, "cvt.int.i $3, #2\ncvt.int.i $4, #3\nadd $5, $3, $4\nexit.r $5")
	got := m.ExitValue()
	if !got.IsInt() || got.Int32() != 5 {
		t.Fatalf("exit value = %v, want Int 5", got)
	}
}

// TestFloatDivide is spec.md section 8 scenario 3.
func TestFloatDivide(t *testing.T) {
	m := assembleAndRun(t, "cvt.float.i $3, #1\ncvt.float.i $4, #2\ndiv.f $5, $3, $4\nexit.r $5")
	got := m.ExitValue()
	if !got.IsFloat() || got.Float32() != 0.5 {
		t.Fatalf("exit value = %v, want Float 0.5", got)
	}
}

// TestConditionalBranch is spec.md section 8 scenario 4: with $3
// pre-set to Int 4 the branch is taken and the VM exits 1; with $3=5
// it falls through to exit 0.
func TestConditionalBranch(t *testing.T) {
	src := "c.eq.i $3, #4\nbc.i #2\nexit.i #0\nexit.i #1"

	text, rdata, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	words, err := link.Link(text, rdata)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	m := vm.New()
	m.LoadProgram(words)
	if err := m.SetReg(3, value.NewInt(4)); err != nil {
		t.Fatalf("SetReg: %v", err)
	}
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := m.ExitValue(); !got.IsInt() || got.Int32() != 1 {
		t.Fatalf("exit value with $3=4 = %v, want Int 1", got)
	}

	m2 := vm.New()
	m2.LoadProgram(words)
	if err := m2.SetReg(3, value.NewInt(5)); err != nil {
		t.Fatalf("SetReg: %v", err)
	}
	if err := m2.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := m2.ExitValue(); !got.IsInt() || got.Int32() != 0 {
		t.Fatalf("exit value with $3=5 = %v, want Int 0", got)
	}
}

// TestExternalCall is spec.md section 8 scenario 6: an "ordinary host
// callable" bound as Ext, invoked through call.r with a stacked
// argument count, returns its argument wrapped as Ext.
func TestExternalCall(t *testing.T) {
	src := `.rodata
idstr: .str "id"
.text
cvt.ptr.i $4, &idstr
env.load $3, $4
push.i #1
push.i #1
call.r $3
pop $5
exit.i #0`

	text, rdata, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	words, err := link.Link(text, rdata)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	m := vm.New()
	m.Env.DeclareCallable("id", func(args []any) (any, error) {
		return args[0], nil
	})
	m.LoadProgram(words)
	if err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	r5, err := m.GetReg(5)
	if err != nil {
		t.Fatalf("GetReg: %v", err)
	}
	if !r5.IsExt() {
		t.Fatalf("r5 = %v, want Ext", r5)
	}
	if got, ok := r5.Handle().(int32); !ok || got != 1 {
		t.Fatalf("r5 handle = %v (%T), want int32(1)", r5.Handle(), r5.Handle())
	}
}

// TestDivisionByZeroIsFatal pins a boundary behavior from spec.md
// section 8.
func TestDivisionByZeroIsFatal(t *testing.T) {
	text, rdata, err := asm.Assemble("cvt.int.i $3, #1\ncvt.int.i $4, #0\ndiv $5, $3, $4\nexit.r $5")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	words, err := link.Link(text, rdata)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	m := vm.New()
	m.LoadProgram(words)
	if err := m.Run(); err == nil {
		t.Fatalf("expected a fault for division by zero")
	}
}

// TestInfiniteLoopStepBudget pins "b.i 0 is an infinite loop": running
// under a cycle budget must fault rather than hang.
func TestInfiniteLoopStepBudget(t *testing.T) {
	text, rdata, err := asm.Assemble("b.i #0")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	words, err := link.Link(text, rdata)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	m := vm.New()
	m.Budget = limits.NewBudget(1000)
	m.LoadProgram(words)
	if err := m.Run(); err == nil {
		t.Fatalf("expected the cycle budget to fault")
	}
}
