// Command cursedvm assembles, links and runs CursedVM programs: the
// embedding CLI collaborator spec.md section 1 explicitly keeps out of
// the core, built thin on top of internal/config, internal/asm,
// internal/link and internal/vm.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"cursedvm/internal/asm"
	"cursedvm/internal/code"
	"cursedvm/internal/config"
	"cursedvm/internal/diag"
	"cursedvm/internal/limits"
	"cursedvm/internal/link"
	"cursedvm/internal/trace"
	"cursedvm/internal/vm"
)

func main() {
	dumpMode := flag.Bool("dump", false, "disassemble the assembled program instead of running it")
	traceMode := flag.Bool("trace", false, "enable per-instruction debug tracing")
	cycleLimit := flag.Int64("cycles", 0, "cycle budget (0 means unlimited)")
	manifestPath := flag.String("manifest", "", "path to a manifest file (entry/object/cycle_limit/trace)")
	flag.Parse()

	args := flag.Args()

	var entry string
	var objectPaths []string
	trc := *traceMode
	cycles := *cycleLimit

	if *manifestPath != "" {
		m, err := config.LoadManifest(*manifestPath)
		if err != nil {
			fatal(err)
		}
		entry = m.Entry
		objectPaths = m.Objects
		trc = trc || m.Trace
		if cycles == 0 {
			cycles = m.CycleLimit
		}
	} else if len(args) > 0 {
		entry = args[0]
		objectPaths = args[1:]
	} else {
		fmt.Fprintln(os.Stderr, "usage: cursedvm [-dump] [-trace] [-cycles N] <entry.asm> [object.asm...]")
		os.Exit(2)
	}

	// Text sections are concatenated first so the entry's first
	// instruction keeps landing at offset 0 (where PC starts and where
	// LoadProgram writes); rodata sections follow after every text
	// section, matching how the assembler itself only ever hoists data
	// into rodata rather than interleaving it with code.
	entryText, entryRData, err := assembleFile(entry)
	if err != nil {
		fatal(err)
	}
	texts := []*asm.Object{entryText}
	rdatas := []*asm.Object{entryRData}
	for _, p := range objectPaths {
		text, rdata, err := assembleFile(p)
		if err != nil {
			fatal(err)
		}
		texts = append(texts, text)
		rdatas = append(rdatas, rdata)
	}

	objs := append(texts, rdatas...)
	words, err := link.Link(objs...)
	if err != nil {
		fatal(err)
	}

	if *dumpMode {
		fmt.Print(code.Disassemble(words))
		return
	}

	machine := vm.New()
	machine.Sink = trace.New(os.Stderr, trc)
	machine.Budget = limits.NewBudget(cycles)
	machine.LoadProgram(words)

	if err := machine.Run(); err != nil {
		var f *diag.Fault
		if errors.As(err, &f) {
			fmt.Fprintf(os.Stderr, "cursedvm: %s\n", f.Error())
			os.Exit(1)
		}
		fatal(err)
	}

	exit := machine.ExitValue()
	fmt.Fprintf(os.Stderr, "exit: %s\n", exit.String())
	if exit.IsInt() {
		os.Exit(int(exit.Int32()) & 0xFF)
	}
}

func assembleFile(path string) (*asm.Object, *asm.Object, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return asm.Assemble(string(src))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "cursedvm: %v\n", err)
	os.Exit(1)
}
