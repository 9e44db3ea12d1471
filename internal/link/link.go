// Package link implements CursedVM's linker: concatenating assembler
// objects and resolving their labels/relocations into a single flat
// word array (spec.md section 4.4).
package link

import (
	"cursedvm/internal/asm"
	"cursedvm/internal/diag"
)

// Link concatenates objs in argument order, re-offsetting and merging
// their label and relocation tables, then resolves every relocation
// into the low 16 bits of its target word. Duplicate labels across
// objects, and relocations whose target label is missing, are both
// LinkError faults.
func Link(objs ...*asm.Object) ([]uint32, error) {
	words := make([]uint32, 0)
	labels := map[string]int{}
	var relocs []struct {
		site   int
		target string
		kind   asm.RelocKind
		line   int
	}

	for _, o := range objs {
		base := len(words)
		for name, off := range o.Labels {
			addr := base + off
			if _, dup := labels[name]; dup {
				return nil, diag.NewAt(diag.LinkError, 0, "duplicate label %q", name)
			}
			labels[name] = addr
		}
		for _, r := range o.Relocs {
			relocs = append(relocs, struct {
				site   int
				target string
				kind   asm.RelocKind
				line   int
			}{site: base + r.Site, target: r.Target, kind: r.Kind, line: r.Line})
		}
		words = append(words, o.Words...)
	}

	for _, r := range relocs {
		target, ok := labels[r.target]
		if !ok {
			return nil, diag.NewAt(diag.LinkError, r.line, "undefined label %q", r.target)
		}
		var value int32
		switch r.kind {
		case asm.RelocAbsolute:
			value = int32(target)
		case asm.RelocRelative:
			value = int32(target - r.site)
		}
		if r.site < 0 || r.site >= len(words) {
			return nil, diag.NewAt(diag.LinkError, r.line, "relocation site %d out of range", r.site)
		}
		words[r.site] = words[r.site]&^0xFFFF | uint32(value)&0xFFFF
	}

	return words, nil
}
