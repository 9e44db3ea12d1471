package link

import (
	"testing"

	"cursedvm/internal/asm"
)

func obj(words []uint32, labels map[string]int, relocs []asm.Reloc) *asm.Object {
	if labels == nil {
		labels = map[string]int{}
	}
	return &asm.Object{Words: append([]uint32(nil), words...), Labels: labels, Relocs: relocs}
}

func TestLinkConcatenatesInOrder(t *testing.T) {
	a := obj([]uint32{1, 2}, nil, nil)
	b := obj([]uint32{3, 4, 5}, nil, nil)
	words, err := Link(a, b)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	want := []uint32{1, 2, 3, 4, 5}
	if len(words) != len(want) {
		t.Fatalf("len = %d, want %d", len(words), len(want))
	}
	for i, w := range want {
		if words[i] != w {
			t.Fatalf("words[%d] = %d, want %d", i, words[i], w)
		}
	}
}

func TestLinkReoffsetsLabelsAcrossObjects(t *testing.T) {
	a := obj([]uint32{0, 0}, map[string]int{"start": 0}, nil)
	b := obj([]uint32{0, 0, 0}, map[string]int{"end": 2}, nil)
	// A third object referencing "end" absolutely, placed after a and b.
	c := obj([]uint32{0}, nil, []asm.Reloc{{Site: 0, Target: "end", Kind: asm.RelocAbsolute}})

	words, err := Link(a, b, c)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	// "end" lives at offset len(a.Words)+2 == 4.
	if got := words[5] & 0xFFFF; got != 4 {
		t.Fatalf("resolved absolute target = %d, want 4", got)
	}
}

func TestLinkResolvesRelativeReloc(t *testing.T) {
	a := obj([]uint32{0}, map[string]int{"start": 0}, nil)
	b := obj([]uint32{0, 0, 0}, nil, []asm.Reloc{{Site: 2, Target: "start", Kind: asm.RelocRelative}})

	words, err := Link(a, b)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	// "start" resolves to absolute address 0; the reloc site is at
	// absolute address len(a.Words)+2 == 3, so the displacement is -3.
	site := len(a.Words) + 2
	got := int32(int16(uint16(words[site] & 0xFFFF)))
	if got != -3 {
		t.Fatalf("relative displacement = %d, want -3", got)
	}
}

func TestLinkDuplicateLabelAcrossObjectsIsFatal(t *testing.T) {
	a := obj([]uint32{0}, map[string]int{"x": 0}, nil)
	b := obj([]uint32{0}, map[string]int{"x": 0}, nil)
	if _, err := Link(a, b); err == nil {
		t.Fatalf("expected a duplicate-label error")
	}
}

func TestLinkUndefinedLabelIsFatal(t *testing.T) {
	a := obj([]uint32{0}, nil, []asm.Reloc{{Site: 0, Target: "nowhere", Kind: asm.RelocAbsolute}})
	if _, err := Link(a); err == nil {
		t.Fatalf("expected an undefined-label error")
	}
}

func TestLinkPreservesHighBitsAroundReloc(t *testing.T) {
	// The relocation only ever touches the low 16 bits; the rest of the
	// word (class/flags/registers) must survive untouched.
	a := obj([]uint32{0}, map[string]int{"start": 0}, nil)
	b := obj([]uint32{0xABCD0000}, nil, []asm.Reloc{{Site: 0, Target: "start", Kind: asm.RelocAbsolute}})
	words, err := Link(a, b)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if words[1]&0xFFFF0000 != 0xABCD0000 {
		t.Fatalf("high bits clobbered: %#x", words[1])
	}
	if words[1]&0xFFFF != 0 {
		t.Fatalf("resolved target = %#x, want 0", words[1]&0xFFFF)
	}
}
