package code

import "testing"

func TestDecodeEncodeRoundTrip(t *testing.T) {
	cases := []uint32{
		0x00000000,
		0xFFFFFFFF,
		0x91234567,
		0x6A00FFFE,
	}
	for _, w := range cases {
		f := Decode(w)
		got := Encode(f)
		if got != w {
			t.Fatalf("Encode(Decode(%#08x)) = %#08x, want %#08x", w, got, w)
		}
	}
}

func TestDecodeFields(t *testing.T) {
	// class=9 (num), S=0, c0=0b010, c1=0b011, r0=5, c2=0b001, r1=3, c3=0b110, r2=7
	var w uint32
	w |= 9 << 28
	w |= 0b010 << 24
	w |= 0b011 << 21
	w |= 5 << 16
	w |= 0b001 << 13
	w |= 3 << 8
	w |= 0b110 << 5
	w |= 7

	f := Decode(w)
	if f.Class != ClassNum {
		t.Fatalf("Class = %v, want num", f.Class)
	}
	if f.S {
		t.Fatalf("S = true, want false")
	}
	if f.C0 != 0b010 || f.C1 != 0b011 || f.R0 != 5 || f.C2 != 0b001 || f.R1 != 3 || f.C3 != 0b110 || f.R2 != 7 {
		t.Fatalf("unexpected fields: %+v", f)
	}
}

func TestImmSignExtension(t *testing.T) {
	f := Fields{Imm: 0xFFFE} // -2 as int16
	if got := f.ImmSigned(); got != -2 {
		t.Fatalf("ImmSigned() = %d, want -2", got)
	}
	f = Fields{Imm: 0x0002}
	if got := f.ImmSigned(); got != 2 {
		t.Fatalf("ImmSigned() = %d, want 2", got)
	}
}

func TestReservedClasses(t *testing.T) {
	for _, c := range []Class{11, 12, 13, 14} {
		if !c.IsReserved() {
			t.Fatalf("class %d should be reserved", c)
		}
	}
	if ClassNum.IsReserved() {
		t.Fatalf("ClassNum should not be reserved")
	}
}
