// Package value implements the tagged runtime datum used throughout
// CursedVM: Null, Int, Float, Ptr and Ext, plus their raw bit-view and
// conversion rules.
package value

import (
	"fmt"
	"math"
)

// Tag identifies which case of the Value union is populated.
type Tag uint8

const (
	Null Tag = iota
	Int
	Float
	Ptr
	Ext
)

func (t Tag) String() string {
	switch t {
	case Null:
		return "null"
	case Int:
		return "int"
	case Float:
		return "float"
	case Ptr:
		return "ptr"
	case Ext:
		return "ext"
	default:
		return "unknown"
	}
}

// Region names a memory region a Ptr may address.
type Region uint8

const (
	RegionWord Region = iota
	RegionObject
	RegionCallStack
	RegionIRS
	RegionDataStack
)

func (r Region) String() string {
	switch r {
	case RegionWord:
		return "word"
	case RegionObject:
		return "object"
	case RegionCallStack:
		return "callstack"
	case RegionIRS:
		return "irs"
	case RegionDataStack:
		return "datastack"
	default:
		return "unknown-region"
	}
}

// Handle is an opaque reference to a host object bound through an
// Environment. Equality of two Handles is host-object identity.
type Handle interface{}

// Value is the closed tagged union described in spec.md section 3. It is
// represented as a struct rather than an interface so that the raw
// 32-bit view used by reinterpretation (the "repr" conversions) is a
// reinterpretation of the same bytes instead of a type switch over Go
// values.
type Value struct {
	tag    Tag
	raw    uint32 // Int: two's-complement bits. Float: IEEE-754 binary32 bits. Ptr: offset.
	region Region // meaningful only when tag == Ptr
	ext    Handle // meaningful only when tag == Ext
}

// NewNull returns the singleton-shaped Null value.
func NewNull() Value { return Value{tag: Null} }

// NewInt wraps a signed 32-bit integer.
func NewInt(n int32) Value { return Value{tag: Int, raw: uint32(n)} }

// NewIntFromRaw wraps the unsigned bit pattern of a 32-bit integer.
func NewIntFromRaw(raw uint32) Value { return Value{tag: Int, raw: raw} }

// NewFloat wraps an IEEE-754 binary32 float.
func NewFloat(f float32) Value { return Value{tag: Float, raw: math.Float32bits(f)} }

// NewFloatFromRaw wraps the raw bit pattern of a binary32 float.
func NewFloatFromRaw(raw uint32) Value { return Value{tag: Float, raw: raw} }

// NewPtr wraps an offset into the named region.
func NewPtr(region Region, offset uint32) Value {
	return Value{tag: Ptr, raw: offset, region: region}
}

// NewExt wraps an opaque host handle.
func NewExt(h Handle) Value { return Value{tag: Ext, ext: h} }

func (v Value) Tag() Tag        { return v.tag }
func (v Value) IsNull() bool    { return v.tag == Null }
func (v Value) IsInt() bool     { return v.tag == Int }
func (v Value) IsFloat() bool   { return v.tag == Float }
func (v Value) IsPtr() bool     { return v.tag == Ptr }
func (v Value) IsExt() bool     { return v.tag == Ext }
func (v Value) Region() Region  { return v.region }
func (v Value) Handle() Handle  { return v.ext }

// Int32 returns the signed interpretation of an Int value. Panics if v
// is not an Int; callers must check Tag() first (the VM layer turns
// this into a TypeError).
func (v Value) Int32() int32 {
	if v.tag != Int {
		panic("value: Int32 called on non-Int value")
	}
	return int32(v.raw)
}

// Uint32 returns the unsigned "raw" view of an Int value.
func (v Value) Uint32() uint32 {
	if v.tag != Int {
		panic("value: Uint32 called on non-Int value")
	}
	return v.raw
}

// Float32 returns the float interpretation of a Float value.
func (v Value) Float32() float32 {
	if v.tag != Float {
		panic("value: Float32 called on non-Float value")
	}
	return math.Float32frombits(v.raw)
}

// Offset returns the unsigned offset of a Ptr value.
func (v Value) Offset() uint32 {
	if v.tag != Ptr {
		panic("value: Offset called on non-Ptr value")
	}
	return v.raw
}

// HasRawView reports whether v has a four-byte raw view usable by
// RawView/WithRawView (Int, Float and Ptr do; Null and Ext do not, per
// spec.md section 3's invariants).
func (v Value) HasRawView() bool {
	switch v.tag {
	case Int, Float, Ptr:
		return true
	default:
		return false
	}
}

// RawView returns the four-byte bit-exact view backing Int/Float/Ptr
// values.
func (v Value) RawView() (uint32, bool) {
	if !v.HasRawView() {
		return 0, false
	}
	return v.raw, true
}

// WithRawView reinterprets raw as the same tag as v, keeping v's region
// if v is a Ptr. The "repr" nested conversion form uses ReinterpretAs
// instead, since it changes the tag.
func (v Value) WithRawView(raw uint32) Value {
	return Value{tag: v.tag, raw: raw, region: v.region}
}

// ReinterpretAs builds a Value of the given tag from a raw bit pattern,
// used by the cvt class's nested "repr" form to reinterpret a source
// register's raw view as a different tag before converting. tag must
// be Int, Float or Ptr; region is only meaningful when tag is Ptr.
func ReinterpretAs(tag Tag, raw uint32, region Region) Value {
	return Value{tag: tag, raw: raw, region: region}
}

// SameRegion reports whether two Ptr values address the same region.
func (v Value) SameRegion(other Value) bool {
	return v.tag == Ptr && other.tag == Ptr && v.region == other.region
}

// IdentityEqual implements the object-identity comparison used by cmp's
// "is" operator: numeric/pointer values compare by tag, raw bits and
// (for pointers) region; Ext values compare by handle identity.
func (v Value) IdentityEqual(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case Null:
		return true
	case Int, Float:
		return v.raw == other.raw
	case Ptr:
		return v.raw == other.raw && v.region == other.region
	case Ext:
		return v.ext == other.ext
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.tag {
	case Null:
		return "null"
	case Int:
		return fmt.Sprintf("%d", v.Int32())
	case Float:
		return fmt.Sprintf("%g", v.Float32())
	case Ptr:
		return fmt.Sprintf("ptr(%s:%d)", v.region, v.raw)
	case Ext:
		return fmt.Sprintf("ext(%v)", v.ext)
	default:
		return "?"
	}
}
