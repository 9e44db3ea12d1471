package value

import "fmt"

// BoundsError is returned by WordMemory/ObjectMemory accessors when an
// offset falls outside the region's capacity.
type BoundsError struct {
	Region Region
	Offset uint32
	Size   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s memory access at %d out of bounds (size %d)", e.Region, e.Offset, e.Size)
}

// WordMemory is a fixed-size array of 32-bit int cells. Reads yield an
// Int; writes accept any value with a raw view and store its bit
// pattern.
type WordMemory struct {
	region Region
	cells  []uint32
}

// NewWordMemory allocates a word region of the given capacity.
func NewWordMemory(region Region, size int) *WordMemory {
	return &WordMemory{region: region, cells: make([]uint32, size)}
}

func (m *WordMemory) Len() int { return len(m.cells) }

func (m *WordMemory) Region() Region { return m.region }

// Read loads the word at offset as an Int.
func (m *WordMemory) Read(offset uint32) (Value, error) {
	if int(offset) >= len(m.cells) {
		return Value{}, &BoundsError{Region: m.region, Offset: offset, Size: len(m.cells)}
	}
	return NewIntFromRaw(m.cells[offset]), nil
}

// ReadRaw loads the raw bits at offset without tagging them.
func (m *WordMemory) ReadRaw(offset uint32) (uint32, error) {
	if int(offset) >= len(m.cells) {
		return 0, &BoundsError{Region: m.region, Offset: offset, Size: len(m.cells)}
	}
	return m.cells[offset], nil
}

// Write stores v's raw view at offset. v must be Int, Float or Ptr.
func (m *WordMemory) Write(offset uint32, v Value) error {
	raw, ok := v.RawView()
	if !ok {
		return fmt.Errorf("word memory write requires a raw-view value, got %s", v.Tag())
	}
	return m.WriteRaw(offset, raw)
}

// WriteRaw stores a raw 32-bit pattern at offset.
func (m *WordMemory) WriteRaw(offset uint32, raw uint32) error {
	if int(offset) >= len(m.cells) {
		return &BoundsError{Region: m.region, Offset: offset, Size: len(m.cells)}
	}
	m.cells[offset] = raw
	return nil
}

// LoadProgram copies words into the region starting at offset 0,
// zero-filling the remainder.
func (m *WordMemory) LoadProgram(words []uint32) {
	for i := range m.cells {
		m.cells[i] = 0
	}
	copy(m.cells, words)
}

// Clear zeros every cell.
func (m *WordMemory) Clear() {
	for i := range m.cells {
		m.cells[i] = 0
	}
}

// ObjectMemory is a fixed-size array of tagged Values. Reads and writes
// preserve the full tag.
type ObjectMemory struct {
	region Region
	cells  []Value
}

// NewObjectMemory allocates an object region of the given capacity.
func NewObjectMemory(region Region, size int) *ObjectMemory {
	return &ObjectMemory{region: region, cells: make([]Value, size)}
}

func (m *ObjectMemory) Len() int { return len(m.cells) }

func (m *ObjectMemory) Region() Region { return m.region }

// Read loads the Value stored at offset.
func (m *ObjectMemory) Read(offset uint32) (Value, error) {
	if int(offset) >= len(m.cells) {
		return Value{}, &BoundsError{Region: m.region, Offset: offset, Size: len(m.cells)}
	}
	return m.cells[offset], nil
}

// Write stores v verbatim at offset.
func (m *ObjectMemory) Write(offset uint32, v Value) error {
	if int(offset) >= len(m.cells) {
		return &BoundsError{Region: m.region, Offset: offset, Size: len(m.cells)}
	}
	m.cells[offset] = v
	return nil
}

// Clear resets every cell to Null.
func (m *ObjectMemory) Clear() {
	for i := range m.cells {
		m.cells[i] = Value{}
	}
}
