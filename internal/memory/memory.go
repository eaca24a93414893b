// Package memory implements the 4KB address space of the virtual machine.
package memory

import "fmt"

// Memory layout constants
const (
	// Size is the total number of addressable bytes
	Size = 0x1000
	// AddressMask keeps an address inside the 12-bit address space
	AddressMask = Size - 1

	// FontStart is where the built-in hexadecimal glyphs live
	FontStart = 0x050
	// FontGlyphSize is the number of bytes (rows) per glyph
	FontGlyphSize = 5
	// FontGlyphs is the number of glyphs in the font table
	FontGlyphs = 16

	// ProgramStart is the first byte of program space
	ProgramStart = 0x200
	// ProgramSize is the maximum program image that fits in memory
	ProgramSize = Size - ProgramStart
)

// fontset holds the 4x5 glyphs for 0-F, one byte per row, high nibble used.
var fontset = [FontGlyphs * FontGlyphSize]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory represents the machine's address space
type Memory struct {
	data [Size]uint8

	// Number of program bytes copied by the last load
	programLength int
}

// New creates a zeroed Memory with the font table installed
func New() *Memory {
	mem := &Memory{}
	mem.Reset()
	return mem
}

// Reset zeroes the address space and reinstalls the font table
func (m *Memory) Reset() {
	m.data = [Size]uint8{}
	copy(m.data[FontStart:], fontset[:])
	m.programLength = 0
}

// InBounds reports whether address can be read or written
func InBounds(address int) bool {
	return address >= 0 && address < Size
}

// Read returns the byte at address. Out-of-range reads return 0.
func (m *Memory) Read(address uint16) uint8 {
	if int(address) >= Size {
		return 0
	}
	return m.data[address]
}

// Write stores value at address and reports whether the write happened.
// Out-of-range writes are dropped.
func (m *Memory) Write(address uint16, value uint8) bool {
	if int(address) >= Size {
		return false
	}
	m.data[address] = value
	return true
}

// ReadWord returns the big-endian word at address. Both byte addresses
// wrap at the end of the address space.
func (m *Memory) ReadWord(address uint16) uint16 {
	high := uint16(m.data[address&AddressMask])
	low := uint16(m.data[(address+1)&AddressMask])
	return high<<8 | low
}

// LoadProgram copies a program image into program space and returns the
// number of bytes stored. Anything past ProgramSize is truncated.
func (m *Memory) LoadProgram(program []uint8) int {
	n := copy(m.data[ProgramStart:], program)
	m.programLength = n
	return n
}

// ProgramLength returns the size of the last loaded program image
func (m *Memory) ProgramLength() int {
	return m.programLength
}

// Slice returns a copy of length bytes starting at address, clipped to the
// end of memory.
func (m *Memory) Slice(address uint16, length int) []uint8 {
	if int(address) >= Size || length <= 0 {
		return nil
	}
	end := int(address) + length
	if end > Size {
		end = Size
	}
	out := make([]uint8, end-int(address))
	copy(out, m.data[address:end])
	return out
}

// Glyph returns the font-table address of a hexadecimal digit
func Glyph(digit uint8) (uint16, error) {
	if digit >= FontGlyphs {
		return 0, fmt.Errorf("invalid glyph digit: 0x%X", digit)
	}
	return FontStart + uint16(digit)*FontGlyphSize, nil
}
