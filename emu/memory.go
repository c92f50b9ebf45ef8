package emu

import "fmt"

// Memory is a byte-addressable, little-endian address space backed by a
// sparse map rather than a flat array: RV64 programs address a 64-bit
// space but a simulated image only ever touches a handful of pages.
//
// Bounds, when non-zero, restrict which addresses Read/Write accept.
// Accesses outside [Low, High) return an error instead of panicking, so
// the pipeline's IF and MEM stages can turn an out-of-range access into a
// recoverable fault (bubble + advance) instead of crashing the simulator.
type Memory struct {
	bytes map[uint64]byte
	Low   uint64
	High  uint64
}

// NewMemory creates an empty memory with no bounds checking.
func NewMemory() *Memory {
	return &Memory{bytes: make(map[uint64]byte)}
}

// NewBoundedMemory creates a memory that rejects accesses outside [low, high).
func NewBoundedMemory(low, high uint64) *Memory {
	return &Memory{bytes: make(map[uint64]byte), Low: low, High: high}
}

func (m *Memory) bounded() bool {
	return m.High != 0
}

func (m *Memory) inRange(addr uint64, width uint64) bool {
	if !m.bounded() {
		return true
	}
	return addr >= m.Low && addr+width <= m.High
}

// checkRange returns an error if addr..addr+width is outside configured
// bounds, wrapping the address and access width for diagnostics.
func (m *Memory) checkRange(addr, width uint64) error {
	if !m.inRange(addr, width) {
		return fmt.Errorf("memory access out of range: addr=0x%x width=%d bounds=[0x%x,0x%x)", addr, width, m.Low, m.High)
	}
	return nil
}

// Read8 reads a byte. Unmapped addresses read as zero.
func (m *Memory) Read8(addr uint64) uint8 {
	return m.bytes[addr]
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint64, value uint8) {
	m.bytes[addr] = value
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint64) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint64, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint64) uint32 {
	return uint32(m.Read16(addr)) | uint32(m.Read16(addr+2))<<16
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint64, value uint32) {
	m.Write16(addr, uint16(value))
	m.Write16(addr+2, uint16(value>>16))
}

// Read64 reads a little-endian doubleword.
func (m *Memory) Read64(addr uint64) uint64 {
	return uint64(m.Read32(addr)) | uint64(m.Read32(addr+4))<<32
}

// Write64 writes a little-endian doubleword.
func (m *Memory) Write64(addr uint64, value uint64) {
	m.Write32(addr, uint32(value))
	m.Write32(addr+4, uint32(value>>32))
}

// ReadChecked reads width bytes (1, 2, 4, or 8) after validating bounds.
func (m *Memory) ReadChecked(addr uint64, width uint64) (uint64, error) {
	if err := m.checkRange(addr, width); err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(m.Read8(addr)), nil
	case 2:
		return uint64(m.Read16(addr)), nil
	case 4:
		return uint64(m.Read32(addr)), nil
	case 8:
		return m.Read64(addr), nil
	default:
		return 0, fmt.Errorf("unsupported read width %d", width)
	}
}

// WriteChecked writes width bytes (1, 2, 4, or 8) after validating bounds.
func (m *Memory) WriteChecked(addr uint64, width uint64, value uint64) error {
	if err := m.checkRange(addr, width); err != nil {
		return err
	}
	switch width {
	case 1:
		m.Write8(addr, uint8(value))
	case 2:
		m.Write16(addr, uint16(value))
	case 4:
		m.Write32(addr, uint32(value))
	case 8:
		m.Write64(addr, value)
	default:
		return fmt.Errorf("unsupported write width %d", width)
	}
	return nil
}

// LoadProgram copies program text/data into memory starting at entry.
func (m *Memory) LoadProgram(entry uint64, program []byte) {
	for i, b := range program {
		m.Write8(entry+uint64(i), b)
	}
}
