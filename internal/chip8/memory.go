package chip8

import "fmt"

const (
	MemorySize   = 4096
	ProgramStart = uint16(0x200)

	// MaxProgramSize is the largest ROM that fits between ProgramStart and
	// the end of memory.
	MaxProgramSize = MemorySize - int(ProgramStart)
)

// Memory is the flat 4k byte store. Addresses 0x000-0x1FF are reserved for
// the interpreter; the font sprites live at 0x000-0x04F.
type Memory struct {
	bytes [MemorySize]uint8
}

// Reset zeroes all of memory and reloads the font sprites.
func (m *Memory) Reset() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
	copy(m.bytes[fontStart:], font)
}

// Load copies data into memory starting at offset.
func (m *Memory) Load(data []byte, offset uint16) error {
	if int(offset)+len(data) > MemorySize {
		return fmt.Errorf("%w: load %d bytes at 0x%04x", ErrOutOfBounds, len(data), offset)
	}
	copy(m.bytes[offset:], data)
	return nil
}

func (m *Memory) Read8(addr uint16) (uint8, error) {
	if addr >= MemorySize {
		return 0, fmt.Errorf("%w: read at 0x%04x", ErrOutOfBounds, addr)
	}
	return m.bytes[addr], nil
}

func (m *Memory) Write8(addr uint16, value uint8) error {
	if addr >= MemorySize {
		return fmt.Errorf("%w: write at 0x%04x", ErrOutOfBounds, addr)
	}
	m.bytes[addr] = value
	return nil
}

// Read16 reads two consecutive bytes as a big-endian word.
func (m *Memory) Read16(addr uint16) (uint16, error) {
	if addr >= MemorySize-1 {
		return 0, fmt.Errorf("%w: read at 0x%04x", ErrOutOfBounds, addr)
	}
	return uint16(m.bytes[addr])<<8 | uint16(m.bytes[addr+1]), nil
}

// Dump returns a copy of the full address space.
func (m *Memory) Dump() []byte {
	out := make([]byte, MemorySize)
	copy(out, m.bytes[:])
	return out
}

const (
	fontStart      = uint16(0x000)
	fontSpriteSize = 5
)

// font holds the 4x5 sprites for the hexadecimal digits 0-F.
var font = []uint8{
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
