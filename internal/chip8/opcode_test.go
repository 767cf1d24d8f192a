package chip8

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func testMachine() *Machine {
	return New(Quirks{}, 1)
}

func writeOpcode(m *Machine, addr uint16, opcode uint16) {
	m.mem.bytes[addr] = uint8(opcode >> 8)
	m.mem.bytes[addr+1] = uint8(opcode)
}

// step plants an opcode at the current PC and executes it.
func step(t *testing.T, m *Machine, opcode uint16) Result {
	t.Helper()

	writeOpcode(m, m.regs.PC, opcode)
	res, err := m.Step()
	assert.NoError(t, err)
	return res
}

func TestCls(t *testing.T) {
	m := testMachine()
	m.gfx[100] = 1

	res := step(t, m, 0x00E0)

	assert.True(t, res.Drawn)
	assert.Equal(t, uint8(0), m.gfx[100])
	assert.Equal(t, ProgramStart+2, m.regs.PC)
}

func TestJmp(t *testing.T) {
	m := testMachine()

	step(t, m, 0x1ABC)

	assert.Equal(t, uint16(0xABC), m.regs.PC)
}

func TestJmiAddsV0(t *testing.T) {
	m := testMachine()
	m.regs.V[0] = 0x10

	step(t, m, 0xB300)

	assert.Equal(t, uint16(0x310), m.regs.PC)
}

func TestCallAndReturn(t *testing.T) {
	m := testMachine()

	step(t, m, 0x2400)
	assert.Equal(t, uint16(0x400), m.regs.PC)
	assert.Equal(t, uint8(1), m.regs.SP)

	step(t, m, 0x00EE)

	// Back at the instruction after the call.
	assert.Equal(t, ProgramStart+2, m.regs.PC)
	assert.Equal(t, uint8(0), m.regs.SP)
}

func TestNestedCallOverflow(t *testing.T) {
	m := testMachine()

	for i := 0; i < StackSize; i++ {
		step(t, m, 0x2300)
	}

	// The 17th nested call must fail and leave state unchanged.
	pc := m.regs.PC
	writeOpcode(m, pc, 0x2300)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, pc, m.regs.PC)
	assert.Equal(t, uint8(StackSize), m.regs.SP)
}

func TestReturnUnderflow(t *testing.T) {
	m := testMachine()

	writeOpcode(m, m.regs.PC, 0x00EE)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, ProgramStart, m.regs.PC)
}

func TestSkipInstructions(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		setup  func(m *Machine)
		skips  bool
	}{
		{"skeq const equal", 0x300A, func(m *Machine) { m.regs.V[0] = 0x0A }, true},
		{"skeq const not equal", 0x300A, func(m *Machine) { m.regs.V[0] = 0x0B }, false},
		{"skne const equal", 0x400A, func(m *Machine) { m.regs.V[0] = 0x0A }, false},
		{"skne const not equal", 0x400A, func(m *Machine) { m.regs.V[0] = 0x0B }, true},
		{"skeq reg equal", 0x5010, func(m *Machine) { m.regs.V[0], m.regs.V[1] = 7, 7 }, true},
		{"skeq reg not equal", 0x5010, func(m *Machine) { m.regs.V[0], m.regs.V[1] = 7, 8 }, false},
		{"skne reg equal", 0x9010, func(m *Machine) { m.regs.V[0], m.regs.V[1] = 7, 7 }, false},
		{"skne reg not equal", 0x9010, func(m *Machine) { m.regs.V[0], m.regs.V[1] = 7, 8 }, true},
		{"skpr pressed", 0xE09E, func(m *Machine) { m.regs.V[0] = 5; m.keys[5] = true }, true},
		{"skpr not pressed", 0xE09E, func(m *Machine) { m.regs.V[0] = 5 }, false},
		{"skup pressed", 0xE0A1, func(m *Machine) { m.regs.V[0] = 5; m.keys[5] = true }, false},
		{"skup not pressed", 0xE0A1, func(m *Machine) { m.regs.V[0] = 5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMachine()
			tt.setup(m)

			step(t, m, tt.opcode)

			want := ProgramStart + 2
			if tt.skips {
				want = ProgramStart + 4
			}
			assert.Equal(t, want, m.regs.PC)
		})
	}
}

func TestMovAndAddConst(t *testing.T) {
	m := testMachine()

	step(t, m, 0x60AB)
	assert.Equal(t, uint8(0xAB), m.regs.V[0])

	// add const wraps mod 256 and never touches VF
	m.regs.V[0] = 0xFF
	step(t, m, 0x7002)
	assert.Equal(t, uint8(0x01), m.regs.V[0])
	assert.Equal(t, uint8(0), m.regs.V[0xF])
}

func TestAluOps(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		x, y   uint8
		want   uint8
		wantVF uint8
		flag   bool // instruction writes VF
	}{
		{"mov", 0x8010, 0x12, 0x34, 0x34, 0, false},
		{"or", 0x8011, 0xF0, 0x0F, 0xFF, 0, false},
		{"and", 0x8012, 0xF0, 0x1F, 0x10, 0, false},
		{"xor", 0x8013, 0xFF, 0x0F, 0xF0, 0, false},
		{"add carry", 0x8014, 0xFF, 0x01, 0x00, 1, true},
		{"add no carry", 0x8014, 0x01, 0x01, 0x02, 0, true},
		{"sub no borrow", 0x8015, 0x05, 0x03, 0x02, 1, true},
		{"sub borrow", 0x8015, 0x03, 0x05, 0xFE, 0, true},
		{"sub equal", 0x8015, 0x07, 0x07, 0x00, 1, true},
		{"shr lsb set", 0x8016, 0x03, 0, 0x01, 1, true},
		{"shr lsb clear", 0x8016, 0x04, 0, 0x02, 0, true},
		{"rsb no borrow", 0x8017, 0x03, 0x05, 0x02, 1, true},
		{"rsb borrow", 0x8017, 0x05, 0x03, 0xFE, 0, true},
		{"shl msb set", 0x801E, 0x81, 0, 0x02, 1, true},
		{"shl msb clear", 0x801E, 0x41, 0, 0x82, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMachine()
			m.regs.V[0] = tt.x
			m.regs.V[1] = tt.y

			step(t, m, tt.opcode)

			assert.Equal(t, tt.want, m.regs.V[0])
			if tt.flag {
				assert.Equal(t, tt.wantVF, m.regs.V[0xF])
			}
			assert.Equal(t, ProgramStart+2, m.regs.PC)
		})
	}
}

func TestAluFlagWrittenLast(t *testing.T) {
	// With VF as the destination the flag survives, not the result.
	m := testMachine()
	m.regs.V[0xF] = 0xF0
	m.regs.V[1] = 0x20

	step(t, m, 0x8F14)

	assert.Equal(t, uint8(1), m.regs.V[0xF])

	// Same for a shift: the lost bit wins over the shifted value.
	m.regs.V[0xF] = 0x05
	step(t, m, 0x8F06)
	assert.Equal(t, uint8(1), m.regs.V[0xF])
}

func TestShiftUsesVYQuirk(t *testing.T) {
	m := New(Quirks{ShiftUsesVY: true}, 1)
	m.regs.V[0] = 0x00
	m.regs.V[1] = 0x03

	step(t, m, 0x8016)

	assert.Equal(t, uint8(0x01), m.regs.V[0])
	assert.Equal(t, uint8(1), m.regs.V[0xF])
}

func TestMvi(t *testing.T) {
	m := testMachine()

	step(t, m, 0xA123)

	assert.Equal(t, uint16(0x123), m.regs.I)
}

func TestRandIsMaskedAndSeeded(t *testing.T) {
	a := New(Quirks{}, 42)
	b := New(Quirks{}, 42)

	for i := 0; i < 32; i++ {
		step(t, a, 0xC00F)
		step(t, b, 0xC00F)

		assert.Equal(t, a.regs.V[0], b.regs.V[0])
		assert.Equal(t, uint8(0), a.regs.V[0]&0xF0)
	}
}

func TestSpriteXorAndCollision(t *testing.T) {
	m := testMachine()

	// Draw the font sprite for 0 at (0,0) twice: the second draw collides
	// and restores every pixel to off.
	m.regs.I = fontStart
	res := step(t, m, 0xD015)

	assert.True(t, res.Drawn)
	assert.Equal(t, uint8(0), m.regs.V[0xF])
	assert.Equal(t, uint8(1), m.gfx[0])

	m.regs.I = fontStart
	step(t, m, 0xD015)

	assert.Equal(t, uint8(1), m.regs.V[0xF])
	for i, px := range m.gfx {
		assert.Equal(t, uint8(0), px, fmt.Sprintf("pixel %d", i))
	}
}

func TestSpriteWrapsAtEdges(t *testing.T) {
	m := testMachine()
	m.regs.V[0] = 60
	m.regs.V[1] = 31
	m.regs.I = 0x300
	m.mem.bytes[0x300] = 0xFF
	m.mem.bytes[0x301] = 0xFF

	step(t, m, 0xD012)

	// Horizontal wrap on the bottom row, vertical wrap onto row 0.
	assert.Equal(t, uint8(1), m.gfx[31*ScreenWidth+63])
	assert.Equal(t, uint8(1), m.gfx[31*ScreenWidth+0])
	assert.Equal(t, uint8(1), m.gfx[0*ScreenWidth+60])
	assert.Equal(t, uint8(1), m.gfx[0*ScreenWidth+3])
}

func TestSpriteClipQuirk(t *testing.T) {
	m := New(Quirks{ClipSprites: true}, 1)
	m.regs.V[0] = 60
	m.regs.V[1] = 31
	m.regs.I = 0x300
	m.mem.bytes[0x300] = 0xFF
	m.mem.bytes[0x301] = 0xFF

	step(t, m, 0xD012)

	assert.Equal(t, uint8(1), m.gfx[31*ScreenWidth+63])
	assert.Equal(t, uint8(0), m.gfx[31*ScreenWidth+0])
	assert.Equal(t, uint8(0), m.gfx[0*ScreenWidth+60])
}

func TestSpriteReadOutOfBounds(t *testing.T) {
	m := testMachine()
	m.regs.I = MemorySize - 1

	writeOpcode(m, m.regs.PC, 0xD012)
	_, err := m.Step()

	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, ProgramStart, m.regs.PC)
}

func TestWaitForKey(t *testing.T) {
	m := testMachine()

	res := step(t, m, 0xF30A)
	assert.True(t, res.Waiting)
	assert.Equal(t, ProgramStart, m.regs.PC)

	// Still suspended while no key is down; the opcode is not re-fetched.
	res, err := m.Step()
	assert.NoError(t, err)
	assert.True(t, res.Waiting)
	assert.Equal(t, ProgramStart, m.regs.PC)

	assert.NoError(t, m.SetKey(0xB, true))
	res, err = m.Step()
	assert.NoError(t, err)
	assert.False(t, res.Waiting)
	assert.Equal(t, uint8(0xB), m.regs.V[3])
	assert.Equal(t, ProgramStart+2, m.regs.PC)
}

func TestWaitForKeyAlreadyPressed(t *testing.T) {
	m := testMachine()
	assert.NoError(t, m.SetKey(2, true))

	res := step(t, m, 0xF00A)

	assert.False(t, res.Waiting)
	assert.Equal(t, uint8(2), m.regs.V[0])
	assert.Equal(t, ProgramStart+2, m.regs.PC)
}

func TestTimerInstructions(t *testing.T) {
	m := testMachine()

	m.regs.V[0] = 30
	step(t, m, 0xF015)
	assert.Equal(t, uint8(30), m.regs.Delay)

	step(t, m, 0xF107)
	assert.Equal(t, uint8(30), m.regs.V[1])

	m.regs.V[2] = 9
	res := step(t, m, 0xF218)
	assert.Equal(t, uint8(9), m.regs.Sound)
	assert.True(t, res.Sound)
}

func TestAdi(t *testing.T) {
	m := testMachine()
	m.regs.I = 0xFFE
	m.regs.V[0] = 0x04

	step(t, m, 0xF01E)

	// Without the quirk VF stays untouched on overflow.
	assert.Equal(t, uint16(0x1002), m.regs.I)
	assert.Equal(t, uint8(0), m.regs.V[0xF])
}

func TestAdiOverflowQuirk(t *testing.T) {
	m := New(Quirks{IndexOverflowFlag: true}, 1)
	m.regs.I = 0xFFE
	m.regs.V[0] = 0x04

	step(t, m, 0xF01E)
	assert.Equal(t, uint8(1), m.regs.V[0xF])

	m.regs.I = 0x100
	step(t, m, 0xF01E)
	assert.Equal(t, uint8(0), m.regs.V[0xF])
}

func TestFont(t *testing.T) {
	m := testMachine()
	m.regs.V[0] = 0xA

	step(t, m, 0xF029)

	assert.Equal(t, fontStart+0xA*fontSpriteSize, m.regs.I)
}

func TestBcd(t *testing.T) {
	m := testMachine()
	m.regs.V[0] = 254
	m.regs.I = 0x300

	step(t, m, 0xF033)

	assert.Equal(t, uint8(2), m.mem.bytes[0x300])
	assert.Equal(t, uint8(5), m.mem.bytes[0x301])
	assert.Equal(t, uint8(4), m.mem.bytes[0x302])
}

func TestBcdOutOfBounds(t *testing.T) {
	m := testMachine()
	m.regs.I = MemorySize - 2

	writeOpcode(m, m.regs.PC, 0xF033)
	_, err := m.Step()

	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, ProgramStart, m.regs.PC)
}

func TestBulkStoreLoad(t *testing.T) {
	m := testMachine()
	for i := uint8(0); i <= 3; i++ {
		m.regs.V[i] = 0x10 + i
	}
	m.regs.I = 0x300

	step(t, m, 0xF355)

	for i := uint16(0); i <= 3; i++ {
		assert.Equal(t, uint8(0x10+i), m.mem.bytes[0x300+i])
	}
	assert.Equal(t, uint16(0x304), m.regs.I)

	m.regs.I = 0x300
	m.regs.V[0], m.regs.V[1] = 0, 0

	step(t, m, 0xF365)

	assert.Equal(t, uint8(0x10), m.regs.V[0])
	assert.Equal(t, uint8(0x13), m.regs.V[3])
	assert.Equal(t, uint16(0x304), m.regs.I)
}

func TestBulkKeepIndexQuirk(t *testing.T) {
	m := New(Quirks{KeepIndexOnBulk: true}, 1)
	m.regs.I = 0x300

	step(t, m, 0xF155)
	assert.Equal(t, uint16(0x300), m.regs.I)

	step(t, m, 0xF165)
	assert.Equal(t, uint16(0x300), m.regs.I)
}

func TestBulkOutOfBounds(t *testing.T) {
	m := testMachine()
	m.regs.I = MemorySize - 2

	writeOpcode(m, m.regs.PC, 0xF355)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, ProgramStart, m.regs.PC)
	assert.Equal(t, uint16(MemorySize-2), m.regs.I)

	writeOpcode(m, m.regs.PC, 0xF365)
	_, err = m.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestUnknownInstruction(t *testing.T) {
	for _, opcode := range []uint16{0x0123, 0x5011, 0x8008, 0x9005, 0xE001, 0xF0FF} {
		m := testMachine()

		writeOpcode(m, m.regs.PC, opcode)
		_, err := m.Step()

		assert.True(t, errors.Is(err, ErrUnknownInstruction), fmt.Sprintf("opcode 0x%04x", opcode))
		assert.Equal(t, ProgramStart, m.regs.PC)
	}
}

func TestAddScenario(t *testing.T) {
	// LD V0,0x0A; LD V1,0x0B; ADD V0,V1
	m := testMachine()
	assert.NoError(t, m.Load([]byte{0x60, 0x0A, 0x61, 0x0B, 0x80, 0x14}))

	for i := 0; i < 3; i++ {
		_, err := m.Step()
		assert.NoError(t, err)
	}

	assert.Equal(t, uint8(0x15), m.regs.V[0])
	assert.Equal(t, uint8(0), m.regs.V[0xF])
	assert.Equal(t, uint16(0x206), m.regs.PC)
}
