// Package chip8 implements the CHIP-8 virtual machine core: memory, register
// file, framebuffer, input latch and the fetch/decode/execute cycle. The
// package performs no I/O; the host drives it through Step, TickTimers and
// SetKey and reads state back through Pixels, Snapshot and Disassemble.
package chip8

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

const (
	ScreenWidth  = 64
	ScreenHeight = 32
	KeyCount     = 16
)

// Quirks selects between historically ambiguous instruction behaviors.
// The zero value matches the original COSMAC VIP interpreter except for the
// shift ops, which operate on Vx as most later interpreters expect.
type Quirks struct {
	// ClipSprites clips sprites at the screen edges instead of wrapping.
	ClipSprites bool
	// IndexOverflowFlag makes adi (Fx1E) set VF when I+Vx exceeds 0xFFF.
	IndexOverflowFlag bool
	// ShiftUsesVY makes shr/shl read Vy instead of shifting Vx in place.
	ShiftUsesVY bool
	// KeepIndexOnBulk leaves I unchanged after str/ldr (Fx55/Fx65).
	KeepIndexOnBulk bool
}

// Result summarizes the observable side effects of one Step.
type Result struct {
	Drawn   bool // the framebuffer changed and should be redrawn
	Sound   bool // the sound timer is active and the host should beep
	Waiting bool // execution is suspended on Fx0A until a key is pressed
}

// Machine is one independent CHIP-8 instance. It holds no global state, so
// multiple machines can run side by side. Access is single-threaded: the
// host drives Step and TickTimers from one loop and never mutates state
// except through SetKey, Load and Reset.
type Machine struct {
	mem  Memory
	regs Registers

	gfx  [ScreenWidth * ScreenHeight]uint8
	keys [KeyCount]bool

	quirks Quirks
	rng    *rand.Rand

	waiting bool
	waitReg uint8

	drawn   bool
	codeLen int
}

// New creates a machine with the given quirk configuration. The seed fixes
// the rand (Cxkk) instruction's sequence; two machines created with the same
// seed and ROM execute identically.
func New(quirks Quirks, seed uint64) *Machine {
	m := &Machine{
		quirks: quirks,
		rng:    rand.New(rand.NewPCG(seed, seed)),
	}
	m.Reset()
	return m
}

// Reset restores the power-on state: font in memory, PC at 0x200, cleared
// screen, keypad, stack and registers. The RNG sequence is not reset.
func (m *Machine) Reset() {
	slog.Debug("reset machine")
	m.mem.Reset()
	m.regs.Reset()

	for i := range m.gfx {
		m.gfx[i] = 0
	}
	for i := range m.keys {
		m.keys[i] = false
	}

	m.waiting = false
	m.drawn = true
	m.codeLen = 0
}

// Load resets the machine and copies a ROM to the program start address.
// A ROM is raw instruction and data bytes, no header.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MaxProgramSize {
		return fmt.Errorf("%w: rom is %d bytes, limit %d", ErrOutOfBounds, len(rom), MaxProgramSize)
	}

	m.Reset()
	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(rom))
	if err := m.mem.Load(rom, ProgramStart); err != nil {
		return err
	}
	m.codeLen = len(rom)
	return nil
}

// Step executes exactly one instruction and reports its side effects. When
// the machine is suspended on Fx0A, Step completes the pending key store if
// a key is down and otherwise returns immediately with Waiting set. A step
// that returns an error leaves the machine state unchanged.
func (m *Machine) Step() (Result, error) {
	m.drawn = false

	if m.waiting {
		m.pollWaitKey()
		return m.result(), nil
	}

	opcode, err := m.mem.Read16(m.regs.PC)
	if err != nil {
		return Result{}, err
	}

	instr := decode(opcode)
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", m.regs.PC),
			"opcode", fmt.Sprintf("0x%04x", opcode),
			"instr", instr.Name(opcode),
		)
	}

	if err := instr.Execute(m, opcode); err != nil {
		return Result{}, err
	}
	return m.result(), nil
}

func (m *Machine) result() Result {
	return Result{
		Drawn:   m.drawn,
		Sound:   m.regs.Sound > 0,
		Waiting: m.waiting,
	}
}

// pollWaitKey completes a pending Fx0A: if any key is down, its index is
// stored in the waiting register and the program counter advances.
func (m *Machine) pollWaitKey() {
	for i, down := range m.keys {
		if down {
			m.regs.V[m.waitReg] = uint8(i)
			m.regs.PC += InstructionSize
			m.waiting = false
			return
		}
	}
}

// TickTimers performs one 60 Hz decrement of the delay and sound timers.
// The host calls it at timer cadence, independent of the instruction rate.
func (m *Machine) TickTimers() {
	m.regs.TickDelay()
	m.regs.TickSound()
}

// SetKey records a host key press or release in the input latch.
func (m *Machine) SetKey(key uint8, down bool) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	m.keys[key] = down
	return nil
}

// PC returns the current program counter.
func (m *Machine) PC() uint16 {
	return m.regs.PC
}

// SoundActive reports whether the sound timer is running; while it is, the
// host should emit a tone.
func (m *Machine) SoundActive() bool {
	return m.regs.Sound > 0
}

// Pixels returns a copy of the framebuffer, one byte per pixel in row-major
// order, nonzero meaning lit.
func (m *Machine) Pixels() []uint8 {
	out := make([]uint8, len(m.gfx))
	copy(out, m.gfx[:])
	return out
}

// CodeRange returns the memory interval occupied by the loaded program.
func (m *Machine) CodeRange() (uint16, uint16) {
	return ProgramStart, ProgramStart + uint16(m.codeLen)
}

// Snapshot is a point-in-time copy of all observable machine state,
// consumed by debugger views. Mutating it does not affect the machine.
type Snapshot struct {
	V     [RegisterCount]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack []uint16
	Delay uint8
	Sound uint8

	Memory []byte
	Pixels []uint8

	Waiting bool
}

// Snapshot captures the full machine state.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		V:       m.regs.V,
		I:       m.regs.I,
		PC:      m.regs.PC,
		SP:      m.regs.SP,
		Stack:   make([]uint16, m.regs.SP),
		Delay:   m.regs.Delay,
		Sound:   m.regs.Sound,
		Memory:  m.mem.Dump(),
		Pixels:  m.Pixels(),
		Waiting: m.waiting,
	}
	copy(s.Stack, m.regs.Stack[:m.regs.SP])
	return s
}
