package chip8

import "fmt"

const (
	RegisterCount = 16
	StackSize     = 16

	InstructionSize = 2
)

// Registers is the register file: sixteen general purpose 8-bit registers
// (VF doubles as the carry/borrow/collision flag), the index register, the
// program counter, the bounded call stack and the two 60 Hz timers.
type Registers struct {
	V  [RegisterCount]uint8
	I  uint16
	PC uint16
	SP uint8

	Stack [StackSize]uint16

	Delay uint8
	Sound uint8
}

// Reset restores the power-on state: PC at the program start, everything
// else zeroed.
func (r *Registers) Reset() {
	*r = Registers{PC: ProgramStart}
}

// Get returns general register i.
func (r *Registers) Get(i uint8) (uint8, error) {
	if i >= RegisterCount {
		return 0, fmt.Errorf("%w: v%d", ErrInvalidRegister, i)
	}
	return r.V[i], nil
}

// Set writes general register i.
func (r *Registers) Set(i uint8, value uint8) error {
	if i >= RegisterCount {
		return fmt.Errorf("%w: v%d", ErrInvalidRegister, i)
	}
	r.V[i] = value
	return nil
}

// Push appends a return address to the call stack.
func (r *Registers) Push(addr uint16) error {
	if int(r.SP) >= StackSize {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, r.SP)
	}
	r.Stack[r.SP] = addr
	r.SP++
	return nil
}

// Pop removes and returns the top return address.
func (r *Registers) Pop() (uint16, error) {
	if r.SP == 0 {
		return 0, ErrStackUnderflow
	}
	r.SP--
	return r.Stack[r.SP], nil
}

// TickDelay decrements the delay timer, clamped at zero.
func (r *Registers) TickDelay() {
	if r.Delay > 0 {
		r.Delay--
	}
}

// TickSound decrements the sound timer, clamped at zero.
func (r *Registers) TickSound() {
	if r.Sound > 0 {
		r.Sound--
	}
}
