package chip8

import "errors"

// Violation errors returned by the core. Every fault is detected before any
// state is mutated, so a failed Step leaves the machine unchanged.
var (
	ErrOutOfBounds        = errors.New("memory access out of bounds")
	ErrInvalidRegister    = errors.New("invalid register")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidKey         = errors.New("invalid key")
)
