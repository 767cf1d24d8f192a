package chip8

// Disassemble renders the instruction word at addr as a mnemonic string.
// It is pure: nothing is executed and no state changes. Words that do not
// decode to an instruction are rendered as raw data ("dw 0x...."), so a
// debugger can walk mixed code and data regions.
func (m *Machine) Disassemble(addr uint16) (string, error) {
	opcode, err := m.mem.Read16(addr)
	if err != nil {
		return "", err
	}
	return decode(opcode).Name(opcode), nil
}
