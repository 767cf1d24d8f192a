package chip8

import "fmt"

// instruction is one decoded operation: a disassembly formatter and an
// executor. Executors validate every memory and stack effect before
// mutating, and write the VF flag after the destination register so that
// Vx==VF resolves to the flag value.
type instruction struct {
	Name    func(opcode uint16) string
	Execute func(m *Machine, opcode uint16) error
}

// decode selects the instruction for an opcode by nibble pattern. The high
// nibble picks the family; the low nibbles pick the sub-opcode. Anything
// that does not match decodes to unknownInstruction, which fails on
// execution but still disassembles as a raw data word.
func decode(opcode uint16) instruction {
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode & 0x00FF {
		case 0x00E0:
			// 00E0 - Clear screen
			return clsInstruction

		case 0x00EE:
			// 00EE - Return from subroutine
			return rtsInstruction
		}
		// 0NNN machine code routines are not supported

	case 0x1000:
		// 1NNN - Jumps to address NNN
		return jmpInstruction

	case 0x2000:
		// 2NNN - Calls subroutine at NNN
		return jsrInstruction

	case 0x3000:
		// 3XNN - Skips the next instruction if VX equals NN
		return skeq1Instruction

	case 0x4000:
		// 4XNN - Skips the next instruction if VX does not equal NN
		return skne1Instruction

	case 0x5000:
		// 5XY0 - Skips the next instruction if VX equals VY
		if opcode&0x000F == 0 {
			return skeq2Instruction
		}

	case 0x6000:
		// 6XNN - Sets VX to NN
		return mov1Instruction

	case 0x7000:
		// 7XNN - Adds NN to VX
		return add1Instruction

	case 0x8000:
		// 8XY_
		switch opcode & 0x000F {
		case 0x0000:
			// 8XY0 - Sets VX to the value of VY
			return mov2Instruction

		case 0x0001:
			// 8XY1 - Sets VX to (VX OR VY)
			return orInstruction

		case 0x0002:
			// 8XY2 - Sets VX to (VX AND VY)
			return andInstruction

		case 0x0003:
			// 8XY3 - Sets VX to (VX XOR VY)
			return xorInstruction

		case 0x0004:
			// 8XY4 - Adds VY to VX. VF is set to 1 when there's a carry, and to 0 when there isn't.
			return add2Instruction

		case 0x0005:
			// 8XY5 - VY is subtracted from VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
			return subInstruction

		case 0x0006:
			// 8XY6 - Shifts VX right by one. VF is set to the value of the least significant bit before the shift.
			return shrInstruction

		case 0x0007:
			// 8XY7 - Sets VX to VY minus VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
			return rsbInstruction

		case 0x000E:
			// 8XYE - Shifts VX left by one. VF is set to the value of the most significant bit before the shift.
			return shlInstruction
		}

	case 0x9000:
		// 9XY0 - Skips the next instruction if VX doesn't equal VY
		if opcode&0x000F == 0 {
			return skne2Instruction
		}

	case 0xA000:
		// ANNN - Sets I to the address NNN
		return mviInstruction

	case 0xB000:
		// BNNN - Jumps to the address NNN plus V0
		return jmiInstruction

	case 0xC000:
		// CXNN - Sets VX to a random number, masked by NN
		return randInstruction

	case 0xD000:
		// DXYN - Draws a sprite at coordinate (VX, VY) that has a width of 8
		// pixels and a height of N pixels, read from memory location I.
		// VF is set to 1 if any screen pixel is flipped from set to unset.
		return spriteInstruction

	case 0xE000:
		switch opcode & 0x00FF {
		case 0x009E:
			// EX9E - Skips the next instruction if the key stored in VX is pressed
			return skprInstruction

		case 0x00A1:
			// EXA1 - Skips the next instruction if the key stored in VX isn't pressed
			return skupInstruction
		}

	case 0xF000:
		switch opcode & 0x00FF {
		case 0x0007:
			// FX07 - Sets VX to the value of the delay timer
			return gdelayInstruction

		case 0x000A:
			// FX0A - A key press is awaited, and then stored in VX
			return keyInstruction

		case 0x0015:
			// FX15 - Sets the delay timer to VX
			return sdelayInstruction

		case 0x0018:
			// FX18 - Sets the sound timer to VX
			return ssoundInstruction

		case 0x001E:
			// FX1E - Adds VX to I
			return adiInstruction

		case 0x0029:
			// FX29 - Sets I to the location of the font sprite for the
			// hexadecimal character in VX
			return fontInstruction

		case 0x0033:
			// FX33 - Stores the binary-coded decimal representation of VX
			// at the addresses I, I plus 1, and I plus 2
			return bcdInstruction

		case 0x0055:
			// FX55 - Stores V0 to VX in memory starting at address I
			return strInstruction

		case 0x0065:
			// FX65 - Reads memory starting at address I into V0...VX
			return ldrInstruction
		}
	}

	return unknownInstruction
}

var (
	// 00e0	cls	clear the screen
	clsInstruction = instruction{
		Name: func(opcode uint16) string {
			return "cls"
		},
		Execute: func(m *Machine, opcode uint16) error {
			for i := range m.gfx {
				m.gfx[i] = 0
			}
			m.drawn = true
			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 00ee	rts	return from subroutine call
	rtsInstruction = instruction{
		Name: func(opcode uint16) string {
			return "rts"
		},
		Execute: func(m *Machine, opcode uint16) error {
			addr, err := m.regs.Pop()
			if err != nil {
				return err
			}
			m.regs.PC = addr
			return nil
		},
	}

	// 1xxx	jmp xxx	jump to address xxx
	jmpInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("jmp 0x%03x", opcode&0x0FFF)
		},
		Execute: func(m *Machine, opcode uint16) error {
			m.regs.PC = opcode & 0x0FFF
			return nil
		},
	}

	// 2xxx	jsr xxx	jump to subroutine at address xxx
	jsrInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("jsr 0x%03x", opcode&0x0FFF)
		},
		Execute: func(m *Machine, opcode uint16) error {
			// The pushed address is the instruction after the call.
			if err := m.regs.Push(m.regs.PC + InstructionSize); err != nil {
				return err
			}
			m.regs.PC = opcode & 0x0FFF
			return nil
		},
	}

	// 3rxx	skeq vr,xx	skip if register r = constant
	skeq1Instruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			y := uint8(opcode & 0x00FF)

			return fmt.Sprintf("skeq v%x, %d", vX, y)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			x := m.regs.V[vX]
			y := uint8(opcode & 0x00FF)

			if x == y {
				m.regs.PC += 2 * InstructionSize
			} else {
				m.regs.PC += InstructionSize
			}

			return nil
		},
	}

	// 4rxx	skne vr,xx	skip if register r <> constant
	skne1Instruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			y := uint8(opcode & 0x00FF)

			return fmt.Sprintf("skne v%x, %d", vX, y)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			x := m.regs.V[vX]
			y := uint8(opcode & 0x00FF)

			if x != y {
				m.regs.PC += 2 * InstructionSize
			} else {
				m.regs.PC += InstructionSize
			}

			return nil
		},
	}

	// 5ry0	skeq vr,vy	skip if register r = register y
	skeq2Instruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("skeq v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			if m.regs.V[vX] == m.regs.V[vY] {
				m.regs.PC += 2 * InstructionSize
			} else {
				m.regs.PC += InstructionSize
			}

			return nil
		},
	}

	// 6rxx	mov vr,xx	move constant to register r
	mov1Instruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			y := uint8(opcode & 0x00FF)

			return fmt.Sprintf("mov v%x, %d", vX, y)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			y := uint8(opcode & 0x00FF)

			m.regs.V[vX] = y

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 7rxx	add vr,xx	add constant to register r, no carry generated
	add1Instruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			y := uint8(opcode & 0x00FF)

			return fmt.Sprintf("add v%x, %d", vX, y)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			y := uint8(opcode & 0x00FF)

			m.regs.V[vX] += y

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8ry0	mov vr,vy	move register vy into vr
	mov2Instruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("mov v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			m.regs.V[vX] = m.regs.V[vY]

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8ry1	or vr,vy	or register vy into register vx
	orInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("or v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			m.regs.V[vX] |= m.regs.V[vY]

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8ry2	and vr,vy	and register vy into register vx
	andInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("and v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			m.regs.V[vX] &= m.regs.V[vY]

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8ry3	xor vr,vy	exclusive or register vy into register vx
	xorInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("xor v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			m.regs.V[vX] ^= m.regs.V[vY]

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8ry4	add vr,vy	add register vy to vr, carry in vf
	add2Instruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("add v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4
			sum := uint16(m.regs.V[vX]) + uint16(m.regs.V[vY])

			m.regs.V[vX] = uint8(sum)
			if sum > 0xFF {
				m.regs.V[0x0F] = 1
			} else {
				m.regs.V[0x0F] = 0
			}

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8ry5	sub vr,vy	subtract register vy from vr, vf set to 1 if no borrow
	subInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("sub v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4
			x := m.regs.V[vX]
			y := m.regs.V[vY]

			m.regs.V[vX] = x - y
			if x >= y {
				m.regs.V[0x0F] = 1
			} else {
				m.regs.V[0x0F] = 0
			}

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8r06	shr vr	shift register vr right, bit 0 goes into register vf
	shrInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8

			return fmt.Sprintf("shr v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			src := m.regs.V[vX]
			if m.quirks.ShiftUsesVY {
				src = m.regs.V[(opcode&0x00F0)>>4]
			}

			m.regs.V[vX] = src >> 1
			m.regs.V[0x0F] = src & 0x1

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8ry7	rsb vr,vy	subtract register vr from register vy, result in vr
	rsbInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("rsb v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4
			x := m.regs.V[vX]
			y := m.regs.V[vY]

			m.regs.V[vX] = y - x
			if y >= x {
				m.regs.V[0x0F] = 1
			} else {
				m.regs.V[0x0F] = 0
			}

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 8r0e	shl vr	shift register vr left, bit 7 goes into register vf
	shlInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8

			return fmt.Sprintf("shl v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			src := m.regs.V[vX]
			if m.quirks.ShiftUsesVY {
				src = m.regs.V[(opcode&0x00F0)>>4]
			}

			m.regs.V[vX] = src << 1
			m.regs.V[0x0F] = src >> 7

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// 9ry0	skne vr,vy	skip if register r <> register y
	skne2Instruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			return fmt.Sprintf("skne v%x, v%x", vX, vY)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4

			if m.regs.V[vX] != m.regs.V[vY] {
				m.regs.PC += 2 * InstructionSize
			} else {
				m.regs.PC += InstructionSize
			}

			return nil
		},
	}

	// axxx	mvi xxx	load index register with constant xxx
	mviInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("mvi 0x%03x", opcode&0x0FFF)
		},
		Execute: func(m *Machine, opcode uint16) error {
			m.regs.I = opcode & 0x0FFF
			m.regs.PC += InstructionSize

			return nil
		},
	}

	// bxxx	jmi xxx	jump to address xxx+register v0
	jmiInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("jmi 0x%03x", opcode&0x0FFF)
		},
		Execute: func(m *Machine, opcode uint16) error {
			m.regs.PC = (opcode & 0x0FFF) + uint16(m.regs.V[0])
			return nil
		},
	}

	// crxx	rand vr,xx	vr = random byte masked with xx
	randInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			mask := uint8(opcode & 0x00FF)
			return fmt.Sprintf("rand v%x, %d", vX, mask)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			mask := uint8(opcode & 0x00FF)

			m.regs.V[vX] = uint8(m.rng.IntN(256)) & mask
			m.regs.PC += InstructionSize

			return nil
		},
	}

	// drys	sprite vr,vy,s	draw sprite at screen location vr,vy height s
	// Sprites stored in memory at location in index register, 8 bits wide.
	// Drawing is xor drawing: it toggles the screen pixels, and vf is set
	// to 1 if any pixel is cleared. Sprites wrap around the screen edges
	// unless the clip quirk is enabled.
	spriteInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4
			height := opcode & 0x000F
			return fmt.Sprintf("sprite v%x, v%x, %d", vX, vY, height)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			vY := (opcode & 0x00F0) >> 4
			height := opcode & 0x000F

			if int(m.regs.I)+int(height) > MemorySize {
				return fmt.Errorf("%w: sprite read at 0x%04x height %d", ErrOutOfBounds, m.regs.I, height)
			}

			xLocation := uint16(m.regs.V[vX]) % ScreenWidth
			yLocation := uint16(m.regs.V[vY]) % ScreenHeight

			collision := uint8(0)
			for y := uint16(0); y < height; y++ {
				row, err := m.mem.Read8(m.regs.I + y)
				if err != nil {
					return err
				}

				for x := uint16(0); x < 8; x++ {
					mask := uint8(0x80 >> x)
					if row&mask == 0 {
						continue
					}

					px := xLocation + x
					py := yLocation + y
					if m.quirks.ClipSprites && (px >= ScreenWidth || py >= ScreenHeight) {
						continue
					}
					px %= ScreenWidth
					py %= ScreenHeight

					addr := py*ScreenWidth + px
					if m.gfx[addr] != 0 {
						collision = 1
					}
					m.gfx[addr] ^= 1
				}
			}

			m.regs.V[0x0F] = collision
			m.drawn = true
			m.regs.PC += InstructionSize

			return nil
		},
	}

	// er9e	skpr r	skip if key (register r) pressed
	skprInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("skpr v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			key := m.regs.V[vX] & 0x0F

			if m.keys[key] {
				m.regs.PC += 2 * InstructionSize
			} else {
				m.regs.PC += InstructionSize
			}

			return nil
		},
	}

	// era1	skup r	skip if key (register r) not pressed
	skupInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("skup v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			key := m.regs.V[vX] & 0x0F

			if !m.keys[key] {
				m.regs.PC += 2 * InstructionSize
			} else {
				m.regs.PC += InstructionSize
			}

			return nil
		},
	}

	// fr07	gdelay vr	get delay timer into vr
	gdelayInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("gdelay v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8

			m.regs.V[vX] = m.regs.Delay
			m.regs.PC += InstructionSize
			return nil
		},
	}

	// fr0a	key vr	wait for keypress, put key in register vr
	keyInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("key v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8

			// Suspend without advancing PC; the next Step completes the
			// store once the input latch shows a pressed key.
			m.waiting = true
			m.waitReg = uint8(vX)
			m.pollWaitKey()
			return nil
		},
	}

	// fr15	sdelay vr	set the delay timer to vr
	sdelayInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("sdelay v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8

			m.regs.Delay = m.regs.V[vX]
			m.regs.PC += InstructionSize
			return nil
		},
	}

	// fr18	ssound vr	set the sound timer to vr
	ssoundInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("ssound v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8

			m.regs.Sound = m.regs.V[vX]
			m.regs.PC += InstructionSize
			return nil
		},
	}

	// fr1e	adi vr	add register vr to the index register
	adiInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("adi v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			sum := m.regs.I + uint16(m.regs.V[vX])

			if m.quirks.IndexOverflowFlag {
				if sum > 0x0FFF {
					m.regs.V[0x0F] = 1
				} else {
					m.regs.V[0x0F] = 0
				}
			}

			m.regs.I = sum
			m.regs.PC += InstructionSize
			return nil
		},
	}

	// fr29	font vr	point I to the sprite for hexadecimal character in vr
	fontInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("font v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			digit := uint16(m.regs.V[vX] & 0x0F)

			m.regs.I = fontStart + digit*fontSpriteSize
			m.regs.PC += InstructionSize
			return nil
		},
	}

	// fr33	bcd vr	store the bcd representation of vr at I,I+1,I+2
	bcdInstruction = instruction{
		Name: func(opcode uint16) string {
			vX := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("bcd v%x", vX)
		},
		Execute: func(m *Machine, opcode uint16) error {
			vX := (opcode & 0x0F00) >> 8
			x := m.regs.V[vX]

			if int(m.regs.I)+3 > MemorySize {
				return fmt.Errorf("%w: bcd write at 0x%04x", ErrOutOfBounds, m.regs.I)
			}

			m.mem.bytes[m.regs.I] = x / 100
			m.mem.bytes[m.regs.I+1] = (x / 10) % 10
			m.mem.bytes[m.regs.I+2] = x % 10
			m.regs.PC += InstructionSize
			return nil
		},
	}

	// fr55	str v0-vr	store registers v0-vr at location I onwards
	strInstruction = instruction{
		Name: func(opcode uint16) string {
			n := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("str %d", n)
		},
		Execute: func(m *Machine, opcode uint16) error {
			n := (opcode & 0x0F00) >> 8

			if int(m.regs.I)+int(n)+1 > MemorySize {
				return fmt.Errorf("%w: register store at 0x%04x", ErrOutOfBounds, m.regs.I)
			}

			for i := uint16(0); i <= n; i++ {
				m.mem.bytes[m.regs.I+i] = m.regs.V[i]
			}

			// On the original interpreter, I = I + X + 1 afterwards.
			if !m.quirks.KeepIndexOnBulk {
				m.regs.I += n + 1
			}

			m.regs.PC += InstructionSize
			return nil
		},
	}

	// fr65	ldr v0-vr	load registers v0-vr from location I onwards
	ldrInstruction = instruction{
		Name: func(opcode uint16) string {
			n := (opcode & 0x0F00) >> 8
			return fmt.Sprintf("ldr %d", n)
		},
		Execute: func(m *Machine, opcode uint16) error {
			n := (opcode & 0x0F00) >> 8

			if int(m.regs.I)+int(n)+1 > MemorySize {
				return fmt.Errorf("%w: register load at 0x%04x", ErrOutOfBounds, m.regs.I)
			}

			for i := uint16(0); i <= n; i++ {
				m.regs.V[i] = m.mem.bytes[m.regs.I+i]
			}

			// On the original interpreter, I = I + X + 1 afterwards.
			if !m.quirks.KeepIndexOnBulk {
				m.regs.I += n + 1
			}

			m.regs.PC += InstructionSize
			return nil
		},
	}

	unknownInstruction = instruction{
		Name: func(opcode uint16) string {
			return fmt.Sprintf("dw 0x%04x", opcode)
		},
		Execute: func(m *Machine, opcode uint16) error {
			return fmt.Errorf("%w: 0x%04X", ErrUnknownInstruction, opcode)
		},
	}
)
