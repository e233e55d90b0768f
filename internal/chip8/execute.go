package chip8

import (
	"fmt"

	"github.com/bradford-hamilton/gr8/internal/opcode"
)

// Update runs one fetch-decode-execute cycle. The program counter is
// advanced by 2 right after decoding, before the instruction executes, so
// jumps and calls fully override it and conditional skips add their own +2
// on top. While the VM is awaiting a keypress no fetch happens; the cycle
// only watches the input vector for a key-down edge.
func (vm *VM) Update() (Status, error) {
	vm.drawFlag = false

	if vm.waitingForKey {
		vm.pollKeypress()
		return Working, nil
	}

	if int(vm.pc)+1 >= memorySize {
		return Working, fmt.Errorf("instruction fetch at 0x%03X: %w", vm.pc, ErrMemoryOutOfBounds)
	}
	op, err := opcode.Decode(vm.memory[vm.pc], vm.memory[vm.pc+1])
	if err != nil {
		return Working, fmt.Errorf("instruction at 0x%03X: %w", vm.pc, err)
	}

	vm.pc += 2
	if err := vm.execute(op); err != nil {
		return Working, err
	}
	return Working, nil
}

func (vm *VM) execute(op opcode.Opcode) error {
	switch op.Kind {
	case opcode.CallMachineCodeRoutine:
		// RCA 1802 routines only exist on the original hardware.
		b0, b1 := op.Encode()
		return &opcode.UnsupportedError{Nibbles: [4]byte{b0 >> 4, b0 & 0x0F, b1 >> 4, b1 & 0x0F}}
	case opcode.ClearScreen:
		vm.gfx = [DisplayWidth * DisplayHeight]byte{}
		vm.drawFlag = true
	case opcode.Return:
		if vm.sp == 0 {
			return ErrStackUnderflow
		}
		vm.sp--
		vm.pc = vm.stack[vm.sp]
	case opcode.Goto:
		vm.pc = op.NNN
	case opcode.CallSubroutine:
		if vm.sp == stackDepth {
			return ErrStackOverflow
		}
		vm.stack[vm.sp] = vm.pc
		vm.sp++
		vm.pc = op.NNN
	case opcode.SkipInstructionIfEqual:
		if vm.v[op.X] == op.NN {
			vm.pc += 2
		}
	case opcode.SkipInstructionIfNotEqual:
		if vm.v[op.X] != op.NN {
			vm.pc += 2
		}
	case opcode.SkipInstructionIfRegistersEqual:
		if vm.v[op.X] == vm.v[op.Y] {
			vm.pc += 2
		}
	case opcode.SetRegister:
		vm.v[op.X] = op.NN
	case opcode.AddToRegister:
		vm.v[op.X] += op.NN // wrapping add, VF untouched
	case opcode.CopyRegisters:
		vm.v[op.X] = vm.v[op.Y]
	case opcode.OrRegisters:
		vm.v[op.X] |= vm.v[op.Y]
	case opcode.AndRegisters:
		vm.v[op.X] &= vm.v[op.Y]
	case opcode.XorRegisters:
		vm.v[op.X] ^= vm.v[op.Y]
	case opcode.AddRegisters:
		sum := uint16(vm.v[op.X]) + uint16(vm.v[op.Y])
		vm.v[op.X] = byte(sum)
		// VF is written last so the flag wins when X is 0xF.
		if sum > 0xFF {
			vm.v[0xF] = 1
		} else {
			vm.v[0xF] = 0
		}
	case opcode.SubtractRegisters:
		// VF is 1 when no borrow occurs.
		noBorrow := vm.v[op.X] >= vm.v[op.Y]
		vm.v[op.X] -= vm.v[op.Y]
		vm.v[0xF] = flag(noBorrow)
	case opcode.ShiftRegisterRight:
		lsb := vm.v[op.X] & 0x01
		vm.v[op.X] >>= 1
		vm.v[0xF] = lsb
	case opcode.SubtractRegistersReversed:
		noBorrow := vm.v[op.Y] >= vm.v[op.X]
		vm.v[op.X] = vm.v[op.Y] - vm.v[op.X]
		vm.v[0xF] = flag(noBorrow)
	case opcode.ShiftRegisterLeft:
		msb := vm.v[op.X] >> 7
		vm.v[op.X] <<= 1
		vm.v[0xF] = msb
	case opcode.SkipInstructionIfRegistersNotEqual:
		if vm.v[op.X] != vm.v[op.Y] {
			vm.pc += 2
		}
	case opcode.SetMemoryAddress:
		vm.i = op.NNN
	case opcode.JumpToMemoryAddress:
		vm.pc = op.NNN + uint16(vm.v[0])
	case opcode.SetRegisterRandom:
		vm.v[op.X] = byte(vm.rng.Intn(256)) & op.NN
	case opcode.DrawSprite:
		return vm.drawSprite(op.X, op.Y, op.N)
	case opcode.SkipInstructionIfKeyDown:
		if vm.input[vm.v[op.X]&0xF] != 0 {
			vm.pc += 2
		}
	case opcode.SkipInstructionIfKeyUp:
		if vm.input[vm.v[op.X]&0xF] == 0 {
			vm.pc += 2
		}
	case opcode.StoreDelayTimerToRegister:
		vm.v[op.X] = vm.delayTimer
	case opcode.HaltAndStoreKeypressIntoRegister:
		// Suspend fetching until a key-down edge; keys already held when the
		// wait begins do not satisfy it.
		vm.waitingForKey = true
		vm.waitReg = op.X
		vm.waitInput = vm.input
	case opcode.SetDelayTimerToRegister:
		vm.delayTimer = vm.v[op.X]
	case opcode.SetSoundTimerToRegister:
		vm.soundTimer = vm.v[op.X]
	case opcode.AddRegisterToMemoryAddress:
		vm.i += uint16(vm.v[op.X]) // wrapping add, VF untouched
	case opcode.SetMemoryAddressToSpriteFromRegister:
		vm.i = fontOffset + 5*uint16(vm.v[op.X]&0xF)
	case opcode.SetMemoryAddressToBinaryEncodedDecimalFromRegister:
		if int(vm.i)+2 >= memorySize {
			return fmt.Errorf("bcd store at 0x%X: %w", vm.i, ErrMemoryOutOfBounds)
		}
		vm.memory[vm.i] = vm.v[op.X] / 100
		vm.memory[vm.i+1] = (vm.v[op.X] / 10) % 10
		vm.memory[vm.i+2] = vm.v[op.X] % 10
	case opcode.DumpRegistersIntoMemoryUpToRegister:
		// I itself is left unmodified.
		for r := 0; r <= int(op.X); r++ {
			addr := int(vm.i) + r
			if addr >= memorySize {
				return fmt.Errorf("register dump at 0x%X: %w", addr, ErrMemoryOutOfBounds)
			}
			vm.memory[addr] = vm.v[r]
		}
	case opcode.DumpMemoryIntoRegistersUpToRegister:
		for r := 0; r <= int(op.X); r++ {
			addr := int(vm.i) + r
			if addr >= memorySize {
				return fmt.Errorf("register load at 0x%X: %w", addr, ErrMemoryOutOfBounds)
			}
			vm.v[r] = vm.memory[addr]
		}
	}
	return nil
}

// drawSprite XOR-blits height rows of 8 pixels from memory at I onto the
// framebuffer at (V[rx], V[ry]). The origin wraps at the display edges,
// drawn pixels clip at the right and bottom. VF reports collision: 1 if any
// set pixel was flipped off.
func (vm *VM) drawSprite(rx, ry, height byte) error {
	x := int(vm.v[rx]) % DisplayWidth
	y := int(vm.v[ry]) % DisplayHeight
	vm.v[0xF] = 0

	for row := 0; row < int(height); row++ {
		addr := int(vm.i) + row
		if addr >= memorySize {
			return fmt.Errorf("sprite read at 0x%X: %w", addr, ErrMemoryOutOfBounds)
		}
		py := y + row
		if py >= DisplayHeight {
			break
		}
		bits := vm.memory[addr]
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := x + col
			if px >= DisplayWidth {
				continue
			}
			ind := py*DisplayWidth + px
			if vm.gfx[ind] == 1 {
				vm.v[0xF] = 1
			}
			vm.gfx[ind] ^= 1
		}
	}

	vm.drawFlag = true
	return nil
}

// pollKeypress resolves a pending Fx0A wait. A key satisfies the wait only
// on its transition to pressed, observed against the previous input state.
func (vm *VM) pollKeypress() {
	for k := 0; k < NumKeys; k++ {
		if vm.input[k] != 0 && vm.waitInput[k] == 0 {
			vm.v[vm.waitReg] = byte(k)
			vm.waitingForKey = false
			return
		}
	}
	vm.waitInput = vm.input
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
