// Package opcode translates between the 2-byte CHIP-8 instruction encoding
// and a decoded, operand-extracted Opcode value. It is a pure function
// library: no machine state lives here.
package opcode

import "fmt"

// Kind identifies one of the 35 CHIP-8 instructions.
type Kind uint8

// One constant per ISA instruction. Names describe the semantic effect
// rather than the raw mnemonic; String renders mnemonics for display.
const (
	CallMachineCodeRoutine                             Kind = iota // 0nnn
	ClearScreen                                                    // 00E0
	Return                                                         // 00EE
	Goto                                                           // 1nnn
	CallSubroutine                                                 // 2nnn
	SkipInstructionIfEqual                                         // 3xnn
	SkipInstructionIfNotEqual                                      // 4xnn
	SkipInstructionIfRegistersEqual                                // 5xy0
	SetRegister                                                    // 6xnn
	AddToRegister                                                  // 7xnn
	CopyRegisters                                                  // 8xy0
	OrRegisters                                                    // 8xy1
	AndRegisters                                                   // 8xy2
	XorRegisters                                                   // 8xy3
	AddRegisters                                                   // 8xy4
	SubtractRegisters                                              // 8xy5
	ShiftRegisterRight                                             // 8xy6
	SubtractRegistersReversed                                      // 8xy7
	ShiftRegisterLeft                                              // 8xyE
	SkipInstructionIfRegistersNotEqual                             // 9xy0
	SetMemoryAddress                                               // Annn
	JumpToMemoryAddress                                            // Bnnn
	SetRegisterRandom                                              // Cxnn
	DrawSprite                                                     // Dxyn
	SkipInstructionIfKeyDown                                       // Ex9E
	SkipInstructionIfKeyUp                                         // ExA1
	StoreDelayTimerToRegister                                      // Fx07
	HaltAndStoreKeypressIntoRegister                               // Fx0A
	SetDelayTimerToRegister                                        // Fx15
	SetSoundTimerToRegister                                        // Fx18
	AddRegisterToMemoryAddress                                     // Fx1E
	SetMemoryAddressToSpriteFromRegister                           // Fx29
	SetMemoryAddressToBinaryEncodedDecimalFromRegister             // Fx33
	DumpRegistersIntoMemoryUpToRegister                            // Fx55
	DumpMemoryIntoRegistersUpToRegister                            // Fx65
)

// Opcode is one decoded instruction. Operand fields are pre-extracted
// integers; fields a variant does not use stay zero, so two Opcodes compare
// equal with == exactly when they encode to the same bytes.
type Opcode struct {
	Kind Kind
	X    byte   // first register index (0x0-0xF)
	Y    byte   // second register index (0x0-0xF)
	N    byte   // 4-bit immediate (sprite height)
	NN   byte   // 8-bit immediate
	NNN  uint16 // 12-bit address
}

// UnsupportedError reports a nibble pattern outside the 35-instruction set.
// The raw nibbles are kept for diagnostics.
type UnsupportedError struct {
	Nibbles [4]byte
}

func (e *UnsupportedError) Error() string {
	n := e.Nibbles
	return fmt.Sprintf("unsupported instruction: 0x%X%X%X%X", n[0], n[1], n[2], n[3])
}

// TruncatedError reports a ROM whose byte count is odd, leaving a trailing
// half instruction at Offset.
type TruncatedError struct {
	Offset int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("malformed rom: incomplete instruction at byte offset %d", e.Offset)
}

// Decode translates one 2-byte instruction into an Opcode. b0 holds the high
// byte. Patterns not in the instruction table fail with *UnsupportedError.
func Decode(b0, b1 byte) (Opcode, error) {
	n0 := b0 >> 4
	n1 := b0 & 0x0F
	n2 := b1 >> 4
	n3 := b1 & 0x0F

	x := n1
	y := n2
	nn := b1
	nnn := uint16(n1)<<8 | uint16(n2)<<4 | uint16(n3)

	switch n0 {
	case 0x0:
		// Literal matches take priority over the 0nnn catch-all.
		switch {
		case n1 == 0x0 && n2 == 0xE && n3 == 0x0:
			return Opcode{Kind: ClearScreen}, nil
		case n1 == 0x0 && n2 == 0xE && n3 == 0xE:
			return Opcode{Kind: Return}, nil
		default:
			return Opcode{Kind: CallMachineCodeRoutine, NNN: nnn}, nil
		}
	case 0x1:
		return Opcode{Kind: Goto, NNN: nnn}, nil
	case 0x2:
		return Opcode{Kind: CallSubroutine, NNN: nnn}, nil
	case 0x3:
		return Opcode{Kind: SkipInstructionIfEqual, X: x, NN: nn}, nil
	case 0x4:
		return Opcode{Kind: SkipInstructionIfNotEqual, X: x, NN: nn}, nil
	case 0x5:
		if n3 != 0x0 {
			return Opcode{}, &UnsupportedError{Nibbles: [4]byte{n0, n1, n2, n3}}
		}
		return Opcode{Kind: SkipInstructionIfRegistersEqual, X: x, Y: y}, nil
	case 0x6:
		return Opcode{Kind: SetRegister, X: x, NN: nn}, nil
	case 0x7:
		return Opcode{Kind: AddToRegister, X: x, NN: nn}, nil
	case 0x8:
		var kind Kind
		switch n3 {
		case 0x0:
			kind = CopyRegisters
		case 0x1:
			kind = OrRegisters
		case 0x2:
			kind = AndRegisters
		case 0x3:
			kind = XorRegisters
		case 0x4:
			kind = AddRegisters
		case 0x5:
			kind = SubtractRegisters
		case 0x6:
			kind = ShiftRegisterRight
		case 0x7:
			kind = SubtractRegistersReversed
		case 0xE:
			kind = ShiftRegisterLeft
		default:
			return Opcode{}, &UnsupportedError{Nibbles: [4]byte{n0, n1, n2, n3}}
		}
		return Opcode{Kind: kind, X: x, Y: y}, nil
	case 0x9:
		if n3 != 0x0 {
			return Opcode{}, &UnsupportedError{Nibbles: [4]byte{n0, n1, n2, n3}}
		}
		return Opcode{Kind: SkipInstructionIfRegistersNotEqual, X: x, Y: y}, nil
	case 0xA:
		return Opcode{Kind: SetMemoryAddress, NNN: nnn}, nil
	case 0xB:
		return Opcode{Kind: JumpToMemoryAddress, NNN: nnn}, nil
	case 0xC:
		return Opcode{Kind: SetRegisterRandom, X: x, NN: nn}, nil
	case 0xD:
		return Opcode{Kind: DrawSprite, X: x, Y: y, N: n3}, nil
	case 0xE:
		switch b1 {
		case 0x9E:
			return Opcode{Kind: SkipInstructionIfKeyDown, X: x}, nil
		case 0xA1:
			return Opcode{Kind: SkipInstructionIfKeyUp, X: x}, nil
		}
	case 0xF:
		switch b1 {
		case 0x07:
			return Opcode{Kind: StoreDelayTimerToRegister, X: x}, nil
		case 0x0A:
			return Opcode{Kind: HaltAndStoreKeypressIntoRegister, X: x}, nil
		case 0x15:
			return Opcode{Kind: SetDelayTimerToRegister, X: x}, nil
		case 0x18:
			return Opcode{Kind: SetSoundTimerToRegister, X: x}, nil
		case 0x1E:
			return Opcode{Kind: AddRegisterToMemoryAddress, X: x}, nil
		case 0x29:
			return Opcode{Kind: SetMemoryAddressToSpriteFromRegister, X: x}, nil
		case 0x33:
			return Opcode{Kind: SetMemoryAddressToBinaryEncodedDecimalFromRegister, X: x}, nil
		case 0x55:
			return Opcode{Kind: DumpRegistersIntoMemoryUpToRegister, X: x}, nil
		case 0x65:
			return Opcode{Kind: DumpMemoryIntoRegistersUpToRegister, X: x}, nil
		}
	}

	return Opcode{}, &UnsupportedError{Nibbles: [4]byte{n0, n1, n2, n3}}
}

// Encode is the exact inverse of Decode: every decodable Opcode re-encodes
// to its original bytes.
func (op Opcode) Encode() (byte, byte) {
	addr := func(lead byte) (byte, byte) {
		return lead<<4 | byte(op.NNN>>8), byte(op.NNN)
	}
	imm := func(lead byte) (byte, byte) {
		return lead<<4 | op.X, op.NN
	}
	pair := func(lead, tail byte) (byte, byte) {
		return lead<<4 | op.X, op.Y<<4 | tail
	}
	fkind := func(tail byte) (byte, byte) {
		return 0xF0 | op.X, tail
	}

	switch op.Kind {
	case CallMachineCodeRoutine:
		return addr(0x0)
	case ClearScreen:
		return 0x00, 0xE0
	case Return:
		return 0x00, 0xEE
	case Goto:
		return addr(0x1)
	case CallSubroutine:
		return addr(0x2)
	case SkipInstructionIfEqual:
		return imm(0x3)
	case SkipInstructionIfNotEqual:
		return imm(0x4)
	case SkipInstructionIfRegistersEqual:
		return pair(0x5, 0x0)
	case SetRegister:
		return imm(0x6)
	case AddToRegister:
		return imm(0x7)
	case CopyRegisters:
		return pair(0x8, 0x0)
	case OrRegisters:
		return pair(0x8, 0x1)
	case AndRegisters:
		return pair(0x8, 0x2)
	case XorRegisters:
		return pair(0x8, 0x3)
	case AddRegisters:
		return pair(0x8, 0x4)
	case SubtractRegisters:
		return pair(0x8, 0x5)
	case ShiftRegisterRight:
		return pair(0x8, 0x6)
	case SubtractRegistersReversed:
		return pair(0x8, 0x7)
	case ShiftRegisterLeft:
		return pair(0x8, 0xE)
	case SkipInstructionIfRegistersNotEqual:
		return pair(0x9, 0x0)
	case SetMemoryAddress:
		return addr(0xA)
	case JumpToMemoryAddress:
		return addr(0xB)
	case SetRegisterRandom:
		return imm(0xC)
	case DrawSprite:
		return pair(0xD, op.N)
	case SkipInstructionIfKeyDown:
		return 0xE0 | op.X, 0x9E
	case SkipInstructionIfKeyUp:
		return 0xE0 | op.X, 0xA1
	case StoreDelayTimerToRegister:
		return fkind(0x07)
	case HaltAndStoreKeypressIntoRegister:
		return fkind(0x0A)
	case SetDelayTimerToRegister:
		return fkind(0x15)
	case SetSoundTimerToRegister:
		return fkind(0x18)
	case AddRegisterToMemoryAddress:
		return fkind(0x1E)
	case SetMemoryAddressToSpriteFromRegister:
		return fkind(0x29)
	case SetMemoryAddressToBinaryEncodedDecimalFromRegister:
		return fkind(0x33)
	case DumpRegistersIntoMemoryUpToRegister:
		return fkind(0x55)
	case DumpMemoryIntoRegistersUpToRegister:
		return fkind(0x65)
	}
	panic(fmt.Sprintf("opcode: encode called with invalid kind %d", op.Kind))
}

// DecodeAll decodes a whole ROM, two bytes per instruction. A ROM with an
// odd byte count fails with *TruncatedError naming the incomplete offset.
func DecodeAll(rom []byte) ([]Opcode, error) {
	if len(rom)%2 != 0 {
		return nil, &TruncatedError{Offset: len(rom) - 1}
	}
	ops := make([]Opcode, 0, len(rom)/2)
	for i := 0; i < len(rom); i += 2 {
		op, err := Decode(rom[i], rom[i+1])
		if err != nil {
			return nil, fmt.Errorf("rom offset %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// String renders the opcode in conventional CHIP-8 assembler syntax.
func (op Opcode) String() string {
	switch op.Kind {
	case CallMachineCodeRoutine:
		return fmt.Sprintf("sys 0x%03X", op.NNN)
	case ClearScreen:
		return "cls"
	case Return:
		return "ret"
	case Goto:
		return fmt.Sprintf("jp 0x%03X", op.NNN)
	case CallSubroutine:
		return fmt.Sprintf("call 0x%03X", op.NNN)
	case SkipInstructionIfEqual:
		return fmt.Sprintf("se v%X, 0x%02X", op.X, op.NN)
	case SkipInstructionIfNotEqual:
		return fmt.Sprintf("sne v%X, 0x%02X", op.X, op.NN)
	case SkipInstructionIfRegistersEqual:
		return fmt.Sprintf("se v%X, v%X", op.X, op.Y)
	case SetRegister:
		return fmt.Sprintf("ld v%X, 0x%02X", op.X, op.NN)
	case AddToRegister:
		return fmt.Sprintf("add v%X, 0x%02X", op.X, op.NN)
	case CopyRegisters:
		return fmt.Sprintf("ld v%X, v%X", op.X, op.Y)
	case OrRegisters:
		return fmt.Sprintf("or v%X, v%X", op.X, op.Y)
	case AndRegisters:
		return fmt.Sprintf("and v%X, v%X", op.X, op.Y)
	case XorRegisters:
		return fmt.Sprintf("xor v%X, v%X", op.X, op.Y)
	case AddRegisters:
		return fmt.Sprintf("add v%X, v%X", op.X, op.Y)
	case SubtractRegisters:
		return fmt.Sprintf("sub v%X, v%X", op.X, op.Y)
	case ShiftRegisterRight:
		return fmt.Sprintf("shr v%X", op.X)
	case SubtractRegistersReversed:
		return fmt.Sprintf("subn v%X, v%X", op.X, op.Y)
	case ShiftRegisterLeft:
		return fmt.Sprintf("shl v%X", op.X)
	case SkipInstructionIfRegistersNotEqual:
		return fmt.Sprintf("sne v%X, v%X", op.X, op.Y)
	case SetMemoryAddress:
		return fmt.Sprintf("ld i, 0x%03X", op.NNN)
	case JumpToMemoryAddress:
		return fmt.Sprintf("jp v0, 0x%03X", op.NNN)
	case SetRegisterRandom:
		return fmt.Sprintf("rnd v%X, 0x%02X", op.X, op.NN)
	case DrawSprite:
		return fmt.Sprintf("drw v%X, v%X, %d", op.X, op.Y, op.N)
	case SkipInstructionIfKeyDown:
		return fmt.Sprintf("skp v%X", op.X)
	case SkipInstructionIfKeyUp:
		return fmt.Sprintf("sknp v%X", op.X)
	case StoreDelayTimerToRegister:
		return fmt.Sprintf("ld v%X, dt", op.X)
	case HaltAndStoreKeypressIntoRegister:
		return fmt.Sprintf("ld v%X, k", op.X)
	case SetDelayTimerToRegister:
		return fmt.Sprintf("ld dt, v%X", op.X)
	case SetSoundTimerToRegister:
		return fmt.Sprintf("ld st, v%X", op.X)
	case AddRegisterToMemoryAddress:
		return fmt.Sprintf("add i, v%X", op.X)
	case SetMemoryAddressToSpriteFromRegister:
		return fmt.Sprintf("ld f, v%X", op.X)
	case SetMemoryAddressToBinaryEncodedDecimalFromRegister:
		return fmt.Sprintf("ld b, v%X", op.X)
	case DumpRegistersIntoMemoryUpToRegister:
		return fmt.Sprintf("ld [i], v%X", op.X)
	case DumpMemoryIntoRegistersUpToRegister:
		return fmt.Sprintf("ld v%X, [i]", op.X)
	}
	return fmt.Sprintf("invalid kind %d", op.Kind)
}
