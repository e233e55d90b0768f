package opcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		b0   byte
		b1   byte
		want Opcode
	}{
		{"clear screen", 0x00, 0xE0, Opcode{Kind: ClearScreen}},
		{"return", 0x00, 0xEE, Opcode{Kind: Return}},
		{"machine code routine catch-all", 0x02, 0x34, Opcode{Kind: CallMachineCodeRoutine, NNN: 0x234}},
		{"machine code routine near literals", 0x00, 0xE1, Opcode{Kind: CallMachineCodeRoutine, NNN: 0x0E1}},
		{"goto", 0x1A, 0xBC, Opcode{Kind: Goto, NNN: 0xABC}},
		{"call subroutine", 0x23, 0x00, Opcode{Kind: CallSubroutine, NNN: 0x300}},
		{"skip if equal", 0x3A, 0x42, Opcode{Kind: SkipInstructionIfEqual, X: 0xA, NN: 0x42}},
		{"skip if not equal", 0x4F, 0xFF, Opcode{Kind: SkipInstructionIfNotEqual, X: 0xF, NN: 0xFF}},
		{"skip if registers equal", 0x51, 0x20, Opcode{Kind: SkipInstructionIfRegistersEqual, X: 0x1, Y: 0x2}},
		{"set register", 0x6C, 0x08, Opcode{Kind: SetRegister, X: 0xC, NN: 0x08}},
		{"add to register", 0x70, 0x99, Opcode{Kind: AddToRegister, X: 0x0, NN: 0x99}},
		{"copy registers", 0x81, 0x20, Opcode{Kind: CopyRegisters, X: 0x1, Y: 0x2}},
		{"or registers", 0x81, 0x21, Opcode{Kind: OrRegisters, X: 0x1, Y: 0x2}},
		{"and registers", 0x81, 0x22, Opcode{Kind: AndRegisters, X: 0x1, Y: 0x2}},
		{"xor registers", 0x81, 0x23, Opcode{Kind: XorRegisters, X: 0x1, Y: 0x2}},
		{"add registers", 0x81, 0x24, Opcode{Kind: AddRegisters, X: 0x1, Y: 0x2}},
		{"subtract registers", 0x81, 0x25, Opcode{Kind: SubtractRegisters, X: 0x1, Y: 0x2}},
		{"shift right", 0x81, 0x26, Opcode{Kind: ShiftRegisterRight, X: 0x1, Y: 0x2}},
		{"subtract reversed", 0x81, 0x27, Opcode{Kind: SubtractRegistersReversed, X: 0x1, Y: 0x2}},
		{"shift left", 0x81, 0x2E, Opcode{Kind: ShiftRegisterLeft, X: 0x1, Y: 0x2}},
		{"skip if registers not equal", 0x9D, 0xE0, Opcode{Kind: SkipInstructionIfRegistersNotEqual, X: 0xD, Y: 0xE}},
		{"set memory address", 0xA2, 0xF0, Opcode{Kind: SetMemoryAddress, NNN: 0x2F0}},
		{"jump plus v0", 0xB1, 0x23, Opcode{Kind: JumpToMemoryAddress, NNN: 0x123}},
		{"random", 0xC4, 0x7F, Opcode{Kind: SetRegisterRandom, X: 0x4, NN: 0x7F}},
		{"draw sprite", 0xD1, 0x2F, Opcode{Kind: DrawSprite, X: 0x1, Y: 0x2, N: 0xF}},
		{"skip if key down", 0xE3, 0x9E, Opcode{Kind: SkipInstructionIfKeyDown, X: 0x3}},
		{"skip if key up", 0xE3, 0xA1, Opcode{Kind: SkipInstructionIfKeyUp, X: 0x3}},
		{"store delay timer", 0xF5, 0x07, Opcode{Kind: StoreDelayTimerToRegister, X: 0x5}},
		{"halt for keypress", 0xF5, 0x0A, Opcode{Kind: HaltAndStoreKeypressIntoRegister, X: 0x5}},
		{"set delay timer", 0xF5, 0x15, Opcode{Kind: SetDelayTimerToRegister, X: 0x5}},
		{"set sound timer", 0xF5, 0x18, Opcode{Kind: SetSoundTimerToRegister, X: 0x5}},
		{"add register to address", 0xF5, 0x1E, Opcode{Kind: AddRegisterToMemoryAddress, X: 0x5}},
		{"font sprite address", 0xF5, 0x29, Opcode{Kind: SetMemoryAddressToSpriteFromRegister, X: 0x5}},
		{"bcd store", 0xF5, 0x33, Opcode{Kind: SetMemoryAddressToBinaryEncodedDecimalFromRegister, X: 0x5}},
		{"register dump", 0xF5, 0x55, Opcode{Kind: DumpRegistersIntoMemoryUpToRegister, X: 0x5}},
		{"register load", 0xF5, 0x65, Opcode{Kind: DumpMemoryIntoRegistersUpToRegister, X: 0x5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := Decode(tt.b0, tt.b1)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestDecodeUnsupported(t *testing.T) {
	tests := []struct {
		name string
		b0   byte
		b1   byte
	}{
		{"5xy with nonzero low nibble", 0x51, 0x21},
		{"9xy with nonzero low nibble", 0x91, 0x23},
		{"8xy with unknown operation", 0x81, 0x28},
		{"Ex with unknown low byte", 0xE1, 0x00},
		{"Fx with unknown low byte", 0xF1, 0x99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.b0, tt.b1)
			assert.Error(t, err)

			var unsupported *UnsupportedError
			assert.True(t, errors.As(err, &unsupported))
			assert.Equal(t, [4]byte{tt.b0 >> 4, tt.b0 & 0x0F, tt.b1 >> 4, tt.b1 & 0x0F}, unsupported.Nibbles)
		})
	}
}

// Every decodable instruction word must re-encode to its original bytes.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	decodable := 0
	for word := 0; word < 0x10000; word++ {
		b0 := byte(word >> 8)
		b1 := byte(word)

		op, err := Decode(b0, b1)
		if err != nil {
			continue
		}
		decodable++

		e0, e1 := op.Encode()
		if e0 != b0 || e1 != b1 {
			t.Fatalf("0x%02X%02X decoded to %v but re-encoded to 0x%02X%02X", b0, b1, op, e0, e1)
		}

		again, err := Decode(e0, e1)
		assert.NoError(t, err)
		assert.Equal(t, op, again)
	}
	// 0x0000-0x0FFF alone contribute 4096 decodable words; a low total
	// would mean the dispatch table lost patterns.
	assert.True(t, decodable > 4096)
}

func TestDecodeAll(t *testing.T) {
	rom := []byte{0x00, 0xE0, 0xA2, 0xF0, 0x12, 0x00}

	ops, err := DecodeAll(rom)
	assert.NoError(t, err)
	assert.Len(t, ops, 3)
	assert.Equal(t, Opcode{Kind: ClearScreen}, ops[0])
	assert.Equal(t, Opcode{Kind: SetMemoryAddress, NNN: 0x2F0}, ops[1])
	assert.Equal(t, Opcode{Kind: Goto, NNN: 0x200}, ops[2])
}

func TestDecodeAllOddLength(t *testing.T) {
	_, err := DecodeAll([]byte{0x00, 0xE0, 0x12})
	assert.Error(t, err)

	var truncated *TruncatedError
	assert.True(t, errors.As(err, &truncated))
	assert.Equal(t, 2, truncated.Offset)
}

func TestDecodeAllUnsupported(t *testing.T) {
	_, err := DecodeAll([]byte{0x00, 0xE0, 0x51, 0x21})
	assert.Error(t, err)
	assert.ErrorContains(t, err, "rom offset 2")
}

func TestDecodeAllEmpty(t *testing.T) {
	ops, err := DecodeAll(nil)
	assert.NoError(t, err)
	assert.Len(t, ops, 0)
}

func TestString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{Opcode{Kind: ClearScreen}, "cls"},
		{Opcode{Kind: Return}, "ret"},
		{Opcode{Kind: CallMachineCodeRoutine, NNN: 0x234}, "sys 0x234"},
		{Opcode{Kind: Goto, NNN: 0x200}, "jp 0x200"},
		{Opcode{Kind: CallSubroutine, NNN: 0x300}, "call 0x300"},
		{Opcode{Kind: SkipInstructionIfEqual, X: 0xA, NN: 0x42}, "se vA, 0x42"},
		{Opcode{Kind: SetRegister, X: 0x1, NN: 0x08}, "ld v1, 0x08"},
		{Opcode{Kind: AddRegisters, X: 0x1, Y: 0x2}, "add v1, v2"},
		{Opcode{Kind: ShiftRegisterRight, X: 0x1, Y: 0x2}, "shr v1"},
		{Opcode{Kind: SetMemoryAddress, NNN: 0x2F0}, "ld i, 0x2F0"},
		{Opcode{Kind: JumpToMemoryAddress, NNN: 0x123}, "jp v0, 0x123"},
		{Opcode{Kind: DrawSprite, X: 0x1, Y: 0x2, N: 0x5}, "drw v1, v2, 5"},
		{Opcode{Kind: SkipInstructionIfKeyDown, X: 0x3}, "skp v3"},
		{Opcode{Kind: HaltAndStoreKeypressIntoRegister, X: 0x5}, "ld v5, k"},
		{Opcode{Kind: DumpRegistersIntoMemoryUpToRegister, X: 0x5}, "ld [i], v5"},
		{Opcode{Kind: DumpMemoryIntoRegistersUpToRegister, X: 0x5}, "ld v5, [i]"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestErrorMessages(t *testing.T) {
	unsupported := &UnsupportedError{Nibbles: [4]byte{0x5, 0x1, 0x2, 0x1}}
	assert.Equal(t, "unsupported instruction: 0x5121", unsupported.Error())

	truncated := &TruncatedError{Offset: 8}
	assert.Equal(t, fmt.Sprintf("malformed rom: incomplete instruction at byte offset %d", 8), truncated.Error())
}
