package chip8

import (
	"errors"
	"math/rand"
	"time"
)

// system memory map
// 0x000-0x1FF - reserved for the interpreter
// 0x050-0x09F - built in 4x5 pixel font set (0-F)
// 0x200-0xFFF - program ROM and work RAM

// Chip-8 used to be implemented on 4k systems like the Telmac 1800 and Cosmac VIP where the chip-8 interpreter
// itself occupied the first 512 bytes of memory (up to 0x200). The interpreter here runs natively outside the
// 4K space, so the low region only carries the font set, installed at the conventional 0x050 slot.

const (
	memorySize   = 4096
	programStart = 0x200
	maxROMSize   = memorySize - programStart
	fontOffset   = 0x050
	stackDepth   = 16

	// DisplayWidth and DisplayHeight are the fixed monochrome framebuffer
	// dimensions in pixels.
	DisplayWidth  = 64
	DisplayHeight = 32

	// NumKeys is the size of the hex keypad.
	NumKeys = 16

	timerInterval = time.Second / 60 // delay/sound timers tick at 60 Hz
)

// Status reports the outcome of a successful Update. CHIP-8 has no halt
// instruction and well-formed ROMs loop forever, so Working is the only
// value; the run ends by driver stop or by error.
type Status int

// Working means the VM executed one cycle and can take another.
const Working Status = iota

// Execution and load errors. Any of these is fatal to the current run.
var (
	ErrROMTooLarge       = errors.New("rom too large: max size 3584 bytes")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
)

// fontSet holds the 4x5 bitmap glyphs for hex digits 0-F, 5 bytes per glyph.
// Fx29 resolves a digit to its glyph address inside this region.
var fontSet = [80]byte{
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

// VM is the chip-8 virtual machine: memory, registers, stack, timers, input
// vector, and framebuffer. It is the sole mutator of this state and is not
// safe for concurrent use.
type VM struct {
	memory     [memorySize]byte
	v          [16]byte // V0-VF; VF doubles as the carry/borrow/collision flag
	i          uint16   // index register
	pc         uint16   // program counter
	stack      [stackDepth]uint16
	sp         uint16 // number of occupied stack slots
	gfx        [DisplayWidth * DisplayHeight]byte
	delayTimer byte
	soundTimer byte
	input      [NumKeys]byte // pressed state per key, written by the input collaborator
	drawFlag   bool

	// Fx0A key-wait state. While waitingForKey is set, Update only watches
	// the input vector for a key-down edge against waitInput.
	waitingForKey bool
	waitReg       byte
	waitInput     [NumKeys]byte

	timerRemainder time.Duration
	rng            *rand.Rand
}

// New returns a VM with the font set installed and the program counter at
// the standard 0x200 origin. No ROM is loaded yet.
func New() *VM {
	vm := VM{pc: programStart, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	copy(vm.memory[fontOffset:], fontSet[:])
	return &vm
}

// Load copies a ROM verbatim into memory at 0x200 and resets the program
// counter there. ROMs past the remaining address space fail with
// ErrROMTooLarge; reading the ROM bytes from disk is the caller's concern.
func (vm *VM) Load(rom []byte) error {
	if len(rom) > maxROMSize {
		return ErrROMTooLarge
	}
	copy(vm.memory[programStart:], rom)
	vm.pc = programStart
	return nil
}

// Graphics returns a copy of the 64x32 framebuffer, row-major, one byte per
// pixel holding 0 or 1.
func (vm *VM) Graphics() [DisplayWidth * DisplayHeight]byte {
	return vm.gfx
}

// DrawFlag reports whether the last Update changed the framebuffer.
func (vm *VM) DrawFlag() bool {
	return vm.drawFlag
}

// SetKeyDown marks key k (0x0-0xF) as pressed.
func (vm *VM) SetKeyDown(k byte) {
	vm.input[k&0xF] = 1
}

// SetKeyUp marks key k (0x0-0xF) as released.
func (vm *VM) SetKeyUp(k byte) {
	vm.input[k&0xF] = 0
}

// AwaitingKeypress reports whether the VM is suspended on an Fx0A key wait.
func (vm *VM) AwaitingKeypress() bool {
	return vm.waitingForKey
}

// DelayTimer returns the current delay timer value.
func (vm *VM) DelayTimer() byte {
	return vm.delayTimer
}

// SoundTimer returns the current sound timer value.
func (vm *VM) SoundTimer() byte {
	return vm.soundTimer
}

// PC returns the current program counter, for diagnostics.
func (vm *VM) PC() uint16 {
	return vm.pc
}

// AddTime feeds elapsed wall-clock time into the timer logic. Both timers
// decrement once per 1/60s of accumulated time, independent of how fast the
// driver calls Update.
func (vm *VM) AddTime(d time.Duration) {
	vm.timerRemainder += d
	for vm.timerRemainder >= timerInterval {
		vm.timerRemainder -= timerInterval
		if vm.delayTimer > 0 {
			vm.delayTimer--
		}
		if vm.soundTimer > 0 {
			vm.soundTimer--
		}
	}
}
