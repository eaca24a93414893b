// Package cpu implements the instruction interpreter of the virtual machine.
package cpu

import (
	"bytes"
	"io"

	"gochip8/internal/display"
	"gochip8/internal/input"
	"gochip8/internal/memory"
)

// CPU constants
const (
	// NumRegisters is the number of general purpose registers V0-VF
	NumRegisters = 16
	// FlagRegister is VF, the carry/borrow/collision flag
	FlagRegister = 0xF
	// StackSize is the number of return addresses the call stack holds
	StackSize = 16
	// InstructionSize is the width of every instruction in bytes
	InstructionSize = 2
)

// Tracer observes every decoded instruction before it executes
type Tracer interface {
	TraceInstruction(pc uint16, opcode uint16, instruction *Instruction)
}

// CPU holds the complete machine state
type CPU struct {
	// Registers
	V  [NumRegisters]uint8 // V0-VF
	I  uint16              // Index register
	PC uint16              // Program counter

	// Call stack
	stack [StackSize]uint16
	sp    uint8

	// Timers, decremented once per cycle
	DelayTimer uint8
	SoundTimer uint8

	memory      *memory.Memory
	framebuffer *display.Framebuffer
	keypad      *input.Keypad
	random      RandomSource
	tracer      Tracer

	// Dispatch tables, built once in New
	table  [16]func(opcode uint16) *Instruction
	table0 [16]*Instruction
	table8 [16]*Instruction
	tableE [16]*Instruction
	tableF [256]*Instruction
	noop   *Instruction

	// Program image kept for Reset
	program []uint8

	// Cycle counter
	cycles uint64
}

// Option configures a CPU at construction time
type Option func(*CPU)

// WithRandomSource replaces the default random byte generator
func WithRandomSource(source RandomSource) Option {
	return func(cpu *CPU) {
		cpu.random = source
	}
}

// WithTracer installs an instruction tracer
func WithTracer(tracer Tracer) Option {
	return func(cpu *CPU) {
		cpu.tracer = tracer
	}
}

// New creates a CPU in its power-up state
func New(opts ...Option) *CPU {
	cpu := &CPU{
		memory:      memory.New(),
		framebuffer: display.New(),
		keypad:      input.New(),
		PC:          memory.ProgramStart,
	}
	for _, opt := range opts {
		opt(cpu)
	}
	if cpu.random == nil {
		cpu.random = NewRandomSource()
	}
	cpu.initInstructions()
	return cpu
}

// Reset restores the power-up state and reloads the last program image.
// The keypad belongs to the host and is left untouched.
func (cpu *CPU) Reset() {
	cpu.V = [NumRegisters]uint8{}
	cpu.I = 0
	cpu.PC = memory.ProgramStart
	cpu.stack = [StackSize]uint16{}
	cpu.sp = 0
	cpu.DelayTimer = 0
	cpu.SoundTimer = 0
	cpu.cycles = 0

	cpu.memory.Reset()
	cpu.memory.LoadProgram(cpu.program)
	cpu.framebuffer.Clear()
}

// LoadProgram reads a program image from r into program space. At most
// memory.ProgramSize bytes are read; longer sources are truncated. If r
// fails, a *LoadError is returned and memory is left unchanged.
func (cpu *CPU) LoadProgram(r io.Reader) error {
	if r == nil {
		return &LoadError{Err: errNilReader}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(r, memory.ProgramSize)); err != nil {
		return &LoadError{Err: err}
	}

	cpu.LoadBytes(buf.Bytes())
	return nil
}

// LoadBytes copies a program image into program space, truncating it to
// memory.ProgramSize bytes. Memory outside the image is returned to its
// power-up contents.
func (cpu *CPU) LoadBytes(program []uint8) {
	cpu.memory.Reset()
	n := cpu.memory.LoadProgram(program)
	cpu.program = append(cpu.program[:0], program[:n]...)
}

// Cycle executes a single instruction and ticks both timers
func (cpu *CPU) Cycle() {
	pc := cpu.PC
	opcode := cpu.memory.ReadWord(pc)
	cpu.PC += InstructionSize

	instruction := cpu.Decode(opcode)
	if cpu.tracer != nil {
		cpu.tracer.TraceInstruction(pc, opcode, instruction)
	}
	instruction.exec(cpu, opcode)

	if cpu.DelayTimer > 0 {
		cpu.DelayTimer--
	}
	if cpu.SoundTimer > 0 {
		cpu.SoundTimer--
	}

	cpu.cycles++
}

// Cycles returns the number of cycles executed since power-up or reset
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// Memory returns the address space
func (cpu *CPU) Memory() *memory.Memory {
	return cpu.memory
}

// Keypad returns the keypad the host writes key states into
func (cpu *CPU) Keypad() *input.Keypad {
	return cpu.keypad
}

// Display returns the framebuffer
func (cpu *CPU) Display() *display.Framebuffer {
	return cpu.framebuffer
}

// Framebuffer returns a snapshot of the display pixels
func (cpu *CPU) Framebuffer() display.Frame {
	return cpu.framebuffer.Snapshot()
}

// Pitch returns the number of bytes per framebuffer row
func (cpu *CPU) Pitch() int {
	return display.Pitch
}

// StackDepth returns the number of return addresses on the stack
func (cpu *CPU) StackDepth() int {
	return int(cpu.sp)
}

// Stack returns a copy of the occupied part of the call stack
func (cpu *CPU) Stack() []uint16 {
	out := make([]uint16, cpu.sp)
	copy(out, cpu.stack[:cpu.sp])
	return out
}

// SetTracer installs or removes (nil) the instruction tracer
func (cpu *CPU) SetTracer(tracer Tracer) {
	cpu.tracer = tracer
}

// push stores a return address and reports whether there was room
func (cpu *CPU) push(address uint16) bool {
	if int(cpu.sp) >= StackSize {
		return false
	}
	cpu.stack[cpu.sp] = address
	cpu.sp++
	return true
}

// pop removes the most recent return address, if any
func (cpu *CPU) pop() (uint16, bool) {
	if cpu.sp == 0 {
		return 0, false
	}
	cpu.sp--
	return cpu.stack[cpu.sp], true
}
