package debug

import (
	"fmt"

	"gochip8/internal/cpu"
)

// LoopKind classifies a busy loop
type LoopKind int

const (
	// LoopRepeat is any instruction executed repeatedly at one address
	LoopRepeat LoopKind = iota
	// LoopKeyWait is the wait-for-key instruction spinning on itself
	LoopKeyWait
	// LoopJumpSelf is a jump whose target is its own address, which
	// programs use to halt
	LoopJumpSelf
)

func (k LoopKind) String() string {
	switch k {
	case LoopKeyWait:
		return "key-wait"
	case LoopJumpSelf:
		return "jump-to-self"
	default:
		return "repeat"
	}
}

// Loop describes a detected busy loop
type Loop struct {
	PC     uint16
	Opcode uint16
	Kind   LoopKind
}

func (l Loop) String() string {
	return fmt.Sprintf("%s at %03X (%04X)", l.Kind, l.PC, l.Opcode)
}

// DefaultLoopThreshold is the number of consecutive executions at one
// address before a loop is reported
const DefaultLoopThreshold = 8

// LoopDetector is a cpu.Tracer that reports when execution stays at a
// single address. Each loop is reported once until execution moves on.
type LoopDetector struct {
	threshold int
	onLoop    func(Loop)

	lastPC   uint16
	repeats  int
	reported bool
	last     *Loop
}

// NewLoopDetector creates a detector calling onLoop for each loop found.
// onLoop may be nil.
func NewLoopDetector(threshold int, onLoop func(Loop)) *LoopDetector {
	if threshold < 1 {
		threshold = DefaultLoopThreshold
	}
	return &LoopDetector{
		threshold: threshold,
		onLoop:    onLoop,
		lastPC:    0xFFFF,
	}
}

// TraceInstruction implements cpu.Tracer
func (d *LoopDetector) TraceInstruction(pc uint16, opcode uint16, instruction *cpu.Instruction) {
	if pc != d.lastPC {
		d.lastPC = pc
		d.repeats = 1
		d.reported = false
		return
	}

	d.repeats++
	if d.reported || d.repeats < d.threshold {
		return
	}

	loop := Loop{PC: pc, Opcode: opcode, Kind: classifyLoop(pc, opcode)}
	d.reported = true
	d.last = &loop
	if d.onLoop != nil {
		d.onLoop(loop)
	}
}

// Last returns the most recently reported loop, if any
func (d *LoopDetector) Last() (Loop, bool) {
	if d.last == nil {
		return Loop{}, false
	}
	return *d.last, true
}

// InLoop reports whether execution is currently inside a reported loop
func (d *LoopDetector) InLoop() bool {
	return d.reported
}

// Reset forgets all history
func (d *LoopDetector) Reset() {
	d.lastPC = 0xFFFF
	d.repeats = 0
	d.reported = false
	d.last = nil
}

func classifyLoop(pc, opcode uint16) LoopKind {
	switch {
	case opcode&0xF0FF == 0xF00A:
		return LoopKeyWait
	case opcode&0xF000 == 0x1000 && opcode&0x0FFF == pc:
		return LoopJumpSelf
	default:
		return LoopRepeat
	}
}
