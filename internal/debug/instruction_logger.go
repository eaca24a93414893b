package debug

import (
	"io"
	"log"
	"sort"

	"gochip8/internal/cpu"
)

// InstructionLogger is a cpu.Tracer that logs executed instructions and
// keeps per-mnemonic execution counts.
type InstructionLogger struct {
	logger *log.Logger

	// Log only opcodes that decode to nothing
	unknownOnly bool
	// Stop logging after this many lines; 0 means unlimited
	maxLines int

	lines    int
	total    uint64
	unknown  uint64
	counts   map[string]uint64
	lastMiss uint16
}

// NewInstructionLogger creates a logger writing to w
func NewInstructionLogger(w io.Writer) *InstructionLogger {
	return &InstructionLogger{
		logger: log.New(w, "", log.Lmicroseconds),
		counts: make(map[string]uint64),
	}
}

// SetUnknownOnly restricts output to unrecognized opcodes
func (l *InstructionLogger) SetUnknownOnly(enable bool) {
	l.unknownOnly = enable
}

// SetMaxLines caps the number of lines logged
func (l *InstructionLogger) SetMaxLines(max int) {
	l.maxLines = max
}

// TraceInstruction implements cpu.Tracer
func (l *InstructionLogger) TraceInstruction(pc uint16, opcode uint16, instruction *cpu.Instruction) {
	l.total++
	if instruction.Known {
		l.counts[instruction.Pattern]++
	} else {
		l.unknown++
		l.lastMiss = opcode
	}

	if l.unknownOnly && instruction.Known {
		return
	}
	if l.maxLines > 0 && l.lines >= l.maxLines {
		return
	}
	l.lines++

	if !instruction.Known {
		l.logger.Printf("[TRACE] %03X: %04X ???  (unknown opcode)", pc, opcode)
		return
	}
	l.logger.Printf("[TRACE] %03X: %04X %-4s %s", pc, opcode, instruction.Name, instruction.Pattern)
}

// Total returns the number of instructions traced
func (l *InstructionLogger) Total() uint64 {
	return l.total
}

// Unknown returns the number of unrecognized opcodes traced and the last one
func (l *InstructionLogger) Unknown() (count uint64, last uint16) {
	return l.unknown, l.lastMiss
}

// InstructionCount pairs an encoding pattern with its execution count
type InstructionCount struct {
	Pattern string
	Count   uint64
}

// TopInstructions returns the n most executed encodings, most frequent first
func (l *InstructionLogger) TopInstructions(n int) []InstructionCount {
	out := make([]InstructionCount, 0, len(l.counts))
	for pattern, count := range l.counts {
		out = append(out, InstructionCount{pattern, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pattern < out[j].Pattern
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// LogSummary writes execution statistics through the logger
func (l *InstructionLogger) LogSummary(n int) {
	l.logger.Printf("[TRACE] %d instructions, %d unknown", l.total, l.unknown)
	for _, ic := range l.TopInstructions(n) {
		l.logger.Printf("[TRACE]   %-4s %d", ic.Pattern, ic.Count)
	}
}

// MultiTracer fans a trace out to several tracers
type MultiTracer []cpu.Tracer

// TraceInstruction implements cpu.Tracer
func (m MultiTracer) TraceInstruction(pc uint16, opcode uint16, instruction *cpu.Instruction) {
	for _, t := range m {
		t.TraceInstruction(pc, opcode, instruction)
	}
}
