package cpu

// Instruction describes one operation of the instruction set
type Instruction struct {
	Name    string // Mnemonic
	Pattern string // Encoding, e.g. "8xy4"
	Known   bool   // False for the fallback no-op

	exec func(cpu *CPU, opcode uint16)
}

// Operand extraction masks
const (
	groupMask   = 0xF000
	xMask       = 0x0F00
	yMask       = 0x00F0
	nibbleMask  = 0x000F
	byteMask    = 0x00FF
	addressMask = 0x0FFF
)

func opX(opcode uint16) uint8 { return uint8((opcode & xMask) >> 8) }
func opY(opcode uint16) uint8 { return uint8((opcode & yMask) >> 4) }
func opN(opcode uint16) uint8 { return uint8(opcode & nibbleMask) }
func opNN(opcode uint16) uint8 { return uint8(opcode & byteMask) }
func opNNN(opcode uint16) uint16 { return opcode & addressMask }
func opGroup(opcode uint16) uint16 { return (opcode & groupMask) >> 12 }

// fixed wraps an instruction that needs no secondary dispatch
func fixed(i *Instruction) func(uint16) *Instruction {
	return func(uint16) *Instruction { return i }
}

// Decode returns the instruction an opcode maps to. Unrecognized opcodes
// decode to a no-op whose Known field is false.
func (cpu *CPU) Decode(opcode uint16) *Instruction {
	return cpu.table[opGroup(opcode)](opcode)
}

// initInstructions builds the dispatch tables. The primary table keys on
// the top nibble; groups 0, 8 and E key on the low nibble and group F on
// the low byte.
func (cpu *CPU) initInstructions() {
	cpu.noop = &Instruction{"???", "----", false, (*CPU).opNull}

	for i := range cpu.table0 {
		cpu.table0[i] = cpu.noop
		cpu.table8[i] = cpu.noop
		cpu.tableE[i] = cpu.noop
	}
	for i := range cpu.tableF {
		cpu.tableF[i] = cpu.noop
	}

	// Group 0
	cpu.table0[0x0] = &Instruction{"CLS", "00E0", true, (*CPU).op00E0}
	cpu.table0[0xE] = &Instruction{"RET", "00EE", true, (*CPU).op00EE}

	// Group 8: register-register ALU
	cpu.table8[0x0] = &Instruction{"LD", "8xy0", true, (*CPU).op8xy0}
	cpu.table8[0x1] = &Instruction{"OR", "8xy1", true, (*CPU).op8xy1}
	cpu.table8[0x2] = &Instruction{"AND", "8xy2", true, (*CPU).op8xy2}
	cpu.table8[0x3] = &Instruction{"XOR", "8xy3", true, (*CPU).op8xy3}
	cpu.table8[0x4] = &Instruction{"ADD", "8xy4", true, (*CPU).op8xy4}
	cpu.table8[0x5] = &Instruction{"SUB", "8xy5", true, (*CPU).op8xy5}
	cpu.table8[0x6] = &Instruction{"SHR", "8xy6", true, (*CPU).op8xy6}
	cpu.table8[0x7] = &Instruction{"SUBN", "8xy7", true, (*CPU).op8xy7}
	cpu.table8[0xE] = &Instruction{"SHL", "8xyE", true, (*CPU).op8xyE}

	// Group E: keypad skips
	cpu.tableE[0xE] = &Instruction{"SKP", "Ex9E", true, (*CPU).opEx9E}
	cpu.tableE[0x1] = &Instruction{"SKNP", "ExA1", true, (*CPU).opExA1}

	// Group F: timers, keypad wait, index and memory block operations
	cpu.tableF[0x07] = &Instruction{"LD", "Fx07", true, (*CPU).opFx07}
	cpu.tableF[0x0A] = &Instruction{"LD", "Fx0A", true, (*CPU).opFx0A}
	cpu.tableF[0x15] = &Instruction{"LD", "Fx15", true, (*CPU).opFx15}
	cpu.tableF[0x18] = &Instruction{"LD", "Fx18", true, (*CPU).opFx18}
	cpu.tableF[0x1E] = &Instruction{"ADD", "Fx1E", true, (*CPU).opFx1E}
	cpu.tableF[0x29] = &Instruction{"LD", "Fx29", true, (*CPU).opFx29}
	cpu.tableF[0x33] = &Instruction{"LD", "Fx33", true, (*CPU).opFx33}
	cpu.tableF[0x55] = &Instruction{"LD", "Fx55", true, (*CPU).opFx55}
	cpu.tableF[0x65] = &Instruction{"LD", "Fx65", true, (*CPU).opFx65}

	// Primary table
	cpu.table[0x0] = func(opcode uint16) *Instruction { return cpu.table0[opN(opcode)] }
	cpu.table[0x1] = fixed(&Instruction{"JP", "1nnn", true, (*CPU).op1nnn})
	cpu.table[0x2] = fixed(&Instruction{"CALL", "2nnn", true, (*CPU).op2nnn})
	cpu.table[0x3] = fixed(&Instruction{"SE", "3xnn", true, (*CPU).op3xnn})
	cpu.table[0x4] = fixed(&Instruction{"SNE", "4xnn", true, (*CPU).op4xnn})
	cpu.table[0x5] = fixed(&Instruction{"SE", "5xy0", true, (*CPU).op5xy0})
	cpu.table[0x6] = fixed(&Instruction{"LD", "6xnn", true, (*CPU).op6xnn})
	cpu.table[0x7] = fixed(&Instruction{"ADD", "7xnn", true, (*CPU).op7xnn})
	cpu.table[0x8] = func(opcode uint16) *Instruction { return cpu.table8[opN(opcode)] }
	cpu.table[0x9] = fixed(&Instruction{"SNE", "9xy0", true, (*CPU).op9xy0})
	cpu.table[0xA] = fixed(&Instruction{"LD", "Annn", true, (*CPU).opAnnn})
	cpu.table[0xB] = fixed(&Instruction{"JP", "Bnnn", true, (*CPU).opBnnn})
	cpu.table[0xC] = fixed(&Instruction{"RND", "Cxnn", true, (*CPU).opCxnn})
	cpu.table[0xD] = fixed(&Instruction{"DRW", "Dxyn", true, (*CPU).opDxyn})
	cpu.table[0xE] = func(opcode uint16) *Instruction { return cpu.tableE[opN(opcode)] }
	cpu.table[0xF] = func(opcode uint16) *Instruction { return cpu.tableF[opNN(opcode)] }
}
