package cpu

import (
	"gochip8/internal/input"
	"gochip8/internal/memory"
)

// Instruction operations. Each handler receives the full opcode; PC has
// already been advanced past it.

// Display and subroutine operations

func (cpu *CPU) op00E0(opcode uint16) {
	cpu.framebuffer.Clear()
}

func (cpu *CPU) op00EE(opcode uint16) {
	if address, ok := cpu.pop(); ok {
		cpu.PC = address
	}
}

// Jumps

func (cpu *CPU) op1nnn(opcode uint16) {
	cpu.PC = opNNN(opcode)
}

func (cpu *CPU) op2nnn(opcode uint16) {
	// A full stack turns the call into a no-op
	if cpu.push(cpu.PC) {
		cpu.PC = opNNN(opcode)
	}
}

func (cpu *CPU) opBnnn(opcode uint16) {
	cpu.PC = opNNN(opcode) + uint16(cpu.V[0])
}

// Conditional skips

func (cpu *CPU) skipIf(condition bool) {
	if condition {
		cpu.PC += InstructionSize
	}
}

func (cpu *CPU) op3xnn(opcode uint16) {
	cpu.skipIf(cpu.V[opX(opcode)] == opNN(opcode))
}

func (cpu *CPU) op4xnn(opcode uint16) {
	cpu.skipIf(cpu.V[opX(opcode)] != opNN(opcode))
}

func (cpu *CPU) op5xy0(opcode uint16) {
	cpu.skipIf(cpu.V[opX(opcode)] == cpu.V[opY(opcode)])
}

func (cpu *CPU) op9xy0(opcode uint16) {
	cpu.skipIf(cpu.V[opX(opcode)] != cpu.V[opY(opcode)])
}

// Immediate loads

func (cpu *CPU) op6xnn(opcode uint16) {
	cpu.V[opX(opcode)] = opNN(opcode)
}

func (cpu *CPU) op7xnn(opcode uint16) {
	cpu.V[opX(opcode)] += opNN(opcode) // wraps, VF untouched
}

// Register-register ALU operations

func (cpu *CPU) op8xy0(opcode uint16) {
	cpu.V[opX(opcode)] = cpu.V[opY(opcode)]
}

func (cpu *CPU) op8xy1(opcode uint16) {
	cpu.V[opX(opcode)] |= cpu.V[opY(opcode)]
}

func (cpu *CPU) op8xy2(opcode uint16) {
	cpu.V[opX(opcode)] &= cpu.V[opY(opcode)]
}

func (cpu *CPU) op8xy3(opcode uint16) {
	cpu.V[opX(opcode)] ^= cpu.V[opY(opcode)]
}

// VF is written before the result, so with x == F the result overwrites
// the flag.

func (cpu *CPU) op8xy4(opcode uint16) {
	x, y := opX(opcode), opY(opcode)
	sum := uint16(cpu.V[x]) + uint16(cpu.V[y])
	cpu.V[FlagRegister] = boolToFlag(sum > 0xFF)
	cpu.V[x] = uint8(sum)
}

func (cpu *CPU) op8xy5(opcode uint16) {
	x, y := opX(opcode), opY(opcode)
	cpu.V[FlagRegister] = boolToFlag(cpu.V[x] >= cpu.V[y])
	cpu.V[x] -= cpu.V[y]
}

func (cpu *CPU) op8xy6(opcode uint16) {
	x := opX(opcode)
	cpu.V[FlagRegister] = cpu.V[x] & 0x01
	cpu.V[x] >>= 1
}

func (cpu *CPU) op8xy7(opcode uint16) {
	x, y := opX(opcode), opY(opcode)
	cpu.V[FlagRegister] = boolToFlag(cpu.V[y] >= cpu.V[x])
	cpu.V[x] = cpu.V[y] - cpu.V[x]
}

func (cpu *CPU) op8xyE(opcode uint16) {
	x := opX(opcode)
	cpu.V[FlagRegister] = (cpu.V[x] & 0x80) >> 7
	cpu.V[x] <<= 1
}

// Index, random and drawing

func (cpu *CPU) opAnnn(opcode uint16) {
	cpu.I = opNNN(opcode)
}

func (cpu *CPU) opCxnn(opcode uint16) {
	cpu.V[opX(opcode)] = cpu.random.Byte() & opNN(opcode)
}

func (cpu *CPU) opDxyn(opcode uint16) {
	height := int(opN(opcode))

	// Rows whose source address is outside memory are dropped
	rows := cpu.memory.Slice(cpu.I, height)

	collision := cpu.framebuffer.DrawSprite(cpu.V[opX(opcode)], cpu.V[opY(opcode)], rows)
	cpu.V[FlagRegister] = boolToFlag(collision)
}

// Keypad

func (cpu *CPU) opEx9E(opcode uint16) {
	cpu.skipIf(cpu.keypad.IsPressed(cpu.V[opX(opcode)]))
}

func (cpu *CPU) opExA1(opcode uint16) {
	value := cpu.V[opX(opcode)]
	// Values above F are treated as "not pressed" without skipping
	if value >= input.NumKeys {
		return
	}
	cpu.skipIf(!cpu.keypad.IsPressed(value))
}

func (cpu *CPU) opFx0A(opcode uint16) {
	key, ok := cpu.keypad.FirstPressed()
	if !ok {
		// Re-execute this instruction on the next cycle
		cpu.PC -= InstructionSize
		return
	}
	cpu.V[opX(opcode)] = uint8(key)
}

// Timers

func (cpu *CPU) opFx07(opcode uint16) {
	cpu.V[opX(opcode)] = cpu.DelayTimer
}

func (cpu *CPU) opFx15(opcode uint16) {
	cpu.DelayTimer = cpu.V[opX(opcode)]
}

func (cpu *CPU) opFx18(opcode uint16) {
	cpu.SoundTimer = cpu.V[opX(opcode)]
}

// Index arithmetic and memory block operations

func (cpu *CPU) opFx1E(opcode uint16) {
	next := int(cpu.I) + int(cpu.V[opX(opcode)])
	if memory.InBounds(next) {
		cpu.I = uint16(next)
	}
}

func (cpu *CPU) opFx29(opcode uint16) {
	if address, err := memory.Glyph(cpu.V[opX(opcode)]); err == nil {
		cpu.I = address
	}
}

func (cpu *CPU) opFx33(opcode uint16) {
	value := cpu.V[opX(opcode)]
	digits := [3]uint8{value / 100, (value / 10) % 10, value % 10}
	for i, digit := range digits {
		cpu.writeIndexed(i, digit)
	}
}

func (cpu *CPU) opFx55(opcode uint16) {
	for i := 0; i <= int(opX(opcode)); i++ {
		cpu.writeIndexed(i, cpu.V[i])
	}
}

func (cpu *CPU) opFx65(opcode uint16) {
	for i := 0; i <= int(opX(opcode)); i++ {
		address := int(cpu.I) + i
		if memory.InBounds(address) {
			cpu.V[i] = cpu.memory.Read(uint16(address))
		}
	}
}

func (cpu *CPU) opNull(opcode uint16) {}

// writeIndexed stores value at I+offset, skipping addresses past the end of
// memory.
func (cpu *CPU) writeIndexed(offset int, value uint8) {
	address := int(cpu.I) + offset
	if memory.InBounds(address) {
		cpu.memory.Write(uint16(address), value)
	}
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
