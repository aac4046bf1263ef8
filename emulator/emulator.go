package emulator

import (
	"github.com/Joiy908/Nand2Tetris/assembler"
)

const (
	destA = 0x20
	destD = 0x10
	destM = 0x08

	aBit = 0x1000
)

// Emulate runs from the current state until the program runs off the end of ROM, settles in a
// jump to itself, faults, hits the runtime limit or is terminated.
func (inst *EmulatorInstance) Emulate() {
	for !inst.terminated.Load() {
		if inst.runtimeLimit != 0 && inst.executedInstructions >= inst.runtimeLimit {
			inst.newException("Runtime limit of %d instructions reached. Infinite loop?", inst.runtimeLimit)
			return
		}
		if !inst.Step() {
			return
		}
	}
}

// Step executes one instruction. It returns false once the program can make no further progress.
func (inst *EmulatorInstance) Step() bool {
	if inst.halted {
		return false
	}
	instruction, ok := inst.fetch(inst.pc)
	if !ok {
		return false
	}

	faults := len(inst.errors)
	if assembler.IsAddressInstruction(instruction) {
		inst.a = instruction
		inst.pc++
	} else {
		inst.executeCompute(instruction)
	}
	inst.executedInstructions++
	return len(inst.errors) == faults && !inst.halted
}

func (inst *EmulatorInstance) executeCompute(instruction uint16) {
	if instruction&0xE000 != 0xE000 {
		inst.newIllegalInstructionException(instruction)
		return
	}
	dest, comp, jump := assembler.DecodeComputeInstruction(instruction)

	y := inst.a
	if comp&aBit != 0 {
		y = inst.memRead(inst.a)
	}
	out := alu(inst.d, y, comp)

	// the address used for M and for the jump target is A before this instruction updates it
	addr := inst.a
	if dest&destM != 0 {
		inst.memWrite(addr, out)
	}
	if dest&destA != 0 {
		inst.a = out
	}
	if dest&destD != 0 {
		inst.d = out
	}

	if !shouldJump(out, jump) {
		inst.pc++
		return
	}
	if addr == inst.pc || (addr+1 == inst.pc && inst.isLoadOf(addr, addr)) {
		// the usual end-of-program idiom: (END) @END 0;JMP
		inst.halted = true
	}
	inst.pc = addr
}

func (inst *EmulatorInstance) isLoadOf(pc, value uint16) bool {
	instruction, ok := inst.fetch(pc)
	return ok && assembler.IsAddressInstruction(instruction) && instruction == value
}

// alu computes the Hack ALU output. comp carries the control bits zx nx zy ny f no in bits 11..6.
func alu(x, y, comp uint16) uint16 {
	zx := comp&0x800 != 0
	nx := comp&0x400 != 0
	zy := comp&0x200 != 0
	ny := comp&0x100 != 0
	f := comp&0x80 != 0
	no := comp&0x40 != 0

	if zx {
		x = 0
	}
	if nx {
		x = ^x
	}
	if zy {
		y = 0
	}
	if ny {
		y = ^y
	}
	var out uint16
	if f {
		out = x + y
	} else {
		out = x & y
	}
	if no {
		out = ^out
	}
	return out
}

func shouldJump(out, jump uint16) bool {
	value := int16(out)
	switch jump {
	case 0x1:
		return value > 0
	case 0x2:
		return value == 0
	case 0x3:
		return value >= 0
	case 0x4:
		return value < 0
	case 0x5:
		return value != 0
	case 0x6:
		return value <= 0
	case 0x7:
		return true
	}
	return false
}
