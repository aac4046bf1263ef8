package emulator

func (inst *EmulatorInstance) memRead(addr uint16) uint16 {
	switch {
	case addr < ScreenAddress:
		return inst.ram[addr]
	case addr < KeyboardAddress:
		return inst.display.read(addr - ScreenAddress)
	case addr == KeyboardAddress:
		return uint16(inst.keyboard.Load())
	}
	inst.newSegmentationFaultException(addr)
	return 0
}

func (inst *EmulatorInstance) memWrite(addr, value uint16) {
	switch {
	case addr < ScreenAddress:
		inst.ram[addr] = value
	case addr < KeyboardAddress:
		inst.display.write(addr-ScreenAddress, value)
	case addr == KeyboardAddress:
		inst.newReadOnlyWriteException(addr)
	default:
		inst.newSegmentationFaultException(addr)
	}
}

// ReadRAM reads a data memory word, including the memory-mapped screen and keyboard.
func (inst *EmulatorInstance) ReadRAM(addr uint16) uint16 {
	if addr > KeyboardAddress {
		return 0
	}
	return inst.memRead(addr)
}

// WriteRAM presets a data memory word before a run.
func (inst *EmulatorInstance) WriteRAM(addr, value uint16) {
	if addr >= KeyboardAddress {
		return
	}
	inst.memWrite(addr, value)
}

func (inst *EmulatorInstance) fetch(pc uint16) (uint16, bool) {
	if int(pc) >= len(inst.rom) {
		return 0, false
	}
	return inst.rom[pc], true
}
