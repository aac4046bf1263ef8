package emulator

func (inst *EmulatorInstance) ResetRegisters() {
	inst.a = 0
	inst.d = 0
	inst.pc = 0
	inst.halted = false
	inst.executedInstructions = 0
	inst.errors = []RuntimeException{}
	inst.terminated.Store(false)
}

func NewEmulator(config EmulatorConfig) *EmulatorInstance {
	rom := make([]uint16, len(config.Program))
	copy(rom, config.Program)

	return &EmulatorInstance{
		rom:                  rom,
		runtimeLimit:         config.RuntimeLimit,
		display:              &VirtualDisplay{},
		errors:               []RuntimeException{},
		runtimeErrorCallback: config.RuntimeErrorCallback,
	}
}

func (inst *EmulatorInstance) GetState() State {
	return State{
		A:        inst.a,
		D:        inst.d,
		PC:       inst.pc,
		Executed: inst.executedInstructions,
		Halted:   inst.halted,
	}
}

func (inst *EmulatorInstance) GetDisplay() *VirtualDisplay {
	return inst.display
}

func (inst *EmulatorInstance) GetErrors() []RuntimeException {
	return inst.errors
}

func (inst *EmulatorInstance) GetTotalInstructionsExecuted() uint64 {
	return inst.executedInstructions
}

// SetKeyboard sets the key code the program reads at KBD. Safe to call while Emulate runs.
func (inst *EmulatorInstance) SetKeyboard(code uint16) {
	inst.keyboard.Store(uint32(code))
}

// Terminate stops a running Emulate. Safe to call from another goroutine.
func (inst *EmulatorInstance) Terminate() {
	inst.terminated.Store(true)
}

func (inst *EmulatorInstance) IsTerminated() bool {
	return inst.terminated.Load()
}
