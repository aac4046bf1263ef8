package emulator

import "fmt"

func (inst *EmulatorInstance) newException(format string, args ...interface{}) RuntimeException {
	// auto-reports
	exception := RuntimeException{
		pc:      inst.pc,
		a:       inst.a,
		d:       inst.d,
		message: fmt.Sprintf(format, args...),
	}

	inst.reportException(exception)
	return exception
}

func (inst *EmulatorInstance) newSegmentationFaultException(addr uint16) RuntimeException {
	return inst.newException("Segmentation fault accessing RAM[%d] at ROM[%d]", addr, inst.pc)
}

func (inst *EmulatorInstance) newReadOnlyWriteException(addr uint16) RuntimeException {
	return inst.newException("Illegal write to read-only keyboard register RAM[%d] at ROM[%d]", addr, inst.pc)
}

func (inst *EmulatorInstance) newIllegalInstructionException(instruction uint16) RuntimeException {
	return inst.newException("Illegal instruction %016b at ROM[%d]", instruction, inst.pc)
}

func (inst *EmulatorInstance) reportException(exception RuntimeException) {
	inst.errors = append(inst.errors, exception)
	if inst.runtimeErrorCallback != nil {
		inst.runtimeErrorCallback(exception)
	}
}
