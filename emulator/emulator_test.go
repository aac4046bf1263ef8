package emulator

import (
	"strings"
	"testing"

	"github.com/Joiy908/Nand2Tetris/assembler"
)

func runProgram(t *testing.T, source string, limit uint64, setup func(*EmulatorInstance)) *EmulatorInstance {
	t.Helper()
	program, err := assembler.AssembleString(source, assembler.AssemblerConfig{})
	if err != nil {
		t.Fatalf("could not assemble: %v", err)
	}
	inst := NewEmulator(EmulatorConfig{Program: program.Words, RuntimeLimit: limit})
	if setup != nil {
		setup(inst)
	}
	inst.Emulate()
	return inst
}

const addProgram = `
@2
D=A
@3
D=D+A
@0
M=D
`

func TestAdd(t *testing.T) {
	inst := runProgram(t, addProgram, 100, nil)
	if got := inst.ReadRAM(0); got != 5 {
		t.Errorf("RAM[0] = %d, expected 5", got)
	}
	if len(inst.GetErrors()) != 0 {
		t.Errorf("unexpected errors: %v", inst.GetErrors())
	}
	state := inst.GetState()
	if state.PC != 6 || state.Executed != 6 {
		t.Errorf("unexpected state %+v", state)
	}
}

const maxProgram = `
   @R0
   D=M
   @R1
   D=D-M
   @OUTPUT_FIRST
   D;JGT
   @R1
   D=M
   @OUTPUT_D
   0;JMP
(OUTPUT_FIRST)
   @R0
   D=M
(OUTPUT_D)
   @R2
   M=D
(END)
   @END
   0;JMP
`

func TestMax(t *testing.T) {
	cases := []struct{ a, b, max uint16 }{
		{3, 7, 7},
		{9, 2, 9},
		{4, 4, 4},
		{0xFFFF, 1, 1}, // -1 < 1
	}
	for _, c := range cases {
		inst := runProgram(t, maxProgram, 1000, func(inst *EmulatorInstance) {
			inst.WriteRAM(0, c.a)
			inst.WriteRAM(1, c.b)
		})
		if got := inst.ReadRAM(2); got != c.max {
			t.Errorf("max(%d, %d) = %d, expected %d", c.a, c.b, got, c.max)
		}
		if !inst.GetState().Halted {
			t.Errorf("max(%d, %d) did not halt at END", c.a, c.b)
		}
		if len(inst.GetErrors()) != 0 {
			t.Errorf("max(%d, %d) errors: %v", c.a, c.b, inst.GetErrors())
		}
	}
}

func TestScreenWrite(t *testing.T) {
	inst := runProgram(t, `
@SCREEN
M=-1
@SCREEN
D=A
@33
A=D+A
M=1
`, 100, nil)
	display := inst.GetDisplay()
	for x := 0; x < 16; x++ {
		if !display.Pixel(x, 0) {
			t.Errorf("pixel (%d, 0) should be set", x)
		}
	}
	if display.Pixel(16, 0) {
		t.Errorf("pixel (16, 0) should be clear")
	}
	// word 33 is the second word of row 1
	if !display.Pixel(16, 1) || display.Pixel(17, 1) {
		t.Errorf("row 1 should have only pixel 16 set")
	}
	if display.Writes() != 2 {
		t.Errorf("expected 2 display writes, got %d", display.Writes())
	}

	updates := display.GetUpdates()
	if len(updates) != 2 {
		t.Fatalf("expected 2 updated regions, got %d", len(updates))
	}
	if updates[0].RegionX != 0 || updates[0].RegionY != 0 || updates[0].Data[0] != 0xFFFF {
		t.Errorf("unexpected first region %+v", updates[0])
	}
	if updates[1].RegionX != 16 || updates[1].Data[1] != 1 {
		t.Errorf("unexpected second region %+v", updates[1])
	}
	if len(display.GetUpdates()) != 0 {
		t.Errorf("updates should be cleared once read")
	}
	if len(display.GetEntireScreen()) != wordsPerRow*ScreenHeight/16 {
		t.Errorf("entire screen should cover every region")
	}
}

func TestKeyboardRead(t *testing.T) {
	inst := runProgram(t, `
@KBD
D=M
@0
M=D
`, 100, func(inst *EmulatorInstance) {
		inst.SetKeyboard('K')
	})
	if got := inst.ReadRAM(0); got != 'K' {
		t.Errorf("RAM[0] = %d, expected %d", got, 'K')
	}
}

func TestKeyboardIsReadOnly(t *testing.T) {
	inst := runProgram(t, "@KBD\nM=1\n@0\nM=1\n", 100, nil)
	errs := inst.GetErrors()
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "read-only") {
		t.Fatalf("expected a read-only write error, got %v", errs)
	}
	if errs[0].PC() != 1 {
		t.Errorf("expected the fault at ROM[1], got %d", errs[0].PC())
	}
	if inst.ReadRAM(0) != 0 {
		t.Errorf("execution should stop at the fault")
	}
}

func TestSegmentationFault(t *testing.T) {
	inst := runProgram(t, "@24577\nD=M\n", 100, nil)
	errs := inst.GetErrors()
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "Segmentation fault") {
		t.Fatalf("expected a segmentation fault, got %v", errs)
	}
}

func TestRuntimeLimit(t *testing.T) {
	var reported []RuntimeException
	program, err := assembler.AssembleString("(LOOP)\n@LOOP\nD=D+1\n0;JMP\n", assembler.AssemblerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	inst := NewEmulator(EmulatorConfig{
		Program:      program.Words,
		RuntimeLimit: 50,
		RuntimeErrorCallback: func(e RuntimeException) {
			reported = append(reported, e)
		},
	})
	inst.Emulate()

	if inst.GetTotalInstructionsExecuted() != 50 {
		t.Errorf("expected 50 instructions, got %d", inst.GetTotalInstructionsExecuted())
	}
	if len(reported) != 1 || !strings.Contains(reported[0].Error(), "Runtime limit") {
		t.Errorf("expected one runtime limit report, got %v", reported)
	}
}

func TestTerminate(t *testing.T) {
	program, err := assembler.AssembleString("(LOOP)\n@LOOP\n0;JMP\n", assembler.AssemblerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	inst := NewEmulator(EmulatorConfig{Program: program.Words})
	inst.Terminate()
	inst.Emulate()
	if inst.GetTotalInstructionsExecuted() != 0 {
		t.Errorf("a terminated emulator should not execute")
	}

	inst.ResetRegisters()
	if inst.IsTerminated() {
		t.Errorf("ResetRegisters should clear termination")
	}
	inst.Emulate()
	if !inst.GetState().Halted || inst.GetTotalInstructionsExecuted() != 2 {
		t.Errorf("expected to halt on the tight loop, got %+v", inst.GetState())
	}
}

func TestALU(t *testing.T) {
	x, y := uint16(12), uint16(5)
	cases := map[string]uint16{
		"0":   0,
		"1":   1,
		"-1":  0xFFFF,
		"D":   x,
		"A":   y,
		"!D":  ^x,
		"-A":  -y,
		"D+1": x + 1,
		"A-1": y - 1,
		"D+A": x + y,
		"D-A": x - y,
		"A-D": y - x,
		"D&A": x & y,
		"D|A": x | y,
	}
	for mnemonic, expected := range cases {
		word, err := assembler.Encode("D=" + mnemonic)
		if err != nil {
			t.Fatalf("%s: %v", mnemonic, err)
		}
		_, comp, _ := assembler.DecodeComputeInstruction(word)
		if got := alu(x, y, comp); got != expected {
			t.Errorf("%s = %d, expected %d", mnemonic, got, expected)
		}
	}
}

func TestShouldJump(t *testing.T) {
	values := []uint16{0, 1, 0xFFFF}
	expected := map[uint16][3]bool{
		0: {false, false, false},
		1: {false, true, false}, // JGT
		2: {true, false, false}, // JEQ
		3: {true, true, false},  // JGE
		4: {false, false, true}, // JLT
		5: {false, true, true},  // JNE
		6: {true, false, true},  // JLE
		7: {true, true, true},   // JMP
	}
	for jump, results := range expected {
		for i, v := range values {
			if got := shouldJump(v, jump); got != results[i] {
				t.Errorf("jump %d on %d: got %v", jump, int16(v), got)
			}
		}
	}
}

func TestEvaluateExpression(t *testing.T) {
	program, err := assembler.AssembleString(addProgram+"@sum\nM=D\n", assembler.AssemblerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	inst := NewEmulator(EmulatorConfig{Program: program.Words})
	inst.Emulate()

	cases := []struct {
		expr    string
		value   uint16
		address int
	}{
		{"D", 5, -1},
		{"A", 16, -1},
		{"M", 5, 16},
		{"RAM[0]", 5, 0},
		{"RAM[sum]", 5, 16},
		{"sum", 16, -1},
		{"RAM[R0] + 0x10", 21, -1},
		{"-D", 0xFFFB, -1},
		{"!0 & (D - 1)", 4, -1},
		{"1 | 2 + 4", 7, -1},
		{"RAM[SCREEN]", 0, ScreenAddress},
	}
	for _, c := range cases {
		res, err := inst.EvaluateExpression(c.expr, program.Symbols)
		if err != nil {
			t.Errorf("%s: %v", c.expr, err)
			continue
		}
		if res.Value != c.value || res.Address != c.address {
			t.Errorf("%s = %d at %d, expected %d at %d", c.expr, res.Value, res.Address, c.value, c.address)
		}
	}

	for _, bad := range []string{"", "RAM[1", "1 +", "nope", "RAM[24577]", "D ! 1", "0x"} {
		if _, err := inst.EvaluateExpression(bad, nil); err == nil {
			t.Errorf("%q should not evaluate", bad)
		}
	}
}
