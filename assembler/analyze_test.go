package assembler_test

import (
	"strings"
	"testing"

	"github.com/Joiy908/Nand2Tetris/assembler"
)

const analyzedSource = `(LOOP)
    @counter
    M=M+1
    @LOOP
    0;JMP
(UNUSED)
    DD=A
    @40000`

func TestAnalyzeCollectsEveryDiagnostic(t *testing.T) {
	res := assembler.Analyze(analyzedSource, assembler.AssemblerConfig{})

	expected := []assembler.Diagnostic{
		{
			Range:    textRange(6, 4, 8),
			Message:  "Invalid instruction: \"DD=A\", unknown destination \"DD\"",
			Severity: assembler.Error,
		},
		{
			Range:    textRange(7, 4, 10),
			Message:  "Address \"40000\" is out of range. Must be between 0 and 32767",
			Severity: assembler.Error,
		},
		{
			Range:    textRange(5, 0, 8),
			Message:  "Unused label: \"UNUSED\"",
			Severity: assembler.Warning,
		},
		{
			Range:    textRange(1, 4, 12),
			Message:  "Variable \"counter\" is only referenced once",
			Severity: assembler.Information,
		},
	}
	validateDiagnostics(t, res.Diagnostics, expected)

	if !res.HasErrors() {
		t.Errorf("Expected HasErrors to be true")
	}
	if len(res.ProgramText) != 6 {
		t.Fatalf("Expected 6 instruction slots, got %d", len(res.ProgramText))
	}
	if res.ProgramText[0] != 16 || res.ProgramText[2] != 0 {
		t.Errorf("Unexpected resolved addresses: %v", res.ProgramText)
	}
	if res.Labels["UNUSED"] != 4 || res.LabelToLineNumber["UNUSED"] != 5 {
		t.Errorf("Unexpected UNUSED label binding: %d on line %d", res.Labels["UNUSED"], res.LabelToLineNumber["UNUSED"])
	}
	if res.Variables["counter"] != 16 {
		t.Errorf("Expected counter at 16, got %d", res.Variables["counter"])
	}
	if res.AddressToLine[5] != 7 || res.LineToAddress[2] != 1 {
		t.Errorf("Unexpected address/line maps: %v %v", res.AddressToLine, res.LineToAddress)
	}
}

func TestAnalyzeReportsDuplicateLabelsAndContinues(t *testing.T) {
	source := "(A)\n@A\n(A)\n@A\n0;JMP"

	res := assembler.Analyze(source, assembler.AssemblerConfig{})
	validateDiagnostics(t, res.Diagnostics, []assembler.Diagnostic{
		{
			Range:    textRange(2, 0, 3),
			Message:  "Duplicate label: \"A\", first defined on line 1",
			Severity: assembler.Error,
		},
	})
	if len(res.ProgramText) != 3 || res.ProgramText[1] != 0 {
		t.Errorf("Expected the first definition of A to stay in effect, got %v", res.ProgramText)
	}
}

func TestAnalyzeCleanSource(t *testing.T) {
	res := assembler.Analyze("@2\nD=A\n@3\nD=D+A\n@0\nM=D\n", assembler.AssemblerConfig{})
	if len(res.Diagnostics) != 0 || res.HasErrors() {
		t.Errorf("Expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestEvaluateHover(t *testing.T) {
	res := assembler.Analyze(analyzedSource, assembler.AssemblerConfig{})

	tests := []struct {
		line, char int
		contains   string
		ok         bool
	}{
		{0, 1, "Definition of label `LOOP`.\n\nAddress of instruction `0`", true},
		{1, 6, "Variable `counter`\n\nAllocated at `RAM[16]`", true},
		{2, 5, "Compute Instruction `M=M+1`\n\n`RAM[A]` incremented by one\n\nStores the result in `RAM[A]`\n\nEncoding: `1111110111001000`", true},
		{3, 6, "Reference to label `LOOP`\n\nEvaluates to `0`", true},
		{4, 5, "Always jumps to `ROM[A]`", true},
		{2, 1, "", false},
		{6, 5, "", false},
		{42, 0, "", false},
	}
	for _, tc := range tests {
		text, ok := res.EvaluateHover(assembler.TextPosition{Line: tc.line, Char: tc.char})
		if ok != tc.ok {
			t.Errorf("EvaluateHover(%d:%d) ok = %v; want %v", tc.line, tc.char, ok, tc.ok)
			continue
		}
		if !strings.Contains(text, tc.contains) {
			t.Errorf("EvaluateHover(%d:%d) = %q; want it to contain %q", tc.line, tc.char, text, tc.contains)
		}
	}

	res = assembler.Analyze("@SCREEN\n@300", assembler.AssemblerConfig{})
	if text, _ := res.EvaluateHover(assembler.TextPosition{Line: 0, Char: 2}); text != "Predefined symbol `SCREEN`\n\nEvaluates to `16384`" {
		t.Errorf("Unexpected hover for SCREEN: %q", text)
	}
	if text, _ := res.EvaluateHover(assembler.TextPosition{Line: 1, Char: 2}); text != "Address Literal `300` (`0x012C`)" {
		t.Errorf("Unexpected hover for literal: %q", text)
	}
}

func textRange(line, start, end int) assembler.TextRange {
	return assembler.TextRange{
		Start: assembler.TextPosition{Line: line, Char: start},
		End:   assembler.TextPosition{Line: line, Char: end},
	}
}

func validateDiagnostics(t *testing.T, diagnostics []assembler.Diagnostic, expectedDiagnostics []assembler.Diagnostic) {
	t.Helper()
	if len(diagnostics) != len(expectedDiagnostics) {
		t.Fatalf("Expected %d diagnostics, got %d (%v)", len(expectedDiagnostics), len(diagnostics), diagnostics)
	}

	for i, diagnostic := range diagnostics {
		if diagnostic.Severity != expectedDiagnostics[i].Severity {
			t.Errorf("Expected diagnostic %d to have severity %d, got %d", i, expectedDiagnostics[i].Severity, diagnostic.Severity)
		}

		if diagnostic.Range != expectedDiagnostics[i].Range {
			t.Errorf("Expected diagnostic %d to cover %+v, got %+v", i, expectedDiagnostics[i].Range, diagnostic.Range)
		}

		if diagnostic.Message != expectedDiagnostics[i].Message {
			t.Errorf("Expected diagnostic %d to be \"%s\", got \"%s\"", i, expectedDiagnostics[i].Message, diagnostic.Message)
		}
	}
}
