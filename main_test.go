package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const maxSource = `// Computes R2 = max(R0, R1)
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
(INFINITE_LOOP)
   @INFINITE_LOOP
   0;JMP
`

func writeSource(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	// keep a stray hackasm.json in the working directory out of the tests
	confPath := writeSource(t, "hackasm.json", "{}")
	args = append([]string{"--config", confPath}, args...)
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{{}, {"a.asm", "b.asm"}} {
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != 1 {
			t.Errorf("%v: expected exit code 1, got %d", args, code)
		}
		if !strings.Contains(stderr.String(), "usage:") {
			t.Errorf("%v: expected a usage message, got %q", args, stderr.String())
		}
	}
}

func TestHelpMentionsCommandNamedFiles(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "./run") {
		t.Errorf("help should explain how to assemble a file named like a command, got %q", stdout.String())
	}
}

func TestAssembleWritesOutput(t *testing.T) {
	path := writeSource(t, "Max.asm", maxSource)
	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr.String())
	}

	outPath := strings.TrimSuffix(path, ".asm") + ".hack"
	if !strings.Contains(stdout.String(), outPath) {
		t.Errorf("confirmation should name %s, got %q", outPath, stdout.String())
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	if len(lines) != 16 {
		t.Fatalf("expected 16 lines, got %d", len(lines))
	}
	expected := map[int]string{
		0:  "0000000000000000",
		1:  "1111110000010000",
		4:  "0000000000001010",
		5:  "1110001100000001",
		14: "0000000000001110",
		15: "1110101010000111",
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("line %d: got %s, expected %s", i, lines[i], want)
		}
	}
}

func TestAssembleErrorsWriteNothing(t *testing.T) {
	path := writeSource(t, "Bad.asm", "@1\n@32768\n")
	code, _, stderr := runCLI(t, path)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "line 2") || !strings.Contains(stderr, "32768") {
		t.Errorf("unexpected error %q", stderr)
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".asm") + ".hack"); !os.IsNotExist(err) {
		t.Errorf("no output file should be written, got %v", err)
	}
}

func TestInvalidPath(t *testing.T) {
	code, _, stderr := runCLI(t, t.TempDir())
	if code != 1 || !strings.Contains(stderr, "is not a valid file path") {
		t.Errorf("expected a path error, got %d %q", code, stderr)
	}
}

func TestDuplicateLabelFlag(t *testing.T) {
	path := writeSource(t, "Dup.asm", "(A)\n@A\n(A)\n0;JMP\n")
	if code, _, stderr := runCLI(t, path); code != 1 || !strings.Contains(stderr, "duplicate label") {
		t.Errorf("expected a duplicate label error, got %d %q", code, stderr)
	}
	if code, _, stderr := runCLI(t, "--allow-label-redefinition", path); code != 0 {
		t.Errorf("expected redefinition to be allowed, got %d %q", code, stderr)
	}
}

func TestBinaryAndSymbols(t *testing.T) {
	path := writeSource(t, "Sym.asm", "@counter\nM=1\n(LOOP)\n@LOOP\n0;JMP\n")
	code, _, stderr := runCLI(t, "--binary", "--symbols", path)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "counter") || !strings.Contains(stderr, "LOOP") {
		t.Errorf("expected the symbol table on stderr, got %q", stderr)
	}

	b, err := os.ReadFile(strings.TrimSuffix(path, ".asm") + ".bin")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{0x00, 0x10, 0xEF, 0xC8, 0x00, 0x02, 0xEA, 0x87}) {
		t.Errorf("unexpected binary output % X", b)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "hackasm.json")
	if err := os.WriteFile(confPath, []byte(`{"outputExtension": ".out"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeSource(t, "Add.asm", "@2\nD=A\n")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--config", confPath, path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr.String())
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".asm") + ".out"); err != nil {
		t.Errorf("expected output with the configured extension: %v", err)
	}

	if code := run([]string{"--config", filepath.Join(dir, "missing.json"), path}, &stdout, &stderr); code != 1 {
		t.Errorf("an explicit config that does not exist should fail")
	}
}

func TestRunCommand(t *testing.T) {
	path := writeSource(t, "Mult.asm", "@6\nD=A\n@R0\nM=D\n@total\nM=D\n(END)\n@END\n0;JMP\n")
	code, stdout, stderr := runCLI(t, "run", "--watch", "RAM[total]+1", path)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	for _, want := range []string{"halted=true", "RAM[0]=6", "RAM[total]+1 = 7 (0x0007)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in %q", want, stdout)
		}
	}

	path = writeSource(t, "Loop.asm", "(LOOP)\nD=D+1\n@LOOP\n0;JMP\n")
	code, _, stderr = runCLI(t, "run", "--limit", "100", path)
	if code != 1 || !strings.Contains(stderr, "Runtime limit") {
		t.Errorf("expected a runtime limit error, got %d %q", code, stderr)
	}
}

func TestDisCommand(t *testing.T) {
	path := writeSource(t, "Add.hack", "0000000000000010\n1110110000010000\n1110001100001000\n")
	code, stdout, stderr := runCLI(t, "dis", path)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	if stdout != "@2\nD=A\nM=D\n" {
		t.Errorf("unexpected disassembly %q", stdout)
	}
}

func TestOutputMustNotOverwriteSource(t *testing.T) {
	for _, c := range []struct {
		name string
		args []string
	}{
		{"Prog.hack", nil},
		{"Prog.bin", []string{"--binary"}},
	} {
		path := writeSource(t, c.name, "@1\n")
		code, _, stderr := runCLI(t, append(c.args, path)...)
		if code != 1 || !strings.Contains(stderr, "overwrite the source") {
			t.Errorf("%s: expected an overwrite error, got %d %q", c.name, code, stderr)
		}
		b, err := os.ReadFile(path)
		if err != nil || string(b) != "@1\n" {
			t.Errorf("%s: source was modified: %q %v", c.name, b, err)
		}
	}
}
