package autograder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/golang/glog"

	"github.com/Joiy908/Nand2Tetris/assembler"
	"github.com/Joiy908/Nand2Tetris/emulator"
)

type tcTypePair struct {
	correct      int
	total        int
	earnedPoints int
	totalPoints  int
	output       string
}

// AutogradeAssembly assembles every submission named by the test cases, compares the words with the
// reference .hack files, runs the RAM checks on the emulator and saves the Gradescope results.
func AutogradeAssembly(conf *Config, asmConf assembler.AssemblerConfig) (*GradescopeOutput, error) {
	gso := CreateGradescopeOutput()

	programs := make(map[string]*assembler.Program)
	totalInstructions := 0
	compilationTestCase := CreateTestCase("Assembly", conf.CompilationPoints, "visible")
	compilationTestCase.SetStatus(true)
	for _, testCase := range conf.TestCases {
		if _, ok := programs[testCase.Source]; ok {
			continue
		}
		program, e := assembleSubmission(filepath.Join(conf.StudentCodePath, testCase.Source), asmConf)
		if e != nil {
			compilationTestCase.OutputPrintLn(testCase.Source + ": " + e.Error())
			compilationTestCase.SetStatus(false)
		} else {
			compilationTestCase.OutputPrintf("%s: assembled %d instructions\n", testCase.Source, len(program.Words))
			totalInstructions += len(program.Words)
		}
		programs[testCase.Source] = program
	}
	if compilationTestCase.Status == "passed" {
		gso.AddTest(compilationTestCase, conf.CompilationPoints)
	} else {
		gso.AddTest(compilationTestCase, 0)
	}

	tcRes := make(map[string]tcTypePair) // key is the visibility of the test case
	for _, testCase := range conf.TestCases {
		correct, progOut := asmAutogradeTestCase(conf, testCase, programs[testCase.Source])

		earnedPoints := 0
		passFail := "\n[FAIL] "
		if correct {
			earnedPoints = testCase.Points
			passFail = "[PASS] "
		}

		outputStr := passFail + "Test Case: " + testCase.Name + " (" + strconv.Itoa(testCase.Number) + ")\n"
		outputStr += progOut

		res := tcRes[testCase.Visibility]
		res.total++
		if correct {
			res.correct++
		}
		res.earnedPoints += earnedPoints
		res.totalPoints += testCase.Points
		res.output += outputStr
		tcRes[testCase.Visibility] = res
	}

	// collating the results, visible first
	visibilities := make([]string, 0, len(tcRes))
	for visibility := range tcRes {
		visibilities = append(visibilities, visibility)
	}
	sort.Slice(visibilities, func(i, j int) bool {
		if (visibilities[i] == "visible") != (visibilities[j] == "visible") {
			return visibilities[i] == "visible"
		}
		return visibilities[i] < visibilities[j]
	})
	for _, visibility := range visibilities {
		res := tcRes[visibility]
		tcTypeStr := "Smoke Test Cases"
		if visibility != "visible" {
			tcTypeStr = "All Other Test Cases"
		}
		tc := CreateTestCase(tcTypeStr, res.totalPoints, visibility)
		tc.SetStatus(res.correct == res.total)
		tc.OutputPrintLn("Number Passed: " + strconv.Itoa(res.correct) + "/" + strconv.Itoa(res.total))
		tc.OutputPrintLn(res.output)
		gso.AddTest(tc, res.earnedPoints)
	}

	gso.AddLeaderBoardEntry(GradescopeLeaderBoardEntry{
		Name:  "Instructions",
		Value: totalInstructions,
		Order: "asc",
	})

	score, maxScore := gso.Score()
	gso.Output = fmt.Sprintf("%s: %d/%d points", conf.AssignmentName, score, maxScore)
	glog.Infof("Autograder: %s", gso.Output)

	if conf.ResultsPath == "" {
		return gso, nil
	}
	return gso, gso.Save(conf.ResultsPath)
}

func assembleSubmission(path string, asmConf assembler.AssemblerConfig) (*assembler.Program, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	return assembler.Assemble(f, asmConf)
}

func asmAutogradeTestCase(conf *Config, testCase TestCase, program *assembler.Program) (bool, string) {
	if program == nil {
		return false, "Submission did not assemble.\n"
	}

	output := ""
	correct := true
	if testCase.Expected != "" {
		ok, out := compareWithExpected(filepath.Join(conf.AssignmentCodeDir, testCase.Expected), program)
		correct = correct && ok
		output += out
	}
	if len(testCase.Checks) > 0 {
		ok, out := runChecks(conf.CycleLimit, testCase, program)
		correct = correct && ok
		output += out
	}
	return correct, output
}

func compareWithExpected(path string, program *assembler.Program) (bool, string) {
	f, e := os.Open(path)
	if e != nil {
		return false, "Could not open reference output: " + e.Error() + "\n"
	}
	defer f.Close()

	expected, e := assembler.ReadText(f)
	if e != nil {
		return false, "Could not read reference output: " + e.Error() + "\n"
	}

	for i := 0; i < len(expected) && i < len(program.Words); i++ {
		if expected[i] != program.Words[i] {
			return false, fmt.Sprintf("Instruction %d (source line %d): expected %s, got %s\n",
				i, program.SourceLines[i]+1, assembler.FormatWord(expected[i]), assembler.FormatWord(program.Words[i]))
		}
	}
	if len(expected) != len(program.Words) {
		return false, fmt.Sprintf("Expected %d instructions, got %d\n", len(expected), len(program.Words))
	}
	return true, fmt.Sprintf("All %d instructions match\n", len(expected))
}

func runChecks(cycleLimit uint64, testCase TestCase, program *assembler.Program) (bool, string) {
	inst := emulator.NewEmulator(emulator.EmulatorConfig{
		Program:      program.Words,
		RuntimeLimit: cycleLimit,
	})
	for _, v := range testCase.Setup {
		inst.WriteRAM(v.Address, v.Value)
	}
	inst.Emulate()

	if errs := inst.GetErrors(); len(errs) > 0 {
		return false, "Runtime error: " + errs[0].Error() + "\n"
	}

	output := ""
	correct := true
	for _, check := range testCase.Checks {
		got := inst.ReadRAM(check.Address)
		if got != check.Value {
			correct = false
			output += fmt.Sprintf("RAM[%d]: expected %d, got %d\n", check.Address, int16(check.Value), int16(got))
		}
	}
	if correct {
		output += fmt.Sprintf("All %d RAM checks passed after %d instructions\n", len(testCase.Checks), inst.GetTotalInstructionsExecuted())
	}
	return correct, output
}
