package autograder

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfigPath is where Gradescope places the autograder source.
const DefaultConfigPath = "source/autograderConfig.json"

// RAMValue is one RAM word, either preset before a test case runs or expected after it halts.
type RAMValue struct {
	Address uint16 `json:"address"`
	Value   uint16 `json:"value"`
}

type TestCase struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	Points     int    `json:"points"`

	Source   string     `json:"source"`   // submission file, relative to StudentCodePath
	Expected string     `json:"expected"` // reference .hack file, relative to AssignmentCodeDir
	Setup    []RAMValue `json:"setup"`
	Checks   []RAMValue `json:"checks"`
}

type Config struct {
	AssignmentName    string     `json:"assignmentName"`
	AssignmentCodeDir string     `json:"assignmentCodeDir"`
	StudentCodePath   string     `json:"studentCodePath"`
	TestCases         []TestCase `json:"testCases"`
	CompilationPoints int        `json:"compilationPoints"`
	ResultsPath       string     `json:"resultsPath"`
	CycleLimit        uint64     `json:"cycleLimit"`
}

var conf *Config

// GetConfig returns the config at DefaultConfigPath, or nil when there is none.
func GetConfig() *Config {
	if conf == nil {
		c, e := LoadConfig(DefaultConfigPath)
		if e != nil {
			return nil
		}
		conf = c
	}

	return conf
}

func LoadConfig(path string) (*Config, error) {
	b, e := os.ReadFile(path)
	if e != nil {
		return nil, e
	}

	c := &Config{
		ResultsPath: "results/results.json",
		CycleLimit:  1_000_000,
	}
	if e := json.Unmarshal(b, c); e != nil {
		return nil, fmt.Errorf("error unmarshalling %s: %w", path, e)
	}
	return c, nil
}
