package autograder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// GradescopeTest is one entry of the "tests" array in results.json.
type GradescopeTest struct {
	Number     string `json:"number,omitempty"`
	Name       string `json:"name"`
	MaxScore   int    `json:"max_score"`
	Score      int    `json:"score"`
	Output     string `json:"output"`
	Visibility string `json:"visibility"`
	Status     string `json:"status,omitempty"`
}

type GradescopeLeaderBoardEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Order string `json:"order,omitempty"`
}

type GradescopeOutput struct {
	ExecutionTime   int                          `json:"execution_time"` // seconds
	Output          string                       `json:"output,omitempty"`
	Tests           []GradescopeTest             `json:"tests"`
	LeaderboardData []GradescopeLeaderBoardEntry `json:"leaderboard"`

	started time.Time
}

func CreateGradescopeOutput() *GradescopeOutput {
	return &GradescopeOutput{
		Tests:           []GradescopeTest{},
		LeaderboardData: []GradescopeLeaderBoardEntry{},
		started:         time.Now(),
	}
}

// AddTest records test with the points earned. A test without a status is marked by whether it
// earned full marks.
func (gso *GradescopeOutput) AddTest(test GradescopeTest, score int) {
	test.Score = score
	if test.Status == "" {
		test.SetStatus(score == test.MaxScore)
	}
	gso.Tests = append(gso.Tests, test)
}

func (gso *GradescopeOutput) AddLeaderBoardEntry(entry GradescopeLeaderBoardEntry) {
	gso.LeaderboardData = append(gso.LeaderboardData, entry)
}

// Save writes the results json to path, creating its directory if needed.
func (gso *GradescopeOutput) Save(path string) error {
	gso.ExecutionTime = int(time.Since(gso.started).Seconds())
	b, e := json.MarshalIndent(gso, "", "  ")
	if e != nil {
		return e
	}

	if e := os.MkdirAll(filepath.Dir(path), 0755); e != nil {
		return e
	}
	return os.WriteFile(path, b, 0644)
}

// Score is the total score over all tests.
func (gso *GradescopeOutput) Score() (score, maxScore int) {
	for _, t := range gso.Tests {
		score += t.Score
		maxScore += t.MaxScore
	}
	return score, maxScore
}

func CreateTestCase(name string, maxScore int, visibility string) GradescopeTest {
	return GradescopeTest{
		Name:       name,
		MaxScore:   maxScore,
		Visibility: visibility,
	}
}

func (gt *GradescopeTest) SetStatus(success bool) {
	gt.Status = "failed"
	if success {
		gt.Status = "passed"
	}
}

func (gt *GradescopeTest) OutputPrintf(format string, args ...interface{}) {
	gt.Output += fmt.Sprintf(format, args...)
}

func (gt *GradescopeTest) OutputPrintLn(str string) {
	gt.Output += str + "\n"
}
