package runner

import (
	"time"
)

// ResetCharacterCommand deletes the suite's character and creates it again
// at the start room instead of sending a command.
const ResetCharacterCommand = "RESET_CHARACTER"

// TestSuite defines a complete integration test scenario.
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name      string     `json:"name"`
	Character string     `json:"character,omitempty"` // Base name; a random suffix keeps runs apart
	Steps     []TestStep `json:"steps,omitempty"`     // Used for regular tests
	Cases     []string   `json:"cases,omitempty"`     // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep sends one command and checks the outcome.
// Use command: "RESET_CHARACTER" to start over with a fresh character.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Command      string       `json:"command"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a step executes
type Expectations struct {
	// Character properties
	World     *string  `json:"world,omitempty"`
	Room      *string  `json:"room,omitempty"`
	Inventory []string `json:"inventory,omitempty"` // Full inventory contents (order independent)
	Money     *int     `json:"money,omitempty"`
	Level     *int     `json:"level,omitempty"`
	XP        *int     `json:"xp,omitempty"`
	InCombat  *bool    `json:"in_combat,omitempty"`
	Equipped  []string `json:"equipped,omitempty"` // Item ids that must be in some slot

	// Response analysis
	Quit                *bool    `json:"quit,omitempty"`
	Response            *string  `json:"response,omitempty"` // Exact match
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // Reset steps do not count toward pass/fail metrics
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Character string
	Duration  time.Duration
	Error     error
}
