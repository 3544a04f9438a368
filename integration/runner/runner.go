package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/mud-engine/pkg/actor"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running mud-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Timeout:           10 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// characterName gives each run its own character so suites never share
// progress.
func characterName(suite TestSuite) string {
	base := suite.Character
	if base == "" {
		base = "tester"
	}
	return base + "_" + uuid.New().String()[:8]
}

// RunSuite creates a fresh character, executes every step and deletes the
// character again.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	name := characterName(suite)
	c, err := CreateCharacter(ctx, r.Client, r.BaseURL, name)
	if err != nil {
		result.Error = fmt.Errorf("failed to create character: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	id := c.ID()
	result.Character = id
	defer func() {
		if err := DeleteCharacter(context.WithoutCancel(ctx), r.Client, r.BaseURL, id); err != nil {
			r.Logger("    Warning: failed to delete character %s: %v", id, err)
		}
	}()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, name, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// executeStep sends the step's command, or resets the character, and checks
// expectations against the response and the stored character.
func (r *Runner) executeStep(ctx context.Context, name string, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	id := actor.CharacterID(name)

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var (
		quit     bool
		response string
	)
	if step.Command == ResetCharacterCommand {
		if err := DeleteCharacter(ctx, r.Client, r.BaseURL, id); err != nil {
			result.Error = fmt.Errorf("failed to reset character: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		if _, err := CreateCharacter(ctx, r.Client, r.BaseURL, name); err != nil {
			result.Error = fmt.Errorf("failed to reset character: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		result.IsReset = true
		response = "[CHARACTER RESET]"
	} else {
		res, err := PostCommand(ctx, r.Client, r.BaseURL, id, step.Command)
		if err != nil {
			result.Error = fmt.Errorf("failed to post command: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		quit, response = res.Quit, res.Message
	}
	result.ResponseText = response

	c, err := GetCharacter(ctx, r.Client, r.BaseURL, id)
	if err != nil {
		result.Error = fmt.Errorf("failed to get character after step: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	if err := checkExpectations(step.Expectations, c, quit, response); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// checkExpectations validates the expectations against the character and
// the command response.
func checkExpectations(exp Expectations, c *actor.Character, quit bool, responseText string) error {
	if exp.World != nil && c.World != *exp.World {
		return fmt.Errorf("expected world %s, got %s", *exp.World, c.World)
	}
	if exp.Room != nil && c.CurrentRoom != *exp.Room {
		return fmt.Errorf("expected room %s, got %s", *exp.Room, c.CurrentRoom)
	}

	// Full inventory check (order independent)
	if exp.Inventory != nil {
		want := slices.Sorted(slices.Values(exp.Inventory))
		got := slices.Sorted(slices.Values(c.Inventory))
		if !slices.Equal(want, got) {
			return fmt.Errorf("expected inventory %v, got %v", exp.Inventory, c.Inventory)
		}
	}

	if exp.Money != nil && c.Money != *exp.Money {
		return fmt.Errorf("expected money %d, got %d", *exp.Money, c.Money)
	}
	if exp.Level != nil && c.Stats.Level != *exp.Level {
		return fmt.Errorf("expected level %d, got %d", *exp.Level, c.Stats.Level)
	}
	if exp.XP != nil && c.Stats.XP != *exp.XP {
		return fmt.Errorf("expected xp %d, got %d", *exp.XP, c.Stats.XP)
	}
	if exp.InCombat != nil && c.CombatState.InCombat != *exp.InCombat {
		return fmt.Errorf("expected in_combat to be %t, got %t", *exp.InCombat, c.CombatState.InCombat)
	}
	for _, id := range exp.Equipped {
		found := false
		for _, equipped := range c.Equipment.Equipped() {
			if equipped == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("expected %s to be equipped, got %v", id, c.Equipment.Equipped())
		}
	}

	if exp.Quit != nil && quit != *exp.Quit {
		return fmt.Errorf("expected quit to be %t, got %t", *exp.Quit, quit)
	}
	if exp.Response != nil && responseText != *exp.Response {
		return fmt.Errorf("expected response %q, got %q", *exp.Response, responseText)
	}

	lowerResponse := strings.ToLower(responseText)
	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', got %q", expectedText, responseText)
		}
	}
	for _, unexpectedText := range exp.ResponseNotContains {
		if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected response to NOT contain '%s', got %q", unexpectedText, responseText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response %q didn't match regex pattern: %s", responseText, exp.ResponseRegex)
		}
	}

	return nil
}
