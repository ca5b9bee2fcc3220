package runner

import (
	"time"

	"github.com/google/uuid"
)

// Special step actions that do not map to an engine call
const (
	ResetSessionAction = "RESET_SESSION"
)

// TestSuite defines a complete scripted play-through.
// Can either be a regular test with Start and Steps, or a suite that
// references other Cases. Roll fixes every treasure roll; when it is nil
// the engine uses a source seeded with Seed.
type TestSuite struct {
	Name  string     `yaml:"name"`
	Roll  *int       `yaml:"roll,omitempty"`
	Seed  uint64     `yaml:"seed,omitempty"`
	Start SeedState  `yaml:"start,omitempty"`
	Steps []TestStep `yaml:"steps,omitempty"`
	Cases []string   `yaml:"cases,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// SeedState is applied to a fresh session before the first step.
// Location is a location key such as "cave".
type SeedState struct {
	Location  string   `yaml:"location,omitempty"`
	Health    *int     `yaml:"health,omitempty"`
	Narrative string   `yaml:"narrative,omitempty"`
	Inventory []string `yaml:"inventory,omitempty"`
}

// TestStep defines a single request and its expected outcomes.
// Do is one of act, answer, craft, use, restart or RESET_SESSION; Input
// carries the action text, answer, recipe key or item name.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Do           string       `yaml:"do"`
	Input        string       `yaml:"input,omitempty"`
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check after a test step executes.
// Inventory is compared order independent with duplicates counted.
// A non-empty ErrorCode means the step must fail with that gameerr code.
type Expectations struct {
	Location     *string  `yaml:"location,omitempty"`
	Health       *int     `yaml:"health,omitempty"`
	Inventory    []string `yaml:"inventory,omitempty"`
	EmptyInv     bool     `yaml:"empty_inventory,omitempty"`
	IsEnded      *bool    `yaml:"is_ended,omitempty"`
	RiddleActive *bool    `yaml:"riddle_active,omitempty"`
	ErrorCode    string   `yaml:"error_code,omitempty"`

	NarrativeContains    []string `yaml:"narrative_contains,omitempty"`
	NarrativeNotContains []string `yaml:"narrative_not_contains,omitempty"`
	NarrativeRegex       string   `yaml:"narrative_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName  string
	Success   bool
	Error     error
	Duration  time.Duration
	Narrative string
	IsReset   bool // True if this was a RESET_SESSION step
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID // ID of the session used for this test
}
