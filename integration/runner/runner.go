package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/engine"
	"github.com/jwebster45206/quest-engine/pkg/gameerr"
	"github.com/jwebster45206/quest-engine/pkg/rules"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
	"github.com/jwebster45206/quest-engine/pkg/world"
	"gopkg.in/yaml.v3"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes scripted play-throughs against an engine backed by Store.
type Runner struct {
	Store             storage.Storage
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	EngineLogger      *slog.Logger
}

// NewRunner creates a new test runner
func NewRunner(store storage.Storage) *Runner {
	return &Runner{
		Store:             store,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

type fixedRoller int

func (r fixedRoller) Intn(int) int { return int(r) }

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := yaml.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
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

// DiscoverTestFiles lists the .yaml case files in dir, sorted by name.
func DiscoverTestFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && (strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml")) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// RunSuite executes a complete test suite on a fresh session
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	var roller rules.Roller = rules.NewRoller(suite.Seed)
	if suite.Roll != nil {
		roller = fixedRoller(*suite.Roll)
	}
	eng := engine.New(r.Store, roller, r.EngineLogger)

	s, err := eng.CreateSession(ctx, "runner:"+suite.Name)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = s.ID

	if err := r.seedSession(ctx, s.ID, suite.Start); err != nil {
		result.Error = fmt.Errorf("failed to seed session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, eng, s.ID, step, suite.Start)
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

// seedSession overwrites the session's state and inventory with seed.
func (r *Runner) seedSession(ctx context.Context, id uuid.UUID, seed SeedState) error {
	s, err := r.Store.LoadSession(ctx, id)
	if err != nil {
		return err
	}
	s.Reset()
	if seed.Location != "" {
		loc := world.Location(seed.Location)
		if !loc.Valid() {
			return fmt.Errorf("unknown seed location %q", seed.Location)
		}
		s.SetLocation(loc)
	}
	if seed.Health != nil {
		s.Health = state.Clamp(*seed.Health, state.MinHealth, state.MaxHealth)
	}
	if seed.Narrative != "" {
		s.Narrative = seed.Narrative
	}
	if err := r.Store.SaveSession(ctx, s); err != nil {
		return err
	}

	if err := r.Store.DeleteAllForSession(ctx, id); err != nil {
		return err
	}
	for _, name := range seed.Inventory {
		if err := r.Store.InsertItem(ctx, state.NewItem(id, state.ItemSpec{Name: name, Description: name})); err != nil {
			return err
		}
	}
	return nil
}

// executeStep performs one step and checks its expectations
func (r *Runner) executeStep(ctx context.Context, eng *engine.Engine, id uuid.UUID, step TestStep, seed SeedState) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	var (
		s   *state.Session
		err error
	)
	switch step.Do {
	case ResetSessionAction:
		result.IsReset = true
		if err = r.seedSession(ctx, id, seed); err == nil {
			s, err = eng.GetSession(ctx, id)
		}
	case "act":
		s, err = eng.ApplyTurn(ctx, id, step.Input)
	case "answer":
		s, err = eng.AnswerRiddle(ctx, id, step.Input)
	case "craft":
		s, err = eng.Craft(ctx, id, step.Input)
	case "restart":
		s, err = eng.Restart(ctx, id)
	case "use":
		s, err = r.useByName(ctx, eng, id, step.Input)
	default:
		err = fmt.Errorf("unknown step action %q", step.Do)
	}
	result.Duration = time.Since(start)

	if step.Expectations.ErrorCode != "" {
		var ge *gameerr.Error
		if !errors.As(err, &ge) || string(ge.Code) != step.Expectations.ErrorCode {
			result.Error = fmt.Errorf("expected error code %s, got %v", step.Expectations.ErrorCode, err)
			return result
		}
		result.Success = true
		return result
	}
	if err != nil {
		result.Error = err
		return result
	}
	result.Narrative = s.Narrative

	items, err := r.Store.LoadInventory(ctx, id)
	if err != nil {
		result.Error = fmt.Errorf("failed to load inventory: %w", err)
		return result
	}

	if err := checkExpectations(step.Expectations, s, state.ItemNames(items)); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		return result
	}

	result.Success = true
	return result
}

// useByName uses the first inventory item called name. An unknown name
// uses a random item ID so the engine reports it as missing.
func (r *Runner) useByName(ctx context.Context, eng *engine.Engine, id uuid.UUID, name string) (*state.Session, error) {
	itemID := uuid.New()
	item, err := r.Store.FindItemByName(ctx, id, name)
	switch {
	case err == nil:
		itemID = item.ID
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}
	return eng.UseItem(ctx, id, itemID)
}

// checkExpectations validates the expectations against the session after a step
func checkExpectations(exp Expectations, s *state.Session, inventory []string) error {
	if exp.Location != nil {
		if got := string(s.LocationKey()); got != *exp.Location {
			return fmt.Errorf("expected location %s, got %s", *exp.Location, got)
		}
	}

	if exp.Health != nil {
		if s.Health != *exp.Health {
			return fmt.Errorf("expected health %d, got %d", *exp.Health, s.Health)
		}
	}

	// Full inventory check (order independent, duplicates counted)
	if len(exp.Inventory) > 0 || exp.EmptyInv {
		want := foldAll(exp.Inventory)
		got := foldAll(inventory)
		if !slices.Equal(want, got) {
			return fmt.Errorf("expected inventory %v, got %v", exp.Inventory, inventory)
		}
	}

	if exp.IsEnded != nil {
		if s.IsTerminal() != *exp.IsEnded {
			return fmt.Errorf("expected is_ended to be %t, got %t", *exp.IsEnded, s.IsTerminal())
		}
	}

	if exp.RiddleActive != nil {
		if s.RiddleActive() != *exp.RiddleActive {
			return fmt.Errorf("expected riddle_active to be %t, got %t", *exp.RiddleActive, s.RiddleActive())
		}
	}

	for _, text := range exp.NarrativeContains {
		if !textnorm.Contains(s.Narrative, text) {
			return fmt.Errorf("expected narrative to contain '%s', got %q", text, s.Narrative)
		}
	}

	for _, text := range exp.NarrativeNotContains {
		if textnorm.Contains(s.Narrative, text) {
			return fmt.Errorf("expected narrative to NOT contain '%s', got %q", text, s.Narrative)
		}
	}

	if exp.NarrativeRegex != "" {
		matched, err := regexp.MatchString(exp.NarrativeRegex, s.Narrative)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("narrative didn't match regex pattern: %s", exp.NarrativeRegex)
		}
	}

	return nil
}

func foldAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, textnorm.Fold(n))
	}
	slices.Sort(out)
	return out
}
