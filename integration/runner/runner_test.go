package runner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const casesDir = "../cases"

func TestCasesAgainstMemoryStorage(t *testing.T) {
	files, err := DiscoverTestFiles(casesDir)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		jobs, err := LoadTestSuiteWithExpansion(file, casesDir)
		require.NoError(t, err, file)

		for _, job := range jobs {
			t.Run(filepath.Base(file)+"/"+job.Name, func(t *testing.T) {
				r := NewRunner(storage.NewMemoryStorage())
				r.Logger = t.Logf
				result, err := r.RunSuite(context.Background(), job.Suite)
				require.NoError(t, err)
				for _, step := range result.Results {
					assert.True(t, step.Success, "step %q: %v", step.StepName, step.Error)
				}
			})
		}
	}
}

func TestLoadTestSuiteWithExpansion_Sequence(t *testing.T) {
	jobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, "all.yaml"), casesDir)
	require.NoError(t, err)
	require.Len(t, jobs, 5)
	assert.Equal(t, "riddle_and_artifact", jobs[0].Name)
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	wrong := 55
	suite := TestSuite{
		Name: "failing",
		Steps: []TestStep{
			{Name: "bad health", Do: "act", Input: "go_cave", Expectations: Expectations{Health: &wrong}},
			{Name: "bogus action", Do: "fly"},
			{Name: "still runs", Do: "act", Input: "go_village"},
		},
	}

	r := NewRunner(storage.NewMemoryStorage())
	result, err := r.RunSuite(context.Background(), suite)
	require.Error(t, err)
	require.Len(t, result.Results, 3)
	assert.False(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.True(t, result.Results[2].Success)

	r.ErrorHandlingMode = ErrorHandlingExit
	result, err = r.RunSuite(context.Background(), suite)
	require.Error(t, err)
	assert.Len(t, result.Results, 1)
}

func TestCheckExpectations_Inventory(t *testing.T) {
	s := state.NewSession("owner")

	assert.NoError(t, checkExpectations(Expectations{Inventory: []string{"Меч", "меч"}}, s, []string{"меч", "МЕЧ"}))
	assert.Error(t, checkExpectations(Expectations{Inventory: []string{"меч"}}, s, []string{"меч", "меч"}))
	assert.Error(t, checkExpectations(Expectations{EmptyInv: true}, s, []string{"зелье"}))
}

func TestSeedSession_UnknownLocation(t *testing.T) {
	r := NewRunner(storage.NewMemoryStorage())
	_, err := r.RunSuite(context.Background(), TestSuite{Name: "bad", Start: SeedState{Location: "moon"}})
	assert.Error(t, err)
}
