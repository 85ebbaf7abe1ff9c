package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itkit/internal/config"
	"itkit/internal/domain"
	"itkit/internal/execution"
)

func TestLoad(t *testing.T) {
	scenarios, err := Load("testdata/table.yaml")
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	assert.Equal(t, []string{"passing", "no-tests", "fork-always"}, Names(scenarios))
	assert.Equal(t, &domain.Counts{Total: 1}, scenarios[0].Expect.Counts)
	assert.Equal(t, map[string]string{"failIfNoTests": "true"}, scenarios[1].SysProps)
	assert.True(t, scenarios[1].ExpectFailure)
	assert.Equal(t, 2, scenarios[2].Repeat)
	assert.Equal(t, "target/pids.txt", scenarios[2].Expect.DistinctMarkers)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		contains []string
	}{
		{"missing file", "testdata/missing.yaml", []string{"read scenario table"}},
		{"invalid", "testdata/invalid.yaml", []string{
			`scenario "dup": duplicate name`,
			`scenario "dup": fixture is required`,
			"scenario #3: name is required",
			"repeat must not be negative",
		}},
		{"unknown key", "testdata/unknown-key.yaml", []string{"expct"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, err.Error(), c)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse([]byte(""))
	assert.EqualError(t, err, "no scenarios defined")
}

func TestSelect(t *testing.T) {
	scenarios := []domain.Scenario{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	assert.Equal(t, []string{"a", "c"}, Names(Select(scenarios, []string{"c", "a", "zzz"})))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tool := filepath.Join(t.TempDir(), "fakemvn")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\nexec /bin/sh ./build.sh \"$@\"\n"), 0755))

	cfg := config.New()
	cfg.FixturesRoot = "../../testdata/fixtures"
	cfg.WorkRoot = t.TempDir()
	cfg.BuildCommand = tool
	return cfg
}

func TestRunner_Table(t *testing.T) {
	cfg := testConfig(t)
	scenarios, err := Load("testdata/table.yaml")
	require.NoError(t, err)

	runner := NewRunner(cfg, execution.NewRunner(cfg))
	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			result := runner.Run(context.Background(), sc, 1)
			assert.True(t, result.Success, "problems: %v", result.Problems)
			assert.NoError(t, result.Error)
			assert.Equal(t, sc.Name, result.Scenario)
			assert.DirExists(t, result.WorkDir)
		})
	}
}

func TestRunner_ReportsEveryMismatch(t *testing.T) {
	cfg := testConfig(t)
	sc := domain.Scenario{
		Name:    "wrong-expectations",
		Fixture: "same-simple-name",
		Expect: domain.Expectation{
			Counts:         &domain.Counts{Total: 2},
			LogContains:    []string{"never printed"},
			LogNotContains: []string{"BUILD SUCCESS"},
			Files:          []string{"target/missing.txt"},
			EqualMarkers:   "target/pids.txt",
		},
	}

	result := NewRunner(cfg, execution.NewRunner(cfg)).Run(context.Background(), sc, 3)
	assert.False(t, result.Success)
	assert.NoError(t, result.Error)
	assert.Equal(t, domain.Counts{Total: 3, Failures: 1}, result.Counts)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "two.SameTest", result.Failures[0].ClassName)

	require.Len(t, result.Problems, 5)
	assert.Contains(t, result.Problems[0], "total tests: expected 2 but was 3")
	assert.Contains(t, result.Problems[0], "failures: expected 0 but was 1")
	assert.Contains(t, result.Problems[1], "never printed")
	assert.Contains(t, result.Problems[2], "expected none but was 1")
	assert.Contains(t, result.Problems[3], "target/missing.txt")
	assert.Contains(t, result.Problems[4], "marker file target/pids.txt")
}

func TestRunner_UnexpectedBuildFailure(t *testing.T) {
	cfg := testConfig(t)
	sc := domain.Scenario{
		Name:     "fails",
		Fixture:  "no-tests",
		SysProps: map[string]string{"failIfNoTests": "true"},
	}

	result := NewRunner(cfg, execution.NewRunner(cfg)).Run(context.Background(), sc, 1)
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Problems)
	assert.Contains(t, result.Problems[0], "build failed with exit code 1")
	assert.False(t, IsSetupError(result))
}

func TestRunner_MissingFixture(t *testing.T) {
	cfg := testConfig(t)
	result := NewRunner(cfg, execution.NewRunner(cfg)).Run(context.Background(), domain.Scenario{Name: "x", Fixture: "nope"}, 1)
	assert.False(t, result.Success)
	assert.True(t, IsSetupError(result))
	assert.Empty(t, result.WorkDir)
}

func TestRunner_WorkerPool(t *testing.T) {
	cfg := testConfig(t)
	cfg.Processors = 2
	scenarios, err := Load("testdata/table.yaml")
	require.NoError(t, err)

	pool := execution.NewWorkerPool(cfg, NewRunner(cfg, execution.NewRunner(cfg)), execution.NewRoundRobinScheduler())
	results, _, err := pool.Execute(context.Background(), scenarios)
	require.NoError(t, err)
	require.Len(t, results, len(scenarios))
	for _, r := range results {
		assert.True(t, r.Success, "%s: %v", r.Scenario, r.Problems)
	}
}
