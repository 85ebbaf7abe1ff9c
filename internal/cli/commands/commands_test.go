package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itkit/internal/config"
	"itkit/internal/domain"
	"itkit/internal/storage"
)

const scenarioTable = "../../../testdata/scenarios.yaml"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	tool := filepath.Join(dir, "fakemvn")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\nexec /bin/sh ./build.sh \"$@\"\n"), 0755))

	cfg := config.New()
	cfg.BuildCommand = tool
	cfg.FixturesRoot = "../../../testdata/fixtures"
	cfg.WorkRoot = filepath.Join(dir, "work")
	cfg.ScenarioFile = scenarioTable
	cfg.DefaultOptions = []string{"--batch-mode"}
	cfg.Processors = 2
	cfg.HistoryDSN = "sqlite3://" + filepath.Join(dir, "history.db")
	return cfg
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestRunCommand_SelectScenarios(t *testing.T) {
	cfg := testConfig(t)
	c := NewCommands(cfg)

	cfg.Flags.Filter = "fork-*"
	selected, err := c.Run.selectScenarios(scenarioTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"fork-always", "fork-never"}, names(selected))

	cfg.Flags.OnlyFailed = true
	_, err = c.Run.selectScenarios(scenarioTable)
	assert.Error(t, err, "no previous run")

	st := storage.NewJSONStorage(cfg)
	require.NoError(t, st.SaveOutput(&domain.RunOutput{Details: []domain.ScenarioRecord{
		{Scenario: "fork-never"},
		{Scenario: "fork-always", Resolved: true},
		{Scenario: "junit3-single-test"},
	}}))
	selected, err = c.Run.selectScenarios(scenarioTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"fork-never"}, names(selected))
}

func TestRunCommand_Execute(t *testing.T) {
	cfg := testConfig(t)
	c := NewCommands(cfg)
	cfg.Flags.Filter = "junit3-*"

	require.NoError(t, c.Run.Execute(testCommand(), nil))

	output, err := storage.NewJSONStorage(cfg).Load()
	require.NoError(t, err)
	assert.Equal(t, 1, output.Meta.TotalScenarios)
	assert.Equal(t, 1, output.Meta.PassedScenarios)
	assert.Empty(t, output.Details)

	history, err := storage.OpenSQL(cfg.HistoryDSN)
	require.NoError(t, err)
	defer history.Close()
	runs, err := history.RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, output.Meta.RunID, runs[0].RunID)
}

func TestRunCommand_Plan(t *testing.T) {
	cfg := testConfig(t)
	c := NewCommands(cfg)
	cfg.Flags.Plan = true

	require.NoError(t, c.Run.Execute(testCommand(), []string{scenarioTable}))

	_, err := os.Stat(cfg.GetOutputPath())
	assert.True(t, os.IsNotExist(err), "planning does not run anything")
}

func TestRunCommand_NothingSelected(t *testing.T) {
	cfg := testConfig(t)
	c := NewCommands(cfg)
	cfg.Flags.Filter = "does-not-exist"

	assert.NoError(t, c.Run.Execute(testCommand(), nil))
}

func TestRunCommand_FailedScenarios(t *testing.T) {
	cfg := testConfig(t)
	table := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(table, []byte(`scenarios:
  - name: wrong-count
    fixture: junit3
    expect:
      counts: {total: 5}
`), 0644))
	cfg.ScenarioFile = table
	c := NewCommands(cfg)

	err := c.Run.Execute(testCommand(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrScenariosFailed))

	output, err := storage.NewJSONStorage(cfg).Load()
	require.NoError(t, err)
	require.Len(t, output.Details, 1)
	assert.Equal(t, "wrong-count", output.Details[0].Scenario)
}

func TestReportCommand_Execute(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TEST-org.example.ATest.xml"), []byte(`<?xml version="1.0" encoding="UTF-8"?>
<testsuite name="org.example.ATest" tests="2" errors="0" skipped="0" failures="1">
  <testcase name="ok" classname="org.example.ATest"/>
  <testcase name="bad" classname="org.example.ATest"><failure message="boom"/></testcase>
</testsuite>
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TEST-org.example.BTest.xml"), []byte(`<?xml version="1.0" encoding="UTF-8"?>
<testsuite name="org.example.BTest" tests="1" errors="0" skipped="0" failures="0">
  <testcase name="ok" classname="org.example.BTest"/>
</testsuite>
`), 0644))
	logFile := filepath.Join(dir, "log.txt")
	require.NoError(t, os.WriteFile(logFile, []byte("[INFO] Tests run: 3, Failures: 1, Errors: 0, Skipped: 0\n"), 0644))

	merged := filepath.Join(dir, "merged", "TEST-all.xml")
	cfg.Flags.Merge = merged
	cfg.Flags.ClassFilter = "org.example.*"
	cfg.Flags.LogFile = logFile

	c := NewCommands(cfg)
	require.NoError(t, c.Report.Execute(testCommand(), []string{dir}))

	data, err := os.ReadFile(merged)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tests="3"`)
	assert.Contains(t, string(data), `name="all"`)
}

func TestListCommand_Execute(t *testing.T) {
	cfg := testConfig(t)
	cfg.Flags.TestClasses = true
	c := NewCommands(cfg)

	assert.NoError(t, c.List.Execute(testCommand(), nil))

	cfg.FixturesRoot = filepath.Join(t.TempDir(), "missing")
	assert.Error(t, c.List.Execute(testCommand(), nil))
}

func TestHistoryAndMigrate_NeedDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.HistoryDSN = ""
	c := NewCommands(cfg)

	assert.ErrorIs(t, c.Migrate.Execute(testCommand(), nil), errNoHistory)
	assert.ErrorIs(t, c.History.Execute(testCommand(), nil), errNoHistory)
}

func TestMigrateAndHistory(t *testing.T) {
	cfg := testConfig(t)
	c := NewCommands(cfg)

	require.NoError(t, c.Migrate.Execute(testCommand(), nil))
	require.NoError(t, c.Migrate.Execute(testCommand(), nil))
	assert.NoError(t, c.History.Execute(testCommand(), nil))
}

func names(scenarios []domain.Scenario) []string {
	out := make([]string, len(scenarios))
	for i, sc := range scenarios {
		out[i] = sc.Name
	}
	return out
}
