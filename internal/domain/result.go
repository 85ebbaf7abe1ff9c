package domain

import "time"

// ScenarioResult is the result of running one scenario
type ScenarioResult struct {
	Scenario string        // Scenario name
	Fixture  string        // Fixture it unpacked
	WorkDir  string        // Working directory used
	Success  bool          // Whether every expectation held
	Problems []string      // Expectation mismatches and errors, one per entry
	Counts   Counts        // Aggregate counts read from the reports
	Failures []TestFailure // Failed test cases found in the reports
	Error    error         // Setup or execution error
	Duration time.Duration // Time taken to run the scenario
}

// RunMeta contains metadata about a scenario run
type RunMeta struct {
	RunID           string  `json:"run_id"`
	TotalScenarios  int     `json:"total_scenarios"`
	FailedScenarios int     `json:"failed_scenarios"`
	PassedScenarios int     `json:"passed_scenarios"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// ScenarioRecord is the persisted form of a failed scenario
type ScenarioRecord struct {
	Scenario string        `json:"scenario"`
	Fixture  string        `json:"fixture"`
	WorkDir  string        `json:"work_dir"`
	Problems []string      `json:"problems"`
	Failures []TestFailure `json:"failures,omitempty"`
	Resolved bool          `json:"resolved,omitempty"` // Marked as resolved in the failures viewer
}

// RunOutput is the complete output structure for a scenario run
type RunOutput struct {
	Meta    RunMeta          `json:"meta"`
	Details []ScenarioRecord `json:"details"`
}
