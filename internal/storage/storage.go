// Package storage persists scenario runs: the last run as JSON for the
// failures viewer and --failed reruns, and every run in an SQL history.
package storage

import (
	"time"

	"github.com/google/uuid"

	"itkit/internal/config"
	"itkit/internal/domain"
)

// Storage persists and loads the last scenario run (e.g. for the failures viewer).
type Storage interface {
	Save(results []domain.ScenarioResult, duration time.Duration, workers int) (*domain.RunOutput, error)
	Load() (*domain.RunOutput, error)
	// SaveOutput writes the full output (e.g. after toggling resolved entries).
	SaveOutput(output *domain.RunOutput) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// NewRunOutput summarizes scenario results under a new run id. Only failed
// scenarios are kept in the details.
func NewRunOutput(results []domain.ScenarioResult, duration time.Duration, workers int) *domain.RunOutput {
	output := &domain.RunOutput{
		Meta: domain.RunMeta{
			RunID:           uuid.NewString(),
			TotalScenarios:  len(results),
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Workers:         workers,
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Details: []domain.ScenarioRecord{},
	}
	for _, r := range results {
		output.Meta.FailedTestCases += len(r.Failures)
		if r.Success {
			output.Meta.PassedScenarios++
			continue
		}
		output.Meta.FailedScenarios++
		output.Details = append(output.Details, domain.ScenarioRecord{
			Scenario: r.Scenario,
			Fixture:  r.Fixture,
			WorkDir:  r.WorkDir,
			Problems: r.Problems,
			Failures: r.Failures,
		})
	}
	return output
}

// UnresolvedScenarios returns the names of failed scenarios not marked resolved
func UnresolvedScenarios(output *domain.RunOutput) []string {
	var names []string
	for _, d := range output.Details {
		if !d.Resolved {
			names = append(names, d.Scenario)
		}
	}
	return names
}
