package execution

import (
	"context"
	"time"

	"itkit/internal/domain"
)

// Driver runs exactly one external build per call
type Driver interface {
	Execute(ctx context.Context, inv domain.BuildInvocation) (domain.BuildOutcome, error)
}

// Executor executes scenarios and returns results
type Executor interface {
	Execute(ctx context.Context, scenarios []domain.Scenario) ([]domain.ScenarioResult, time.Duration, error)
}

// ScenarioRunner runs a single scenario on behalf of a worker
type ScenarioRunner interface {
	Run(ctx context.Context, sc domain.Scenario, workerID int) domain.ScenarioResult
}
