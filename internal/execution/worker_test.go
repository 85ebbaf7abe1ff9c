package execution

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itkit/internal/config"
	"itkit/internal/domain"
)

type fakeScenarioRunner struct {
	mu      sync.Mutex
	failing map[string]bool
	ran     []string
	workers map[int]bool
	calls   atomic.Int32
}

func (f *fakeScenarioRunner) Run(ctx context.Context, sc domain.Scenario, workerID int) domain.ScenarioResult {
	f.calls.Add(1)
	f.mu.Lock()
	f.ran = append(f.ran, sc.Name)
	if f.workers == nil {
		f.workers = map[int]bool{}
	}
	f.workers[workerID] = true
	f.mu.Unlock()
	return domain.ScenarioResult{Scenario: sc.Name, Success: !f.failing[sc.Name]}
}

func scenarios(names ...string) []domain.Scenario {
	out := make([]domain.Scenario, len(names))
	for i, n := range names {
		out[i] = domain.Scenario{Name: n}
	}
	return out
}

func TestWorkerPool_Execute(t *testing.T) {
	cfg := config.New()
	cfg.Processors = 3
	runner := &fakeScenarioRunner{failing: map[string]bool{"b": true}}
	pool := NewWorkerPool(cfg, runner, NewRoundRobinScheduler())

	results, _, err := pool.Execute(context.Background(), scenarios("a", "b", "c", "d"))
	require.NoError(t, err)
	require.Len(t, results, 4)

	var names []string
	failed := 0
	for _, r := range results {
		names = append(names, r.Scenario)
		if !r.Success {
			failed++
		}
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
	assert.Equal(t, 1, failed)
	for id := range runner.workers {
		assert.True(t, id >= 1 && id <= 3, "worker id %d out of range", id)
	}
}

func TestWorkerPool_Empty(t *testing.T) {
	pool := NewWorkerPool(config.New(), &fakeScenarioRunner{}, NewRoundRobinScheduler())
	results, duration, err := pool.Execute(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, results)
	assert.Zero(t, duration)
}

func TestWorkerPool_FailFast(t *testing.T) {
	cfg := config.New()
	cfg.Processors = 1
	runner := &fakeScenarioRunner{failing: map[string]bool{"b": true}}
	pool := NewWorkerPool(cfg, runner, NewRoundRobinScheduler())

	results, _, err := pool.ExecuteWithOptions(context.Background(), scenarios("a", "b", "c", "d", "e"), true)
	require.NoError(t, err)

	// With one worker the queue is consumed in order; nothing after "b" may report.
	require.NotEmpty(t, results)
	last := results[len(results)-1]
	assert.Equal(t, "b", last.Scenario)
	assert.False(t, last.Success)
	assert.Len(t, results, 2)
}

func TestWorkerPool_Plan(t *testing.T) {
	cfg := config.New()
	cfg.Processors = 2
	pool := NewWorkerPool(cfg, &fakeScenarioRunner{}, NewRoundRobinScheduler())

	plan := pool.Plan(scenarios("a", "b", "c"))
	require.Len(t, plan, 2)
	assert.Len(t, plan[0], 2)
	assert.Len(t, plan[1], 1)
}
