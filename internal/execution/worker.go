package execution

import (
	"context"
	"sync"
	"time"

	"itkit/internal/config"
	"itkit/internal/domain"
	"itkit/internal/ui"
)

// WorkerPool manages a pool of workers for parallel scenario execution
type WorkerPool struct {
	config    *config.Config
	runner    ScenarioRunner
	scheduler Scheduler
	progress  *ui.ProgressBar
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner ScenarioRunner, scheduler Scheduler) *WorkerPool {
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress *ui.ProgressBar) {
	wp.progress = progress
}

// Plan returns how scenarios would be distributed over the configured workers
func (wp *WorkerPool) Plan(scenarios []domain.Scenario) [][]domain.Scenario {
	return wp.scheduler.Schedule(scenarios, wp.workerCount())
}

// Execute executes scenarios in parallel using worker pool (no fail-fast).
func (wp *WorkerPool) Execute(ctx context.Context, scenarios []domain.Scenario) ([]domain.ScenarioResult, time.Duration, error) {
	return wp.ExecuteWithOptions(ctx, scenarios, false)
}

// ExecuteWithOptions executes scenarios with optional fail-fast (stop scheduling after the first failure).
func (wp *WorkerPool) ExecuteWithOptions(ctx context.Context, scenarios []domain.Scenario, failFast bool) ([]domain.ScenarioResult, time.Duration, error) {
	if len(scenarios) == 0 {
		return nil, 0, nil
	}
	if !failFast {
		return wp.executeAll(ctx, scenarios)
	}
	return wp.executeFailFast(ctx, scenarios)
}

func (wp *WorkerPool) workerCount() int {
	if wp.config.Processors <= 0 {
		return 1
	}
	return wp.config.Processors
}

// executeAll runs every scenario.
func (wp *WorkerPool) executeAll(ctx context.Context, scenarios []domain.Scenario) ([]domain.ScenarioResult, time.Duration, error) {
	queue := make(chan domain.Scenario, len(scenarios))
	results := make(chan domain.ScenarioResult, len(scenarios))
	for _, sc := range scenarios {
		queue <- sc
	}
	close(queue)

	var mu sync.Mutex
	var passed, failed int
	startTime := time.Now()

	var wg sync.WaitGroup
	for i := 1; i <= wp.workerCount(); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for sc := range queue {
				if ctx.Err() != nil {
					return
				}
				result := wp.runner.Run(ctx, sc, workerID)
				results <- result
				mu.Lock()
				if result.Success {
					passed++
				} else {
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(passed, failed)
				}
				mu.Unlock()
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var all []domain.ScenarioResult
	for result := range results {
		all = append(all, result)
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}
	return all, time.Since(startTime), ctx.Err()
}

// executeFailFast runs scenarios and stops handing out work after the first failure.
func (wp *WorkerPool) executeFailFast(parent context.Context, scenarios []domain.Scenario) ([]domain.ScenarioResult, time.Duration, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	queue := make(chan domain.Scenario, 1)
	results := make(chan domain.ScenarioResult, len(scenarios))

	go func() {
		defer close(queue)
		for _, sc := range scenarios {
			select {
			case <-ctx.Done():
				return
			case queue <- sc:
			}
		}
	}()

	var mu sync.Mutex
	var passed, failed int
	var seenFailure bool
	startTime := time.Now()

	var wg sync.WaitGroup
	for i := 1; i <= wp.workerCount(); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for sc := range queue {
				mu.Lock()
				done := seenFailure
				mu.Unlock()
				if done {
					continue
				}
				// Builds already started are not interrupted by the fail-fast cancel
				result := wp.runner.Run(parent, sc, workerID)
				results <- result
				mu.Lock()
				if result.Success {
					passed++
				} else {
					failed++
					seenFailure = true
					cancel()
				}
				if wp.progress != nil {
					wp.progress.Update(passed, failed)
				}
				mu.Unlock()
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var all []domain.ScenarioResult
	for result := range results {
		all = append(all, result)
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}
	return all, time.Since(startTime), parent.Err()
}
