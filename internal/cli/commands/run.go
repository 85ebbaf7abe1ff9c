package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"itkit/internal/config"
	"itkit/internal/discovery"
	"itkit/internal/domain"
	"itkit/internal/execution"
	"itkit/internal/scenario"
	"itkit/internal/storage"
	"itkit/internal/ui"
)

// ErrScenariosFailed is returned when a run finishes with failed scenarios
var ErrScenariosFailed = errors.New("scenarios failed")

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	filter    *discovery.Filter
	executor  *execution.WorkerPool
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	executor *execution.WorkerPool,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		filter:    filter,
		executor:  executor,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	path := rc.config.ScenarioFile
	if len(args) > 0 {
		path = args[0]
	}

	scenarios, err := rc.selectScenarios(path)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		color.Yellow("No scenarios to execute")
		return nil
	}

	if rc.config.Flags.Plan {
		rc.formatter.PrintPlan(rc.executor.Plan(scenarios))
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	progressBar := ui.NewProgressBar(len(scenarios))
	rc.executor.SetProgress(progressBar)

	results, duration, err := rc.executor.ExecuteWithOptions(ctx, scenarios, rc.config.Flags.FailFast)
	if err != nil {
		return err
	}

	output, err := rc.storage.Save(results, duration, rc.config.Processors)
	if err != nil {
		return fmt.Errorf("failed to save scenario results: %w", err)
	}

	if rc.config.HistoryDSN != "" {
		if err := recordHistory(ctx, rc.config.HistoryDSN, output, results); err != nil {
			color.Yellow("Run history not recorded: %v", err)
		}
	}

	rc.formatter.PrintMetaStats(output)

	if output.Meta.FailedScenarios == 0 {
		return nil
	}
	if rc.config.Flags.ViewFailures {
		if err := rc.viewer.View(output); err != nil {
			return err
		}
	}
	return fmt.Errorf("%d of %d: %w", output.Meta.FailedScenarios, output.Meta.TotalScenarios, ErrScenariosFailed)
}

// selectScenarios loads the table and applies --filter and --failed
func (rc *RunCommand) selectScenarios(path string) ([]domain.Scenario, error) {
	all, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}

	names := rc.filter.FilterByName(scenario.Names(all), rc.config.Flags.Filter)

	if rc.config.Flags.OnlyFailed {
		last, err := rc.storage.Load()
		if err != nil {
			return nil, fmt.Errorf("--failed needs a previous run: %w", err)
		}
		failed := make(map[string]struct{})
		for _, name := range storage.UnresolvedScenarios(last) {
			failed[name] = struct{}{}
		}
		kept := names[:0]
		for _, name := range names {
			if _, ok := failed[name]; ok {
				kept = append(kept, name)
			}
		}
		names = kept
	}

	return scenario.Select(all, names), nil
}

func recordHistory(ctx context.Context, dsn string, output *domain.RunOutput, results []domain.ScenarioResult) error {
	history, err := storage.OpenSQL(dsn)
	if err != nil {
		return err
	}
	defer history.Close()

	if _, err := history.Migrate(ctx); err != nil {
		return err
	}
	return history.Record(ctx, output, results)
}
