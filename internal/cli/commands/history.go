package commands

import (
	"github.com/spf13/cobra"

	"itkit/internal/config"
	"itkit/internal/storage"
	"itkit/internal/ui"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(cfg *config.Config, formatter *ui.Formatter) *HistoryCommand {
	return &HistoryCommand{config: cfg, formatter: formatter}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	if hc.config.HistoryDSN == "" {
		return errNoHistory
	}

	history, err := storage.OpenSQL(hc.config.HistoryDSN)
	if err != nil {
		return err
	}
	defer history.Close()

	ctx := cmd.Context()
	if _, err := history.Migrate(ctx); err != nil {
		return err
	}

	runs := hc.config.Flags.Runs
	if runs <= 0 {
		runs = config.DefaultHistoryRuns
	}
	recent, err := history.RecentRuns(ctx, runs)
	if err != nil {
		return err
	}
	flaky, err := history.RecentFlaky(ctx, runs)
	if err != nil {
		return err
	}

	hc.formatter.PrintHistory(recent, flaky)
	return nil
}
