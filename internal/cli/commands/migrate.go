package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"itkit/internal/config"
	"itkit/internal/storage"
)

var errNoHistory = errors.New("no history_dsn configured")

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	config *config.Config
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config) *MigrateCommand {
	return &MigrateCommand{config: cfg}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	if mc.config.HistoryDSN == "" {
		return errNoHistory
	}

	color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
	color.Cyan("║               Migrating Run History Database               ║")
	color.Cyan("╚════════════════════════════════════════════════════════════╝\n")

	history, err := storage.OpenSQL(mc.config.HistoryDSN)
	if err != nil {
		return err
	}
	defer history.Close()

	var migrator storage.Migrator = history
	applied, err := migrator.Migrate(cmd.Context())
	if err != nil {
		color.Red("✗ Migration failed after %d step(s)", applied)
		return fmt.Errorf("migration failed: %w", err)
	}
	if applied == 0 {
		color.Green("✓ History schema is up to date")
		return nil
	}
	color.Green("✓ Applied %d migration(s)", applied)
	return nil
}
