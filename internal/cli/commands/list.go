package commands

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"itkit/internal/config"
	"itkit/internal/discovery"
	"itkit/internal/storage"
	"itkit/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	filter    *discovery.Filter
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		filter:    filter,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner(lc.config.PathsToIgnore)
	fixtures, err := scanner.ScanFixtures(lc.config.FixturesRoot)
	if err != nil {
		return err
	}

	fixtures = lc.filter.FilterByName(fixtures, lc.config.Flags.Filter)
	if len(fixtures) == 0 {
		color.Yellow("No fixtures found")
		return nil
	}

	var classes map[string][]string
	if lc.config.Flags.TestClasses {
		parser := discovery.NewParser(scanner)
		classes = make(map[string][]string, len(fixtures))
		for _, fixture := range fixtures {
			found, err := parser.FindTestClasses(fixture)
			if err != nil {
				color.Red("Error reading fixture %s: %v", fixture, err)
				continue
			}
			classes[fixture] = found
		}
	}

	lc.formatter.PrintFixtureList(fixtures, classes, lc.failedFixtures())
	return nil
}

// failedFixtures returns the fixtures of unresolved failures from the last run, if any
func (lc *ListCommand) failedFixtures() map[string]struct{} {
	last, err := lc.storage.Load()
	if err != nil {
		return nil
	}
	failed := make(map[string]struct{})
	for _, rec := range last.Details {
		if !rec.Resolved {
			failed[filepath.Base(rec.Fixture)] = struct{}{}
		}
	}
	return failed
}
