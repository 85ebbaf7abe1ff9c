package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"itkit/internal/config"
	"itkit/internal/discovery"
	"itkit/internal/execution"
	"itkit/internal/filelock"
	"itkit/internal/parser"
	"itkit/internal/ui"
)

// ReportCommand handles the report command
type ReportCommand struct {
	config    *config.Config
	filter    *discovery.Filter
	formatter *ui.Formatter
}

// NewReportCommand creates a new ReportCommand
func NewReportCommand(cfg *config.Config, filter *discovery.Filter, formatter *ui.Formatter) *ReportCommand {
	return &ReportCommand{
		config:    cfg,
		filter:    filter,
		formatter: formatter,
	}
}

// Execute runs the command
func (rc *ReportCommand) Execute(cmd *cobra.Command, args []string) error {
	dirs := args
	if len(dirs) == 0 {
		dirs = []string{rc.config.ReportsDir}
	}

	p := parser.NewSurefireParser(discovery.NewScanner(rc.config.PathsToIgnore))
	reports, err := p.ParseReports(cmd.Context(), dirs...)
	if err != nil {
		return err
	}
	reports = rc.filter.FilterByClass(reports, rc.config.Flags.ClassFilter)

	rc.formatter.PrintReports(reports)

	if merge := rc.config.Flags.Merge; merge != "" && len(reports) > 0 {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(merge), "TEST-"), ".xml")
		var b strings.Builder
		if err := parser.WriteReport(&b, parser.MergeReports(name, reports)); err != nil {
			return fmt.Errorf("merge reports: %w", err)
		}
		if err := filelock.AtomicWrite(merge, []byte(b.String())); err != nil {
			return fmt.Errorf("write merged report: %w", err)
		}
		color.Green("Merged %d suite(s) into %s", len(reports), merge)
	}

	if logFile := rc.config.Flags.LogFile; logFile != "" {
		lines, err := execution.ReadLines(logFile)
		if err != nil {
			return fmt.Errorf("read console log: %w", err)
		}
		counts, ok := parser.ParseSummary(lines)
		if !ok {
			color.Yellow("No 'Tests run:' summary in %s", logFile)
			return nil
		}
		fmt.Fprintf(os.Stdout, "\nConsole summary (%s): Tests run: %d, Failures: %d, Errors: %d, Skipped: %d, Flakes: %d\n",
			logFile, counts.Total, counts.Failures, counts.Errors, counts.Skipped, counts.Flakes)
		for _, cs := range parser.ParseClassSummaries(lines) {
			fmt.Fprintf(os.Stdout, "  %s: %d run, %d failed\n", cs.ClassName, cs.Counts.Total, cs.Counts.Failures+cs.Counts.Errors)
		}
	}
	return nil
}
