package commands

import (
	"github.com/spf13/cobra"

	"itkit/internal/cli"
	"itkit/internal/config"
	"itkit/internal/discovery"
	"itkit/internal/execution"
	"itkit/internal/logging"
	"itkit/internal/scenario"
	"itkit/internal/storage"
	"itkit/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Report   *ReportCommand
	Failures *FailuresCommand
	Migrate  *MigrateCommand
	History  *HistoryCommand
}

// NewCommands creates all commands with dependencies. Components keep the cfg
// pointer, so they see the config that is loaded once flags are parsed.
func NewCommands(cfg *config.Config) *Commands {
	filter := discovery.NewFilter()
	runner := execution.NewRunner(cfg)
	scheduler := execution.NewRoundRobinScheduler()
	executor := execution.NewWorkerPool(cfg, scenario.NewRunner(cfg, runner), scheduler)
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg)
	errorViewer := ui.NewErrorViewer(jsonStorage)

	return &Commands{
		Run:      NewRunCommand(cfg, filter, executor, jsonStorage, formatter, errorViewer),
		List:     NewListCommand(cfg, filter, formatter, jsonStorage),
		Report:   NewReportCommand(cfg, filter, formatter),
		Failures: NewFailuresCommand(jsonStorage, errorViewer),
		Migrate:  NewMigrateCommand(cfg),
		History:  NewHistoryCommand(cfg, formatter),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", config.DefaultConfigFile, "Path to the itkit configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.LoadConfig(cfg); err != nil {
			return err
		}
		return logging.Setup(cfg.LogLevel, nil)
	}

	// Run command
	runCmd := &cobra.Command{
		Use:   "run [scenario-file]",
		Short: "Run integration scenarios in parallel",
		Long:  "Unpack fixtures, run the build for every scenario of the table using parallel workers and check the expectations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of workers to use (defaults to the configured processors)")
	runCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter scenarios by name pattern (supports wildcards, e.g. 'fork-*' or '*flaky*')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop scheduling scenarios after the first failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only scenarios that failed in the last run and are not marked resolved")
	runCmd.Flags().BoolVar(&flags.Plan, "plan", false, "Print how scenarios would be distributed over workers without running them")
	runCmd.Flags().BoolVar(&flags.ViewFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List fixtures",
		Long:  "Scan the fixtures root and list fixture projects without running them",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter fixtures by name pattern")
	listCmd.Flags().BoolVarP(&flags.TestClasses, "test-classes", "c", false, "List the test classes of each fixture")
	rootCmd.AddCommand(listCmd)

	// Report command
	reportCmd := &cobra.Command{
		Use:   "report [dir...]",
		Short: "Summarize XML test reports",
		Long:  "Parse TEST-*.xml reports in the given directories (default: the configured reports dir) and print their counts",
		RunE:  c.Report.Execute,
	}
	reportCmd.Flags().StringVar(&flags.ClassFilter, "class", "", "Only include suites whose class matches the pattern")
	reportCmd.Flags().StringVar(&flags.Merge, "merge", "", "Write all matching suites into one merged report file")
	reportCmd.Flags().StringVar(&flags.LogFile, "log", "", "Also summarize the 'Tests run:' lines of a console transcript")
	rootCmd.AddCommand(reportCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View scenario failures interactively",
		Long:  "Display failed scenarios from the last run in an interactive viewer",
		RunE:  c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the run history database",
		Long:  "Apply pending schema migrations to the database named by history_dsn",
		RunE:  c.Migrate.Execute,
	}
	rootCmd.AddCommand(migrateCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs and flaky scenarios",
		Long:  "Read the run history database and list recent runs and scenarios whose outcome changed between them",
		RunE:  c.History.Execute,
	}
	historyCmd.Flags().IntVarP(&flags.Runs, "runs", "n", config.DefaultHistoryRuns, "Number of recent runs to inspect")
	rootCmd.AddCommand(historyCmd)
}
