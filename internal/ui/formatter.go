package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"itkit/internal/config"
	"itkit/internal/domain"
	"itkit/internal/storage"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

const (
	rowSeparator = "├─────────────────────────────────┼─────────────────────────────┤"
	tableTop     = "┌─────────────────────────────────┬─────────────────────────────┐"
	tableBottom  = "└─────────────────────────────────┴─────────────────────────────┘"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{config: cfg, out: os.Stdout}
}

// SetOutput redirects everything the formatter prints
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

func (f *Formatter) banner(title string) {
	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintf(f.out, "║%s║\n", center(title, 63))
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprint(f.out, "\n")
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

func (f *Formatter) row(label string, c *color.Color, value any) {
	fmt.Fprintf(f.out, "│ %-31s │ ", label)
	c.Fprintf(f.out, "%-27v", value)
	fmt.Fprint(f.out, " │\n")
}

// PrintMetaStats displays the statistics of a run followed by a tree of its failed scenarios
func (f *Formatter) PrintMetaStats(output *domain.RunOutput) {
	meta := output.Meta

	f.banner("Scenario Execution Statistics")

	fmt.Fprintln(f.out, tableTop)
	f.row("Total Scenarios", white, meta.TotalScenarios)
	fmt.Fprintln(f.out, rowSeparator)
	f.row("Passed Scenarios", green, meta.PassedScenarios)
	fmt.Fprintln(f.out, rowSeparator)
	f.row("Failed Scenarios", red, meta.FailedScenarios)
	fmt.Fprintln(f.out, rowSeparator)
	f.row("Failed Test Cases", red, meta.FailedTestCases)
	fmt.Fprintln(f.out, rowSeparator)
	f.row("Duration", white, fmt.Sprintf("%.2fs", meta.DurationSeconds))
	fmt.Fprintln(f.out, rowSeparator)
	f.row("Workers", white, meta.Workers)
	fmt.Fprintln(f.out, rowSeparator)
	f.row("Timestamp", white, meta.Timestamp)
	fmt.Fprintln(f.out, tableBottom)

	fmt.Fprintln(f.out)
	if meta.FailedScenarios == 0 {
		green.Fprintln(f.out, "✓ All scenarios passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d scenario(s) failed with %d test case failure(s)\n\n", meta.FailedScenarios, meta.FailedTestCases)
	f.printFailedScenarios(output.Details)
}

// printFailedScenarios prints scenario -> problems and failed test cases grouped by class
func (f *Formatter) printFailedScenarios(records []domain.ScenarioRecord) {
	for i, rec := range records {
		last := i == len(records)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		yellow.Fprintf(f.out, "%s%s", branch, rec.Scenario)
		if rec.Fixture != "" && rec.Fixture != rec.Scenario {
			fmt.Fprintf(f.out, " (%s)", rec.Fixture)
		}
		fmt.Fprintln(f.out)

		for _, p := range rec.Problems {
			red.Fprintf(f.out, "%s|_ %s\n", indent, firstLine(p))
		}

		byClass := make(map[string][]domain.TestFailure)
		var classes []string
		for _, failure := range rec.Failures {
			if _, ok := byClass[failure.ClassName]; !ok {
				classes = append(classes, failure.ClassName)
			}
			byClass[failure.ClassName] = append(byClass[failure.ClassName], failure)
		}
		sort.Strings(classes)
		for _, class := range classes {
			cyan.Fprintf(f.out, "%s|_ %s\n", indent, class)
			for _, failure := range byClass[class] {
				red.Fprintf(f.out, "%s   |_ %s\n", indent, failure.TestName)
			}
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// PrintReports prints one row per suite report and the aggregate of all of them
func (f *Formatter) PrintReports(reports []domain.TestSuiteReport) {
	if len(reports) == 0 {
		yellow.Fprintln(f.out, "No reports found")
		return
	}

	width := len("Suite")
	for _, r := range reports {
		if n := len(r.Name); n > width {
			width = n
		}
	}

	header := fmt.Sprintf("%-*s  %6s  %6s  %8s  %7s  %6s  %8s", width, "Suite", "Tests", "Errors", "Failures", "Skipped", "Flakes", "Time")
	cyan.Fprintln(f.out, header)
	fmt.Fprintln(f.out, strings.Repeat("─", len(header)))

	for _, r := range reports {
		c := r.Counts
		line := fmt.Sprintf("%-*s  %6d  %6d  %8d  %7d  %6d  %7.3fs", width, r.Name, c.Total, c.Errors, c.Failures, c.Skipped, c.Flakes, r.Time)
		switch {
		case c.Errors > 0 || c.Failures > 0:
			red.Fprintln(f.out, line)
		case c.Flakes > 0 || c.Skipped > 0:
			yellow.Fprintln(f.out, line)
		default:
			fmt.Fprintln(f.out, line)
		}
	}

	agg := domain.Aggregate(reports)
	c := agg.Counts
	fmt.Fprintln(f.out, strings.Repeat("─", len(header)))
	white.Fprintf(f.out, "%-*s  %6d  %6d  %8d  %7d  %6d\n", width, fmt.Sprintf("%d suite(s)", agg.Suites), c.Total, c.Errors, c.Failures, c.Skipped, c.Flakes)
	fmt.Fprintf(f.out, "Tests run: %d, Failures: %d, Errors: %d, Skipped: %d\n", c.Total, c.Failures, c.Errors, c.Skipped)
}

// PrintFixtureList prints the fixtures found under the fixtures root. classes,
// when non-nil, holds the test classes of each fixture path. Fixtures whose
// base name is in failed are marked with [F] (from the last run).
func (f *Formatter) PrintFixtureList(fixtures []string, classes map[string][]string, failed map[string]struct{}) {
	green.Fprintf(f.out, "Found %d fixture(s):\n\n", len(fixtures))

	for i, fixture := range fixtures {
		name := fixture
		if rel, err := filepath.Rel(f.config.FixturesRoot, fixture); err == nil && !strings.HasPrefix(rel, "..") {
			name = rel
		}

		marker := ""
		if _, ok := failed[filepath.Base(fixture)]; ok {
			marker = " " + red.Sprint("[F]")
		}

		lastFixture := i == len(fixtures)-1
		if lastFixture {
			cyan.Fprintf(f.out, "└── %s%s\n", name, marker)
		} else {
			cyan.Fprintf(f.out, "├── %s%s\n", name, marker)
		}

		if classes == nil {
			continue
		}

		indent := "│   "
		if lastFixture {
			indent = "    "
		}
		list := classes[fixture]
		if len(list) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprint("(no test classes found)"))
			continue
		}
		for j, class := range list {
			if j == len(list)-1 {
				fmt.Fprintf(f.out, "%s└── %s\n", indent, yellow.Sprint(class))
			} else {
				fmt.Fprintf(f.out, "%s├── %s\n", indent, yellow.Sprint(class))
			}
		}
	}
}

// PrintPlan shows which scenarios each worker would run
func (f *Formatter) PrintPlan(plan [][]domain.Scenario) {
	f.banner("Execution Plan")
	for i, scenarios := range plan {
		cyan.Fprintf(f.out, "Worker %d (%d scenario(s))\n", i+1, len(scenarios))
		for _, sc := range scenarios {
			line := fmt.Sprintf("  - %s [%s]", sc.Name, sc.Fixture)
			if sc.ExpectFailure {
				line += " expects failure"
			}
			fmt.Fprintln(f.out, line)
		}
	}
}

// PrintHistory prints recent runs and scenarios that flipped between passing and failing
func (f *Formatter) PrintHistory(runs []domain.RunMeta, flaky []storage.FlakyScenario) {
	f.banner("Run History")

	if len(runs) == 0 {
		yellow.Fprintln(f.out, "No runs recorded")
		return
	}
	for _, r := range runs {
		status := green.Sprint("✓")
		if r.FailedScenarios > 0 {
			status = red.Sprint("✗")
		}
		fmt.Fprintf(f.out, "%s %s  %s  %d/%d passed  %.2fs  %d worker(s)\n",
			status, r.Timestamp, r.RunID, r.PassedScenarios, r.TotalScenarios, r.DurationSeconds, r.Workers)
	}

	fmt.Fprintln(f.out)
	if len(flaky) == 0 {
		green.Fprintln(f.out, "No flaky scenarios in these runs")
		return
	}
	yellow.Fprintf(f.out, "%d flaky scenario(s):\n", len(flaky))
	for _, s := range flaky {
		last := red.Sprint("failing")
		if s.LastPass {
			last = green.Sprint("passing")
		}
		fmt.Fprintf(f.out, "  %s  passed %d, failed %d, now %s\n", s.Scenario, s.Passed, s.Failed, last)
	}
}
