package scenario

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"itkit/internal/assertion"
	"itkit/internal/config"
	"itkit/internal/domain"
	"itkit/internal/execution"
	"itkit/internal/fixture"
	"itkit/internal/logging"
)

// DefaultGoal runs when a scenario names no goals
const DefaultGoal = "test"

// Runner runs one scenario on a fresh launcher. It implements execution.ScenarioRunner.
type Runner struct {
	cfg    *config.Config
	driver execution.Driver
	log    *logrus.Entry
}

// NewRunner creates a scenario runner that starts builds through driver
func NewRunner(cfg *config.Config, driver execution.Driver) *Runner {
	return &Runner{cfg: cfg, driver: driver, log: logging.For("scenario")}
}

// Run unpacks the scenario's fixture, builds it Repeat times in the same
// directory and checks every expectation. All mismatches are reported, not
// just the first.
func (r *Runner) Run(ctx context.Context, sc domain.Scenario, workerID int) domain.ScenarioResult {
	start := time.Now()
	result := domain.ScenarioResult{Scenario: sc.Name, Fixture: sc.Fixture}
	log := r.log.WithFields(logrus.Fields{"scenario": sc.Name, "worker": workerID})

	finish := func() domain.ScenarioResult {
		result.Duration = time.Since(start)
		result.Success = result.Error == nil && len(result.Problems) == 0
		log.WithFields(logrus.Fields{
			"success":  result.Success,
			"problems": len(result.Problems),
			"duration": result.Duration.Round(time.Millisecond),
		}).Debug("scenario finished")
		return result
	}

	l := fixture.NewLauncher(r.cfg, r.driver).WithContext(ctx)
	defer l.Close()

	if err := l.Unpack(sc.Fixture, sc.Suffix); err != nil {
		result.Error = err
		result.Problems = append(result.Problems, err.Error())
		return finish()
	}
	result.WorkDir = l.WorkDir()

	configure(l, sc, workerID)

	v, err := l.ExecuteTimes(sc.Repeat)
	if err != nil {
		result.Problems = append(result.Problems, err.Error())
		if v == nil {
			result.Error = err
			return finish()
		}
	}

	reportsDir := r.cfg.ReportsDir
	if sc.Expect.Integration {
		reportsDir = r.cfg.IntegrationReportsDir
	}
	if agg, err := v.Aggregate(reportsDir); err == nil {
		result.Counts = agg.Counts
	}
	if reports, err := reportsOf(v, sc.Expect.Integration); err == nil {
		result.Failures = domain.FailuresOf(reports)
	}

	for _, problem := range check(v, sc.Expect) {
		result.Problems = append(result.Problems, problems(problem)...)
	}
	return finish()
}

func configure(l *fixture.Launcher, sc domain.Scenario, workerID int) {
	for _, opt := range sc.Options {
		l.AddOption(opt)
	}
	for _, p := range sc.Profiles {
		l.ActivateProfile(p)
	}
	l.SysProps(sc.SysProps)
	for k, v := range sc.Env {
		l.Env(k, v)
	}
	l.Env(execution.WorkerIDEnv, strconv.Itoa(workerID))
	if len(sc.Goals) == 0 {
		l.AddGoal(DefaultGoal)
	} else {
		l.AddGoals(sc.Goals...)
	}
	if sc.ExpectFailure {
		l.WithFailure()
	}
}

func reportsOf(v *fixture.OutputValidator, integration bool) ([]domain.TestSuiteReport, error) {
	if integration {
		return v.IntegrationReports()
	}
	return v.Reports()
}

// check evaluates every expectation and returns one error per failed check
func check(v *fixture.OutputValidator, exp domain.Expectation) []error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if c := exp.Counts; c != nil {
		var flakes []int
		if !exp.IgnoreFlakes {
			flakes = []int{c.Flakes}
		}
		if exp.Integration {
			add(v.CheckIntegrationTestSuiteResults(c.Total, c.Errors, c.Failures, c.Skipped, flakes...))
		} else {
			add(v.CheckTestSuiteResults(c.Total, c.Errors, c.Failures, c.Skipped, flakes...))
		}
	}
	for _, text := range exp.LogContains {
		add(v.CheckTextInLog(text))
	}
	for _, text := range exp.LogNotContains {
		add(v.CheckLogLine(text, assertion.Never))
	}
	for _, f := range exp.Files {
		add(assertion.FileExists(v.File(f).Path()))
	}
	for _, f := range exp.NoFiles {
		add(assertion.FileNotExists(v.File(f).Path()))
	}
	if exp.DistinctMarkers != "" {
		add(checkMarkers(v, exp.DistinctMarkers, assertion.Distinct))
	}
	if exp.EqualMarkers != "" {
		add(checkMarkers(v, exp.EqualMarkers, assertion.AllEqual))
	}
	return errs
}

func checkMarkers(v *fixture.OutputValidator, path string, compare func(string, []string) error) error {
	lines, err := v.File(path).ReadLines()
	if err != nil {
		return fmt.Errorf("marker file %s: %w", path, err)
	}
	var markers []string
	for _, line := range lines {
		if line != "" {
			markers = append(markers, line)
		}
	}
	if len(markers) == 0 {
		return &domain.AssertionError{What: "markers in " + path, Expected: "at least one", Actual: 0}
	}
	return compare("markers in "+path, markers)
}

// problems flattens joined errors into one message each
func problems(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, problems(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

var _ execution.ScenarioRunner = (*Runner)(nil)

// IsSetupError reports whether a scenario failed before its build ran
func IsSetupError(result domain.ScenarioResult) bool {
	var fixtureErr *domain.FixtureError
	return errors.As(result.Error, &fixtureErr)
}
