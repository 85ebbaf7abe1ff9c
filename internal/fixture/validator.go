package fixture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/stretchr/testify/require"

	"itkit/internal/assertion"
	"itkit/internal/config"
	"itkit/internal/domain"
	"itkit/internal/parser"
)

// recorder routes failed checks either to a bound test or into a list
type recorder struct {
	t    require.TestingT
	errs []error
}

func (r *recorder) check(err error) {
	if err == nil {
		return
	}
	if r.t != nil {
		if h, ok := r.t.(interface{ Helper() }); ok {
			h.Helper()
		}
		require.NoError(r.t, err)
		return
	}
	r.errs = append(r.errs, err)
}

// OutputValidator inspects the artifacts one build left in a project directory.
// Reports are parsed on every call, never cached.
//
// Assert*, Verify* methods and TestFile assertions fail the bound test. On a
// validator without a test they collect errors returned by Err. Check* methods
// always return the error instead.
type OutputValidator struct {
	ctx     context.Context
	rec     *recorder
	cfg     *config.Config
	parser  *parser.SurefireParser
	baseDir string
	outcome domain.BuildOutcome
}

func newValidator(ctx context.Context, t require.TestingT, cfg *config.Config, p *parser.SurefireParser, baseDir string, outcome domain.BuildOutcome) *OutputValidator {
	return &OutputValidator{
		ctx:     ctx,
		rec:     &recorder{t: t},
		cfg:     cfg,
		parser:  p,
		baseDir: baseDir,
		outcome: outcome,
	}
}

// Err returns every failure collected by an unbound validator
func (v *OutputValidator) Err() error {
	return errors.Join(v.rec.errs...)
}

// BaseDir returns the project directory
func (v *OutputValidator) BaseDir() string {
	return v.baseDir
}

// Outcome returns the build outcome the validator was created for
func (v *OutputValidator) Outcome() domain.BuildOutcome {
	return v.outcome
}

// LogLines returns the build transcript
func (v *OutputValidator) LogLines() []string {
	return v.outcome.Lines
}

// ReportsDir returns the unit test report directory of the project
func (v *OutputValidator) ReportsDir() string {
	return v.resolve(v.cfg.ReportsDir)
}

// IntegrationReportsDir returns the integration test report directory of the project
func (v *OutputValidator) IntegrationReportsDir() string {
	return v.resolve(v.cfg.IntegrationReportsDir)
}

func (v *OutputValidator) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(v.baseDir, filepath.FromSlash(path))
}

// Reports parses the unit test reports
func (v *OutputValidator) Reports() ([]domain.TestSuiteReport, error) {
	return v.parser.ParseReports(v.ctx, v.ReportsDir())
}

// IntegrationReports parses the integration test reports
func (v *OutputValidator) IntegrationReports() ([]domain.TestSuiteReport, error) {
	return v.parser.ParseReports(v.ctx, v.IntegrationReportsDir())
}

// Report returns the unit test report of one fully-qualified class
func (v *OutputValidator) Report(className string) (domain.TestSuiteReport, error) {
	reports, err := v.Reports()
	if err != nil {
		return domain.TestSuiteReport{}, err
	}
	for _, r := range reports {
		if r.Name == className {
			return r, nil
		}
	}
	return domain.TestSuiteReport{}, &domain.AssertionError{
		What:     "report for " + className + " in " + v.ReportsDir(),
		Expected: "present",
		Actual:   "missing",
	}
}

// Aggregate sums the reports of dirs, relative to the project directory.
// Without dirs the unit test report directory is used.
func (v *OutputValidator) Aggregate(dirs ...string) (domain.AggregateResult, error) {
	if len(dirs) == 0 {
		dirs = []string{v.cfg.ReportsDir}
	}
	resolved := make([]string, len(dirs))
	for i, d := range dirs {
		resolved[i] = v.resolve(d)
	}
	reports, err := v.parser.ParseReports(v.ctx, resolved...)
	if err != nil {
		return domain.AggregateResult{}, err
	}
	return domain.Aggregate(reports), nil
}

func expectedCounts(total, errs, failures, skipped int, flakes []int) (domain.Counts, bool) {
	c := domain.Counts{Total: total, Errors: errs, Failures: failures, Skipped: skipped}
	if len(flakes) > 0 {
		c.Flakes = flakes[0]
		return c, true
	}
	return c, false
}

func (v *OutputValidator) checkCounts(dir string, expected domain.Counts, withFlakes bool) error {
	agg, err := v.Aggregate(dir)
	if err != nil {
		return err
	}
	if withFlakes {
		err = assertion.Counts(expected, agg.Counts)
	} else {
		err = assertion.CountsIgnoringFlakes(expected, agg.Counts)
	}
	if err != nil {
		return fmt.Errorf("reports in %s: %w", v.resolve(dir), err)
	}
	return nil
}

// CheckTestSuiteResults compares the summed unit test counts. Flakes are
// compared only when given.
func (v *OutputValidator) CheckTestSuiteResults(total, errs, failures, skipped int, flakes ...int) error {
	expected, withFlakes := expectedCounts(total, errs, failures, skipped, flakes)
	return v.checkCounts(v.cfg.ReportsDir, expected, withFlakes)
}

// AssertTestSuiteResults is CheckTestSuiteResults reported through the validator
func (v *OutputValidator) AssertTestSuiteResults(total, errs, failures, skipped int, flakes ...int) *OutputValidator {
	v.rec.check(v.CheckTestSuiteResults(total, errs, failures, skipped, flakes...))
	return v
}

// CheckIntegrationTestSuiteResults compares the summed integration test counts
func (v *OutputValidator) CheckIntegrationTestSuiteResults(total, errs, failures, skipped int, flakes ...int) error {
	expected, withFlakes := expectedCounts(total, errs, failures, skipped, flakes)
	return v.checkCounts(v.cfg.IntegrationReportsDir, expected, withFlakes)
}

// AssertIntegrationTestSuiteResults is CheckIntegrationTestSuiteResults as an assertion
func (v *OutputValidator) AssertIntegrationTestSuiteResults(total, errs, failures, skipped int, flakes ...int) *OutputValidator {
	v.rec.check(v.CheckIntegrationTestSuiteResults(total, errs, failures, skipped, flakes...))
	return v
}

// CheckLogLine checks how many log lines contain text
func (v *OutputValidator) CheckLogLine(text string, occ assertion.Occurrence) error {
	return assertion.TextInLog(v.outcome.Lines, text, occ)
}

// AssertThatLogLine checks how many log lines contain text
func (v *OutputValidator) AssertThatLogLine(text string, occ assertion.Occurrence) *OutputValidator {
	v.rec.check(v.CheckLogLine(text, occ))
	return v
}

// CheckTextInLog checks that at least one log line contains text
func (v *OutputValidator) CheckTextInLog(text string) error {
	return v.CheckLogLine(text, assertion.AtLeastOnce)
}

// VerifyTextInLog is CheckTextInLog as an assertion
func (v *OutputValidator) VerifyTextInLog(text string) *OutputValidator {
	v.rec.check(v.CheckTextInLog(text))
	return v
}

// CheckErrorFreeLog checks the log for [ERROR] lines and BUILD FAILURE
func (v *OutputValidator) CheckErrorFreeLog() error {
	return assertion.ErrorFreeLog(v.outcome.Lines)
}

// VerifyErrorFreeLog is CheckErrorFreeLog as an assertion
func (v *OutputValidator) VerifyErrorFreeLog() *OutputValidator {
	v.rec.check(v.CheckErrorFreeLog())
	return v
}

// CheckErrorFree checks an error-free log and total passing tests
func (v *OutputValidator) CheckErrorFree(total int) error {
	return errors.Join(v.CheckErrorFreeLog(), v.CheckTestSuiteResults(total, 0, 0, 0))
}

// VerifyErrorFree is CheckErrorFree as an assertion
func (v *OutputValidator) VerifyErrorFree(total int) *OutputValidator {
	v.rec.check(v.CheckErrorFree(total))
	return v
}

// CheckTestCase checks the status of one test case of a class
func (v *OutputValidator) CheckTestCase(className, caseName string, status domain.CaseStatus) error {
	report, err := v.Report(className)
	if err != nil {
		return err
	}
	return assertion.CaseStatus(report, caseName, status)
}

// AssertTestCase is CheckTestCase as an assertion
func (v *OutputValidator) AssertTestCase(className, caseName string, status domain.CaseStatus) *OutputValidator {
	v.rec.check(v.CheckTestCase(className, caseName, status))
	return v
}

// Module returns a validator for a sub-project of this one
func (v *OutputValidator) Module(name string) *OutputValidator {
	return &OutputValidator{
		ctx:     v.ctx,
		rec:     v.rec,
		cfg:     v.cfg,
		parser:  v.parser,
		baseDir: v.resolve(name),
		outcome: v.outcome,
	}
}

// File returns a file relative to the project directory
func (v *OutputValidator) File(path string) *TestFile {
	return &TestFile{rec: v.rec, path: v.resolve(path)}
}

// TargetFile returns a file under the project's target directory
func (v *OutputValidator) TargetFile(parts ...string) *TestFile {
	return v.File(filepath.Join(append([]string{"target"}, parts...)...))
}

// SurefireReportsFile returns a file in the unit test report directory,
// such as a <class>-output.txt companion.
func (v *OutputValidator) SurefireReportsFile(name string) *TestFile {
	return &TestFile{rec: v.rec, path: filepath.Join(v.ReportsDir(), name)}
}
