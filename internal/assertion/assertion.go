// Package assertion compares expected values against what a build produced.
// Every check returns nil or an error wrapping one *domain.AssertionError per
// mismatch; the message always carries both literal values.
package assertion

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"itkit/internal/domain"
)

func mismatch(what string, expected, actual any) *domain.AssertionError {
	return &domain.AssertionError{What: what, Expected: expected, Actual: actual}
}

func join(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// Counts checks every field of actual against expected, including flakes
func Counts(expected, actual domain.Counts) error {
	errs := countErrors(expected, actual)
	if expected.Flakes != actual.Flakes {
		errs = append(errs, mismatch("flaky tests", expected.Flakes, actual.Flakes))
	}
	return join(errs)
}

// CountsIgnoringFlakes checks total, errors, failures and skipped only
func CountsIgnoringFlakes(expected, actual domain.Counts) error {
	return join(countErrors(expected, actual))
}

func countErrors(expected, actual domain.Counts) []error {
	var errs []error
	fields := []struct {
		what     string
		expected int
		actual   int
	}{
		{"total tests", expected.Total, actual.Total},
		{"errors", expected.Errors, actual.Errors},
		{"failures", expected.Failures, actual.Failures},
		{"skipped", expected.Skipped, actual.Skipped},
	}
	for _, f := range fields {
		if f.expected != f.actual {
			errs = append(errs, mismatch(f.what, f.expected, f.actual))
		}
	}
	return errs
}

// TextInLog checks how many log lines contain text
func TextInLog(lines []string, text string, occ Occurrence) error {
	count := 0
	for _, line := range lines {
		if strings.Contains(line, text) {
			count++
		}
	}
	if !occ.Matches(count) {
		return mismatch(fmt.Sprintf("log lines containing %q", text), occ, count)
	}
	return nil
}

// PatternInLog checks how many log lines match a regular expression
func PatternInLog(lines []string, pattern string, occ Occurrence) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid log pattern %q: %w", pattern, err)
	}
	count := 0
	for _, line := range lines {
		if re.MatchString(line) {
			count++
		}
	}
	if !occ.Matches(count) {
		return mismatch(fmt.Sprintf("log lines matching /%s/", pattern), occ, count)
	}
	return nil
}

// ErrorFreeLog checks that the log has no [ERROR] lines and no BUILD FAILURE
func ErrorFreeLog(lines []string) error {
	var errs []error
	var errorLines []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "[ERROR]") {
			errorLines = append(errorLines, line)
		}
	}
	if len(errorLines) > 0 {
		errs = append(errs, mismatch("[ERROR] lines in log", 0, fmt.Sprintf("%d (first: %s)", len(errorLines), errorLines[0])))
	}
	if err := TextInLog(lines, "BUILD FAILURE", Never); err != nil {
		errs = append(errs, err)
	}
	return join(errs)
}

// CaseStatus checks the status of a named test case in a report
func CaseStatus(report domain.TestSuiteReport, caseName string, status domain.CaseStatus) error {
	c, ok := report.Case(caseName)
	if !ok {
		return mismatch(fmt.Sprintf("test case %s.%s", report.Name, caseName), "present", "missing")
	}
	if c.Status != status {
		return mismatch(fmt.Sprintf("status of %s.%s", report.Name, caseName), status, c.Status)
	}
	return nil
}

// FailureMessage checks the failure or error message of a named test case
func FailureMessage(report domain.TestSuiteReport, caseName, message string) error {
	c, ok := report.Case(caseName)
	if !ok {
		return mismatch(fmt.Sprintf("test case %s.%s", report.Name, caseName), "present", "missing")
	}
	if c.Message != message {
		return mismatch(fmt.Sprintf("failure message of %s.%s", report.Name, caseName), fmt.Sprintf("%q", message), fmt.Sprintf("%q", c.Message))
	}
	return nil
}

// Distinct checks that no two values are equal
func Distinct(what string, values []string) error {
	seen := make(map[string]bool, len(values))
	unique := 0
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique++
		}
	}
	if unique != len(values) {
		return mismatch("distinct "+what, len(values), unique)
	}
	return nil
}

// AllEqual checks that every value equals the first
func AllEqual(what string, values []string) error {
	if len(values) == 0 {
		return mismatch("equal "+what, "at least one value", "none")
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return mismatch("equal "+what, values[0], v)
		}
	}
	return nil
}
