package domain

import (
	"fmt"
	"strings"
)

// BuildFailedError is returned when the external build exited non-zero and no failure was expected
type BuildFailedError struct {
	WorkDir  string
	Args     []string
	ExitCode int
	LogPath  string
	Excerpt  []string
}

func (e *BuildFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build failed with exit code %d in %s (args: %s); see log %s",
		e.ExitCode, e.WorkDir, strings.Join(e.Args, " "), e.LogPath)
	if len(e.Excerpt) > 0 {
		b.WriteString("\n--- log excerpt ---\n")
		b.WriteString(strings.Join(e.Excerpt, "\n"))
	}
	return b.String()
}

// ReportParseError identifies a report file that could not be parsed
type ReportParseError struct {
	File string
	Err  error
}

func (e *ReportParseError) Error() string {
	return fmt.Sprintf("parse report %s: %v", e.File, e.Err)
}

func (e *ReportParseError) Unwrap() error { return e.Err }

// AssertionError is an expected/actual mismatch
type AssertionError struct {
	What     string
	Expected any
	Actual   any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %v but was %v", e.What, e.Expected, e.Actual)
}

// FixtureError is a setup failure: missing or unreadable fixture, unusable working directory
type FixtureError struct {
	Fixture string
	Err     error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("fixture %q: %v", e.Fixture, e.Err)
}

func (e *FixtureError) Unwrap() error { return e.Err }
