package domain

import "time"

// BuildStatus is the exit status of a build
type BuildStatus int

const (
	BuildSucceeded BuildStatus = iota
	BuildFailed
)

func (s BuildStatus) String() string {
	if s == BuildSucceeded {
		return "success"
	}
	return "failure"
}

// BuildOutcome is the result of one build invocation
type BuildOutcome struct {
	Invocation BuildInvocation
	Status     BuildStatus
	ExitCode   int
	LogPath    string   // Absolute path of the captured transcript
	Lines      []string // Transcript lines, never nil
	Duration   time.Duration
}

// Failed reports whether the build exited non-zero
func (o BuildOutcome) Failed() bool {
	return o.Status == BuildFailed
}

// Excerpt returns the last n log lines
func (o BuildOutcome) Excerpt(n int) []string {
	if n <= 0 || len(o.Lines) <= n {
		return o.Lines
	}
	return o.Lines[len(o.Lines)-n:]
}

// Err returns a *BuildFailedError for a failed build and nil otherwise
func (o BuildOutcome) Err() error {
	if !o.Failed() {
		return nil
	}
	return &BuildFailedError{
		WorkDir:  o.Invocation.WorkDir,
		Args:     o.Invocation.Args(),
		ExitCode: o.ExitCode,
		LogPath:  o.LogPath,
		Excerpt:  o.Excerpt(DefaultExcerptLines),
	}
}

// DefaultExcerptLines is how many trailing log lines a BuildFailedError carries
const DefaultExcerptLines = 40
