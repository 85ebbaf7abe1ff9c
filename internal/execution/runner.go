package execution

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"itkit/internal/config"
	"itkit/internal/domain"
	"itkit/internal/logging"
)

// WorkerIDEnv is set on builds started by a scenario worker
const WorkerIDEnv = "ITKIT_WORKER_ID"

// maxLogLine bounds a single transcript line when reading the log back
const maxLogLine = 4 * 1024 * 1024

// Runner starts the external build tool as a subprocess
type Runner struct {
	config *config.Config
	log    *logrus.Entry
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{config: cfg, log: logging.For("driver")}
}

// Execute runs the build described by inv and blocks until it exits.
// A non-zero exit is reported through the outcome, not the error; the error is
// reserved for builds that could not be started or logged.
func (r *Runner) Execute(ctx context.Context, inv domain.BuildInvocation) (domain.BuildOutcome, error) {
	outcome := domain.BuildOutcome{Invocation: inv, Lines: []string{}}

	info, err := os.Stat(inv.WorkDir)
	if err != nil {
		return outcome, fmt.Errorf("working directory %q: %w", inv.WorkDir, err)
	}
	if !info.IsDir() {
		return outcome, fmt.Errorf("working directory %q is not a directory", inv.WorkDir)
	}

	command := inv.Command
	if command == "" {
		command = r.config.BuildCommand
	}
	if command == "" {
		return outcome, errors.New("no build command configured")
	}
	// exec resolves a relative path against cmd.Dir, not our own directory
	if strings.ContainsRune(command, filepath.Separator) && !filepath.IsAbs(command) {
		if abs, err := filepath.Abs(command); err == nil {
			command = abs
		}
	}

	logName := inv.LogFile
	if logName == "" {
		logName = r.config.GetLogFileName()
	}
	logPath := logName
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(inv.WorkDir, logName)
	}
	if abs, err := filepath.Abs(logPath); err == nil {
		logPath = abs
	}
	outcome.LogPath = logPath

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if inv.AppendLog {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	logFile, err := os.OpenFile(logPath, flags, 0644)
	if err != nil {
		return outcome, fmt.Errorf("open build log: %w", err)
	}

	args := inv.Args()
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = inv.WorkDir
	cmd.Env = buildEnv(inv.Env)
	// Same *os.File for both streams keeps stdout/stderr interleaving in order
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	r.log.WithFields(logrus.Fields{
		"id":      inv.ID,
		"dir":     inv.WorkDir,
		"command": command,
	}).Debugf("$ %s %s", command, strings.Join(args, " "))

	start := time.Now()
	runErr := cmd.Run()
	outcome.Duration = time.Since(start)
	if err := logFile.Close(); err != nil && runErr == nil {
		runErr = err
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		outcome.Status = domain.BuildSucceeded
	case ctx.Err() != nil:
		return outcome, fmt.Errorf("build interrupted: %w", ctx.Err())
	case errors.As(runErr, &exitErr):
		outcome.Status = domain.BuildFailed
		outcome.ExitCode = exitErr.ExitCode()
	default:
		return outcome, fmt.Errorf("run %s: %w", command, runErr)
	}

	lines, err := ReadLines(logPath)
	if err != nil {
		return outcome, fmt.Errorf("read build log: %w", err)
	}
	outcome.Lines = lines

	r.log.WithFields(logrus.Fields{
		"id":       inv.ID,
		"status":   outcome.Status,
		"exit":     outcome.ExitCode,
		"duration": outcome.Duration.Round(time.Millisecond),
	}).Info("build finished")

	return outcome, nil
}

// buildEnv starts with the current environment and applies overrides in key order
func buildEnv(overrides map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, overrides[k]))
	}
	return env
}

// ReadLines reads a text file into lines without trailing newlines. It never returns a nil slice on success.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLogLine)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}
