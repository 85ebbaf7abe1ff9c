// Package fixture unpacks fixture projects, drives builds against them and
// validates what the builds left behind.
//
// A Launcher moves through three states: unconfigured until Unpack succeeds,
// configured while builder calls accumulate the next invocation, and executed
// once a build ran. Reset returns an executed launcher to configured with the
// working directory kept.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"itkit/internal/config"
	"itkit/internal/discovery"
	"itkit/internal/domain"
	"itkit/internal/execution"
	"itkit/internal/logging"
	"itkit/internal/parser"
)

type state int

const (
	unconfigured state = iota
	configured
	executed
)

// ErrNotUnpacked is recorded when a launcher is configured before Unpack
var ErrNotUnpacked = errors.New("launcher used before a fixture was unpacked")

// Launcher is the per-test facade over one fixture working directory
type Launcher struct {
	cfg    *config.Config
	driver execution.Driver
	parser *parser.SurefireParser
	log    *logrus.Entry
	ctx    context.Context
	t      require.TestingT

	state      state
	fixture    string
	claim      *claim
	fixtureEnv map[string]string

	inv           domain.BuildInvocation
	expectFailure bool
	appendLog     bool
	setupErr      error // Builder call before Unpack, sticky
	unpackErr     error // Last failed Unpack, cleared by a successful one
	last          *domain.BuildOutcome
}

// NewLauncher creates a launcher that runs builds through driver
func NewLauncher(cfg *config.Config, driver execution.Driver) *Launcher {
	return &Launcher{
		cfg:    cfg,
		driver: driver,
		parser: parser.NewSurefireParser(discovery.NewScanner(nil)),
		log:    logging.For("launcher"),
		ctx:    context.Background(),
	}
}

// New creates a launcher bound to a test: validators fail t through testify
// and the working directory claim is released when the test ends.
func New(t require.TestingT, cfg *config.Config) *Launcher {
	l := NewLauncher(cfg, execution.NewRunner(cfg))
	l.t = t
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { l.Close() })
	}
	return l
}

// WithContext sets the context builds run under
func (l *Launcher) WithContext(ctx context.Context) *Launcher {
	l.ctx = ctx
	return l
}

// Unpack copies the named fixture into a working directory of its own. The
// directory is <work_root>/<name>[-suffix], or that name with -2, -3, ...
// appended when another launcher holds it. Errors are *domain.FixtureError.
func (l *Launcher) Unpack(name, suffix string) error {
	if l.claim != nil {
		return &domain.FixtureError{Fixture: name, Err: fmt.Errorf("launcher already unpacked %s", l.fixture)}
	}

	base := filepath.Base(filepath.FromSlash(name))
	if suffix != "" {
		base += "-" + suffix
	}
	ignore := make(map[string]bool, len(l.cfg.PathsToIgnore))
	for _, p := range l.cfg.PathsToIgnore {
		ignore[p] = true
	}

	c, err := unpack(l.cfg.GetFixturePath(name), l.cfg.GetWorkRoot(), base, ignore)
	if err != nil {
		l.unpackErr = &domain.FixtureError{Fixture: name, Err: err}
		return l.unpackErr
	}
	env, err := readEnvFile(c.dir)
	if err != nil {
		c.release()
		l.unpackErr = &domain.FixtureError{Fixture: name, Err: fmt.Errorf("read %s: %w", EnvFileName, err)}
		return l.unpackErr
	}

	l.unpackErr = nil
	l.fixture = name
	l.claim = c
	l.fixtureEnv = env
	l.state = configured
	l.resetInvocation()
	l.log.WithFields(logrus.Fields{"fixture": name, "dir": c.dir}).Debug("fixture unpacked")
	return nil
}

func (l *Launcher) fail(err error) error {
	if l.setupErr == nil {
		l.setupErr = err
	}
	return err
}

func (l *Launcher) resetInvocation() {
	l.inv = domain.BuildInvocation{
		WorkDir: l.claim.dir,
		Options: append([]string(nil), l.cfg.DefaultOptions...),
		LogFile: l.cfg.GetLogFileName(),
	}
	if len(l.fixtureEnv) > 0 {
		l.inv.Env = make(map[string]string, len(l.fixtureEnv))
		for k, v := range l.fixtureEnv {
			l.inv.Env[k] = v
		}
	}
	if l.cfg.PluginVersion != "" {
		l.inv.SetProperty(config.PluginVersionProperty, l.cfg.PluginVersion)
	}
	l.expectFailure = false
}

// Close releases the working directory claim. The directory itself is kept,
// but the launcher needs a new Unpack before it can build again.
func (l *Launcher) Close() error {
	err := l.claim.release()
	l.claim = nil
	l.state = unconfigured
	return err
}

// Err returns the first setup error, if any
func (l *Launcher) Err() error {
	if l.setupErr != nil {
		return l.setupErr
	}
	return l.unpackErr
}

// WorkDir returns the unpacked working directory
func (l *Launcher) WorkDir() string {
	if l.claim == nil {
		return ""
	}
	return l.claim.dir
}

// Fixture returns the name of the unpacked fixture
func (l *Launcher) Fixture() string {
	return l.fixture
}

// Invocation returns a copy of the invocation the next Execute will run
func (l *Launcher) Invocation() domain.BuildInvocation {
	return l.inv.Clone()
}

// Outcome returns the outcome of the last build, or nil before the first one
func (l *Launcher) Outcome() *domain.BuildOutcome {
	return l.last
}

// Reset clears goals, properties, options and the failure expectation.
// The working directory and its log are kept.
func (l *Launcher) Reset() *Launcher {
	if !l.ready() {
		return l
	}
	l.resetInvocation()
	l.state = configured
	return l
}

func (l *Launcher) ready() bool {
	if l.state == unconfigured || l.claim == nil {
		l.fail(ErrNotUnpacked)
		return false
	}
	return true
}

// AddGoal appends a goal
func (l *Launcher) AddGoal(goal string) *Launcher {
	if l.ready() {
		l.inv.Goals = append(l.inv.Goals, goal)
	}
	return l
}

// AddGoals appends goals in order
func (l *Launcher) AddGoals(goals ...string) *Launcher {
	for _, g := range goals {
		l.AddGoal(g)
	}
	return l
}

// SysProp sets a -Dkey=value property. Values are formatted with fmt.Sprint.
func (l *Launcher) SysProp(key string, value any) *Launcher {
	if l.ready() {
		l.inv.SetProperty(key, fmt.Sprint(value))
	}
	return l
}

// SysProps sets properties in key order
func (l *Launcher) SysProps(props map[string]string) *Launcher {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l.SysProp(k, props[k])
	}
	return l
}

// Env sets an environment variable for the build
func (l *Launcher) Env(key, value string) *Launcher {
	if l.ready() {
		if l.inv.Env == nil {
			l.inv.Env = make(map[string]string)
		}
		l.inv.Env[key] = value
	}
	return l
}

// AddOption appends a raw command line option once
func (l *Launcher) AddOption(option string) *Launcher {
	if !l.ready() {
		return l
	}
	for _, o := range l.inv.Options {
		if o == option {
			return l
		}
	}
	l.inv.Options = append(l.inv.Options, option)
	return l
}

// ActivateProfile adds -P<profile>
func (l *Launcher) ActivateProfile(profile string) *Launcher {
	return l.AddOption("-P" + profile)
}

// ForkMode sets the legacy forkMode property
func (l *Launcher) ForkMode(mode string) *Launcher { return l.SysProp("forkMode", mode) }

// ForkNever runs tests inside the build process
func (l *Launcher) ForkNever() *Launcher { return l.ForkMode("never") }

// ForkOnce runs all tests in a single fork
func (l *Launcher) ForkOnce() *Launcher { return l.ForkMode("once") }

// ForkAlways starts a fork per test class
func (l *Launcher) ForkAlways() *Launcher { return l.ForkMode("always") }

// ForkPerTest starts a fork per test
func (l *Launcher) ForkPerTest() *Launcher { return l.ForkMode("pertest") }

// ForkCount sets the number of concurrent forks
func (l *Launcher) ForkCount(n int) *Launcher { return l.SysProp("forkCount", n) }

// ReuseForks sets whether forks are reused between test classes
func (l *Launcher) ReuseForks(reuse bool) *Launcher { return l.SysProp("reuseForks", reuse) }

// Parallel sets the in-fork parallel mode, e.g. classes or methods
func (l *Launcher) Parallel(mode string) *Launcher { return l.SysProp("parallel", mode) }

// ThreadCount sets the thread count for parallel runs
func (l *Launcher) ThreadCount(n int) *Launcher { return l.SysProp("threadCount", n) }

// SetTestToRun restricts the build to the given test pattern
func (l *Launcher) SetTestToRun(pattern string) *Launcher { return l.SysProp("test", pattern) }

// FailIfNoTests sets whether a build without tests fails
func (l *Launcher) FailIfNoTests(fail bool) *Launcher { return l.SysProp("failIfNoTests", fail) }

// FailIfNoSpecifiedTests sets whether an unmatched test pattern fails the build
func (l *Launcher) FailIfNoSpecifiedTests(fail bool) *Launcher {
	return l.SysProp("surefire.failIfNoSpecifiedTests", fail)
}

// SkipAfterFailureCount skips remaining tests after n failures
func (l *Launcher) SkipAfterFailureCount(n int) *Launcher {
	return l.SysProp("surefire.skipAfterFailureCount", n)
}

// RerunFailingTestsCount reruns each failing test up to n times
func (l *Launcher) RerunFailingTestsCount(n int) *Launcher {
	return l.SysProp("surefire.rerunFailingTestsCount", n)
}

// SetGroups restricts the run to the given test groups
func (l *Launcher) SetGroups(groups string) *Launcher { return l.SysProp("groups", groups) }

// SetExcludedGroups excludes the given test groups
func (l *Launcher) SetExcludedGroups(groups string) *Launcher {
	return l.SysProp("excludedGroups", groups)
}

// RunOrder sets the order test classes run in
func (l *Launcher) RunOrder(order string) *Launcher { return l.SysProp("surefire.runOrder", order) }

// RedirectToFile sends test output to <class>-output.txt files
func (l *Launcher) RedirectToFile(redirect bool) *Launcher {
	return l.SysProp("maven.test.redirectTestOutputToFile", redirect)
}

// ShowErrorStackTraces adds -e
func (l *Launcher) ShowErrorStackTraces() *Launcher { return l.AddOption("-e") }

// DebugLogging adds -X
func (l *Launcher) DebugLogging() *Launcher { return l.AddOption("-X") }

// FailNever keeps the build going after failures
func (l *Launcher) FailNever() *Launcher { return l.AddOption("-fn") }

// Offline adds -o
func (l *Launcher) Offline() *Launcher { return l.AddOption("-o") }

// BatchMode adds --batch-mode
func (l *Launcher) BatchMode() *Launcher { return l.AddOption("--batch-mode") }

// Module builds only the given sub-project descriptor
func (l *Launcher) Module(path string) *Launcher {
	if l.ready() {
		l.inv.Options = append(l.inv.Options, "-f", filepath.ToSlash(path))
	}
	return l
}

// PluginVersion overrides the configured version of the plugin under test
func (l *Launcher) PluginVersion(version string) *Launcher {
	return l.SysProp(config.PluginVersionProperty, version)
}

// WithFailure declares that the next build is expected to fail
func (l *Launcher) WithFailure() *Launcher {
	if l.ready() {
		l.expectFailure = true
	}
	return l
}

// ResetStreams makes the next build truncate the log instead of appending to it
func (l *Launcher) ResetStreams() *Launcher {
	if l.ready() {
		l.appendLog = false
	}
	return l
}

// ExecuteTest runs the accumulated goals plus test
func (l *Launcher) ExecuteTest() (*OutputValidator, error) {
	return l.ExecuteGoals("test")
}

// ExecuteVerify runs the accumulated goals plus verify
func (l *Launcher) ExecuteVerify() (*OutputValidator, error) {
	return l.ExecuteGoals("verify")
}

// ExecuteGoals appends goals and runs the build
func (l *Launcher) ExecuteGoals(goals ...string) (*OutputValidator, error) {
	l.AddGoals(goals...)
	return l.Execute()
}

// Execute runs the accumulated invocation as exactly one build.
//
// A failed build returns a *domain.BuildFailedError unless WithFailure was
// called; a build expected to fail that succeeded returns a
// *domain.AssertionError. The validator is returned alongside either error so
// the log can still be inspected.
func (l *Launcher) Execute() (*OutputValidator, error) {
	if l.setupErr != nil {
		return nil, l.setupErr
	}
	if l.state == unconfigured || l.claim == nil {
		if l.unpackErr != nil {
			return nil, l.unpackErr
		}
		return nil, ErrNotUnpacked
	}

	inv := l.inv.Clone()
	inv.ID = uuid.NewString()
	inv.AppendLog = l.appendLog

	l.log.WithFields(logrus.Fields{
		"fixture": l.fixture,
		"id":      inv.ID,
		"args":    strings.Join(inv.Args(), " "),
	}).Debug("executing build")

	outcome, err := l.driver.Execute(l.ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", l.fixture, err)
	}
	l.last = &outcome
	l.state = executed
	l.appendLog = true

	v := newValidator(l.ctx, l.t, l.cfg, l.parser, l.claim.dir, outcome)
	switch {
	case outcome.Failed() && !l.expectFailure:
		return v, outcome.Err()
	case !outcome.Failed() && l.expectFailure:
		return v, &domain.AssertionError{
			What:     "build of " + l.fixture,
			Expected: domain.BuildFailed,
			Actual:   domain.BuildSucceeded,
		}
	}
	return v, nil
}

// ExecuteTimes runs Execute n times in the same working directory, appending
// to the log, and returns the validator of the last build.
func (l *Launcher) ExecuteTimes(n int) (*OutputValidator, error) {
	if n < 1 {
		n = 1
	}
	var v *OutputValidator
	var err error
	for i := 0; i < n; i++ {
		if v, err = l.Execute(); err != nil {
			return v, fmt.Errorf("run %d of %d: %w", i+1, n, err)
		}
	}
	return v, nil
}
