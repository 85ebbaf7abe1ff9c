package cli

import "itkit/internal/config"

// Flags holds command-line flags
type Flags struct {
	ConfigFile   string
	LogLevel     string
	Processors   int
	Filter       string
	FailFast     bool
	OnlyFailed   bool
	Plan         bool
	ViewFailures bool
	TestClasses  bool
	ClassFilter  string
	Merge        string
	LogFile      string
	Runs         int
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:   f.Processors,
		Filter:       f.Filter,
		FailFast:     f.FailFast,
		OnlyFailed:   f.OnlyFailed,
		Plan:         f.Plan,
		ViewFailures: f.ViewFailures,
		TestClasses:  f.TestClasses,
		ClassFilter:  f.ClassFilter,
		Merge:        f.Merge,
		LogFile:      f.LogFile,
		Runs:         f.Runs,
	}
}

// LoadConfig resolves the config file and overrides it with the parsed flags.
// The result is copied into cfg so components built earlier see it.
func (f *Flags) LoadConfig(cfg *config.Config) error {
	loaded, err := config.Load(f.ConfigFile)
	if err != nil {
		return err
	}
	if f.LogLevel != "" {
		loaded.LogLevel = f.LogLevel
	}
	loaded.ApplyFlags(f.ToConfigFlags())
	*cfg = *loaded
	return nil
}
