package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a harness run. It is resolved once and
// passed explicitly to everything that needs it.
type Config struct {
	// Build tool settings
	BuildCommand   string   `yaml:"build_command"`
	DefaultOptions []string `yaml:"default_options"`
	PluginVersion  string   `yaml:"plugin_version"`
	LogFileName    string   `yaml:"log_file"`

	// Fixture settings
	FixturesRoot  string   `yaml:"fixtures_root"`
	WorkRoot      string   `yaml:"work_root"`
	PathsToIgnore []string `yaml:"paths_to_ignore"`
	ScenarioFile  string   `yaml:"scenario_file"`

	// Report settings
	ReportsDir            string `yaml:"reports_dir"`
	IntegrationReportsDir string `yaml:"integration_reports_dir"`

	// Output settings
	OutputJSONFile string `yaml:"output_json_file"`
	OutputJSONDir  string `yaml:"output_json_dir"`
	HistoryDSN     string `yaml:"history_dsn"`

	// Execution settings
	Processors int    `yaml:"processors"`
	LogLevel   string `yaml:"log_level"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
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

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		BuildCommand:          DefaultBuildCommand,
		LogFileName:           DefaultLogFileName,
		FixturesRoot:          DefaultFixturesRoot,
		WorkRoot:              DefaultWorkRoot,
		ScenarioFile:          DefaultScenarioFile,
		ReportsDir:            DefaultReportsDir,
		IntegrationReportsDir: DefaultIntegrationReportsDir,
		OutputJSONFile:        DefaultOutputJSONFile,
		OutputJSONDir:         DefaultOutputJSONDir,
		Processors:            DefaultProcessors,
		LogLevel:              DefaultLogLevel,
		Flags:                 Flags{Processors: DefaultProcessors},
	}
	cfg.DefaultOptions = append([]string(nil), DefaultOptions...)
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	return cfg
}

// Load creates a config from defaults, the optional YAML file at path, a .env
// file next to it and ITKIT_* environment variables, in that order.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
			if err := cfg.resolveFilePaths(data, filepath.Dir(path)); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}

		// .env next to the config file might not exist, that's okay
		_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveFilePaths makes directories set in the config file relative to the
// file instead of the working directory. Defaults and env values are untouched.
func (c *Config) resolveFilePaths(data []byte, dir string) error {
	var set struct {
		FixturesRoot *string `yaml:"fixtures_root"`
		WorkRoot     *string `yaml:"work_root"`
		ScenarioFile *string `yaml:"scenario_file"`
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return err
	}
	resolve := func(fromFile *string, field *string) {
		if fromFile != nil && *field != "" && !filepath.IsAbs(*field) {
			*field = filepath.Join(dir, *field)
		}
	}
	resolve(set.FixturesRoot, &c.FixturesRoot)
	resolve(set.WorkRoot, &c.WorkRoot)
	resolve(set.ScenarioFile, &c.ScenarioFile)
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ITKIT_BUILD_COMMAND"); v != "" {
		c.BuildCommand = v
	}
	if v := os.Getenv("ITKIT_FIXTURES_ROOT"); v != "" {
		c.FixturesRoot = v
	}
	if v := os.Getenv("ITKIT_SCENARIO_FILE"); v != "" {
		c.ScenarioFile = v
	}
	if v := os.Getenv("ITKIT_WORK_ROOT"); v != "" {
		c.WorkRoot = v
	}
	if v := os.Getenv("ITKIT_PLUGIN_VERSION"); v != "" {
		c.PluginVersion = v
	}
	if v := os.Getenv("ITKIT_HISTORY_DSN"); v != "" {
		c.HistoryDSN = v
	}
	if v := os.Getenv("ITKIT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ITKIT_DEFAULT_OPTIONS"); v != "" {
		c.DefaultOptions = strings.Fields(v)
	}
	if v := os.Getenv("ITKIT_PROCESSORS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ITKIT_PROCESSORS %q: %w", v, err)
		}
		c.Processors = n
	}
	return nil
}

// ApplyFlags copies parsed command flags into the config
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
}

// GetFixturePath returns the directory of a named fixture
func (c *Config) GetFixturePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.FixturesRoot, filepath.FromSlash(name))
}

// GetWorkRoot returns the absolute directory fixtures are unpacked into
func (c *Config) GetWorkRoot() string {
	if abs, err := filepath.Abs(c.WorkRoot); err == nil {
		return abs
	}
	return c.WorkRoot
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and failures always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	dir := c.OutputJSONDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.GetWorkRoot(), dir)
	}
	return filepath.Join(dir, c.OutputJSONFile)
}

// GetLogFileName returns the transcript file name
func (c *Config) GetLogFileName() string {
	if c.LogFileName == "" {
		return DefaultLogFileName
	}
	return c.LogFileName
}
