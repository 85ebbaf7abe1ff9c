package domain

// Expectation lists what a scenario checks after its builds ran
type Expectation struct {
	Counts         *Counts  `yaml:"counts,omitempty" json:"counts,omitempty"`
	IgnoreFlakes   bool     `yaml:"ignore_flakes,omitempty" json:"ignore_flakes,omitempty"`
	Integration    bool     `yaml:"integration,omitempty" json:"integration,omitempty"` // Read failsafe reports instead of surefire reports
	LogContains    []string `yaml:"log_contains,omitempty" json:"log_contains,omitempty"`
	LogNotContains []string `yaml:"log_not_contains,omitempty" json:"log_not_contains,omitempty"`
	Files          []string `yaml:"files,omitempty" json:"files,omitempty"`
	NoFiles        []string `yaml:"no_files,omitempty" json:"no_files,omitempty"`
	// DistinctMarkers names a file whose lines must all differ (e.g. one PID per fork)
	DistinctMarkers string `yaml:"distinct_markers,omitempty" json:"distinct_markers,omitempty"`
	// EqualMarkers names a file whose lines must all be equal
	EqualMarkers string `yaml:"equal_markers,omitempty" json:"equal_markers,omitempty"`
}

// Scenario is one named row of a scenario table
type Scenario struct {
	Name          string            `yaml:"name" json:"name"`
	Fixture       string            `yaml:"fixture" json:"fixture"`
	Suffix        string            `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	Goals         []string          `yaml:"goals,omitempty" json:"goals,omitempty"`
	Options       []string          `yaml:"options,omitempty" json:"options,omitempty"`
	Profiles      []string          `yaml:"profiles,omitempty" json:"profiles,omitempty"`
	SysProps      map[string]string `yaml:"sys_props,omitempty" json:"sys_props,omitempty"`
	Env           map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	ExpectFailure bool              `yaml:"expect_failure,omitempty" json:"expect_failure,omitempty"`
	Repeat        int               `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Expect        Expectation       `yaml:"expect" json:"expect"`
}
