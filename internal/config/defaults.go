package config

const (
	// DefaultBuildCommand is the external build tool
	DefaultBuildCommand = "mvn"
	// DefaultFixturesRoot is where fixture projects are looked up
	DefaultFixturesRoot = "testdata/fixtures"
	// DefaultWorkRoot is where fixtures are unpacked
	DefaultWorkRoot = "target/it"
	// DefaultScenarioFile is the scenario table read by the run command
	DefaultScenarioFile = "scenarios.yaml"
	// DefaultLogFileName is the transcript file written into each working directory
	DefaultLogFileName = "log.txt"
	// DefaultReportsDir is the unit test report directory relative to a project
	DefaultReportsDir = "target/surefire-reports"
	// DefaultIntegrationReportsDir is the integration test report directory
	DefaultIntegrationReportsDir = "target/failsafe-reports"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "results.json"
	// DefaultOutputJSONDir is the default output directory, relative to the work root
	DefaultOutputJSONDir = ".itkit"
	// DefaultProcessors is the default number of scenario workers
	DefaultProcessors = 4
	// DefaultHistoryRuns is how many recent runs the history command inspects
	DefaultHistoryRuns = 10
	// DefaultLogLevel is the default logrus level
	DefaultLogLevel = "info"
	// DefaultConfigFile is read from the current directory when present
	DefaultConfigFile = "itkit.yaml"
	// PluginVersionProperty carries the version of the plugin under test into fixtures
	PluginVersionProperty = "surefire.version"
)

// DefaultOptions are passed to every build
var DefaultOptions = []string{
	"--batch-mode",
	"-e",
}

// DefaultPathsToIgnore are the directories skipped when scanning fixtures
var DefaultPathsToIgnore = []string{
	"target",
	"node_modules",
	".git",
	".idea",
}
