package constants

// Build information used when ldflags do not set it
const (
	DefaultVersion   = "0.1.0-dev"
	DefaultBuildTime = "unknown"
	DefaultGitCommit = "unknown"
	DefaultGoVersion = "unknown"
)

// ListCommandWidth is the display width of the command column in list output
const ListCommandWidth = 40

// EnvConfigPath names the variable that overrides the configuration file location
const EnvConfigPath = "NEXSCHED_CONFIG"
