package config

// Значения по умолчанию
const (
	DefaultConfigPath    = "~/.nexsched/config.toml"
	DefaultEnvPath       = "~/.nexsched/.env"
	DefaultRegistryPath  = "~/.nexsched/registry.json"
	DefaultAgentsDir     = "~/Library/LaunchAgents"
	DefaultLabelPrefix   = "com.claude.scheduled"
	DefaultLogDir        = "/tmp"
	DefaultLogPrefix     = "claude-scheduled"
	DefaultShell         = "/bin/bash"
	DefaultLaunchctl     = "launchctl"
	DefaultRetryAttempts = 3
	DefaultAgentBinary   = "claude"
	DefaultSkillDir      = "~/.claude/skills"
	DefaultCommandDir    = "~/.claude/commands"
)

// Default returns a configuration with every default applied and paths
// expanded.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	_ = expandEnvVars(cfg)
	return cfg
}

// applyDefaults применяет значения по умолчанию
func applyDefaults(c *Config) {
	if c.Registry.Path == "" {
		c.Registry.Path = DefaultRegistryPath
	}

	if c.Launchd.AgentsDir == "" {
		c.Launchd.AgentsDir = DefaultAgentsDir
	}
	if c.Launchd.LabelPrefix == "" {
		c.Launchd.LabelPrefix = DefaultLabelPrefix
	}
	if c.Launchd.LogDir == "" {
		c.Launchd.LogDir = DefaultLogDir
	}
	if c.Launchd.LogPrefix == "" {
		c.Launchd.LogPrefix = DefaultLogPrefix
	}
	if c.Launchd.Shell == "" {
		c.Launchd.Shell = DefaultShell
	}
	if c.Launchd.Launchctl == "" {
		c.Launchd.Launchctl = DefaultLaunchctl
	}
	if c.Launchd.RetryAttempts == 0 {
		c.Launchd.RetryAttempts = DefaultRetryAttempts
	}

	if c.Agent.Binary == "" {
		c.Agent.Binary = DefaultAgentBinary
	}
	if c.Agent.SkillDirs == nil {
		c.Agent.SkillDirs = []string{DefaultSkillDir}
	}
	if c.Agent.CommandDirs == nil {
		c.Agent.CommandDirs = []string{DefaultCommandDir}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
}
