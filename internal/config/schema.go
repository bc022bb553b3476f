// Package config provides configuration loading and validation for nexsched.
// It supports TOML configuration files with environment variable expansion,
// default values, and validation.
//
// Configuration structure:
//   - [registry]: location of the shared task registry
//   - [launchd]: agent directory, label namespace, log files, shell
//   - [machines]: current identity, known identities, hostname mapping
//   - [agent]: agent CLI binary, skill/command directories, aliases
//   - [logging]: Logging level, format, and output
//   - [metrics]: Prometheus textfile destination
//
// Environment variables:
// Environment variables can be referenced using ${VAR} or ${VAR:default} syntax.
// For example: path = "${NEXSCHED_REGISTRY:~/Sync/nexsched/registry.json}"
package config

// Config represents the main application configuration.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Launchd  LaunchdConfig  `toml:"launchd"`
	Machines MachinesConfig `toml:"machines"`
	Agent    AgentConfig    `toml:"agent"`
	Logging  LoggingConfig  `toml:"logging"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// RegistryConfig представляет конфигурацию реестра задач
type RegistryConfig struct {
	Path string `toml:"path"`
}

// LaunchdConfig представляет конфигурацию launchd
type LaunchdConfig struct {
	AgentsDir     string `toml:"agents_dir"`
	LabelPrefix   string `toml:"label_prefix"`
	LogDir        string `toml:"log_dir"`
	LogPrefix     string `toml:"log_prefix"`
	Shell         string `toml:"shell"`
	Launchctl     string `toml:"launchctl"`
	PathEnv       string `toml:"path_env"`
	RetryAttempts int    `toml:"retry_attempts"`
}

// MachinesConfig представляет конфигурацию машин
type MachinesConfig struct {
	Current string            `toml:"current"`
	Known   []string          `toml:"known"`
	Hosts   map[string]string `toml:"hosts"`
}

// AgentConfig представляет конфигурацию agent CLI
type AgentConfig struct {
	Binary      string            `toml:"binary"`
	SkillDirs   []string          `toml:"skill_dirs"`
	CommandDirs []string          `toml:"command_dirs"`
	Aliases     map[string]string `toml:"aliases"`
}

// LoggingConfig представляет конфигурацию логирования
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// MetricsConfig представляет конфигурацию экспорта метрик
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}
