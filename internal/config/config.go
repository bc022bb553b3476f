package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aatumaykin/nexsched/internal/constants"
)

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := expandEnvVars(&cfg); err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	return &cfg, nil
}

// LoadOptional загружает конфигурацию, если файл существует.
// Отсутствующий файл не является ошибкой: возвращаются значения по умолчанию.
func LoadOptional(path string) (*Config, error) {
	path = ExpandHome(path)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return Load(path)
}

// ResolvePath returns the config file to use: the explicit flag value, then
// $NEXSCHED_CONFIG, then DefaultConfigPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return ExpandHome(flagValue)
	}
	if env := os.Getenv(constants.EnvConfigPath); env != "" {
		return ExpandHome(env)
	}
	return ExpandHome(DefaultConfigPath)
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return []byte(sb.String()), nil
}

// expandEnvVars расширяет переменные окружения в конфигурации
func expandEnvVars(c *Config) error {
	paths := []*string{
		&c.Registry.Path,
		&c.Launchd.AgentsDir,
		&c.Launchd.LogDir,
		&c.Launchd.Shell,
		&c.Launchd.Launchctl,
		&c.Metrics.Textfile,
	}
	for _, p := range paths {
		*p = ExpandHome(expandEnv(*p))
	}

	c.Launchd.PathEnv = expandEnv(c.Launchd.PathEnv)
	c.Machines.Current = expandEnv(c.Machines.Current)
	c.Logging.Output = ExpandHome(expandEnv(c.Logging.Output))

	for i, dir := range c.Agent.SkillDirs {
		c.Agent.SkillDirs[i] = ExpandHome(expandEnv(dir))
	}
	for i, dir := range c.Agent.CommandDirs {
		c.Agent.CommandDirs[i] = ExpandHome(expandEnv(dir))
	}

	return nil
}

// expandEnv расширяет переменную окружения формата ${VAR:default}
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	rest := s[end+1:]
	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		key := parts[0]
		defaultVal := parts[1]
		if val := os.Getenv(key); val != "" {
			return val + rest
		}
		return defaultVal + rest
	}

	// Без значения по умолчанию
	return os.Getenv(content) + rest
}

// ExpandHome расширяет ~ в пути
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
