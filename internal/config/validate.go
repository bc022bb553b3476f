package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wasilibs/go-re2"
)

// launchd labels are reverse-DNS identifiers
var labelPrefixPattern = re2.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*(\.[A-Za-z0-9][A-Za-z0-9-]*)+$`)

// Validate проверяет валидность конфигурации
func (c *Config) Validate() []error {
	var errors []error

	// Проверка registry
	if err := validatePath(c.Registry.Path, "registry.path"); err != nil {
		errors = append(errors, err)
	}

	// Проверка launchd
	if err := validatePath(c.Launchd.AgentsDir, "launchd.agents_dir"); err != nil {
		errors = append(errors, err)
	}
	if err := validatePath(c.Launchd.LogDir, "launchd.log_dir"); err != nil {
		errors = append(errors, err)
	}
	if !labelPrefixPattern.MatchString(c.Launchd.LabelPrefix) {
		errors = append(errors, fmt.Errorf("invalid launchd.label_prefix: %q (expected reverse-DNS form, e.g. com.example.jobs)", c.Launchd.LabelPrefix))
	}
	if c.Launchd.LogPrefix == "" || strings.ContainsRune(c.Launchd.LogPrefix, filepath.Separator) {
		errors = append(errors, fmt.Errorf("invalid launchd.log_prefix: %q", c.Launchd.LogPrefix))
	}
	if !filepath.IsAbs(c.Launchd.Shell) {
		errors = append(errors, fmt.Errorf("launchd.shell must be an absolute path, got %q", c.Launchd.Shell))
	}
	if c.Launchd.RetryAttempts < 1 || c.Launchd.RetryAttempts > 10 {
		errors = append(errors, fmt.Errorf("launchd.retry_attempts must be between 1 and 10 (got %d)", c.Launchd.RetryAttempts))
	}

	// Проверка machines
	seen := make(map[string]bool, len(c.Machines.Known))
	for _, m := range c.Machines.Known {
		if strings.TrimSpace(m) == "" {
			errors = append(errors, fmt.Errorf("machines.known contains empty identity"))
			continue
		}
		if seen[m] {
			errors = append(errors, fmt.Errorf("machines.known contains duplicate identity %q", m))
		}
		seen[m] = true
	}
	if len(seen) > 0 {
		if c.Machines.Current != "" && !seen[c.Machines.Current] {
			errors = append(errors, fmt.Errorf("machines.current %q is not listed in machines.known", c.Machines.Current))
		}
		for host, id := range c.Machines.Hosts {
			if !seen[id] {
				errors = append(errors, fmt.Errorf("machines.hosts[%q] maps to unknown identity %q", host, id))
			}
		}
	}

	// Проверка agent
	if c.Agent.Binary == "" {
		errors = append(errors, fmt.Errorf("agent.binary is required"))
	}
	for alias, canonical := range c.Agent.Aliases {
		if alias == "" || canonical == "" {
			errors = append(errors, fmt.Errorf("agent.aliases contains an empty name"))
		}
	}

	// Проверка logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errors = append(errors, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errors = append(errors, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}
	if c.Logging.Output == "" {
		errors = append(errors, fmt.Errorf("logging.output is required"))
	}

	return errors
}

func validatePath(path, fieldName string) error {
	if path == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	if strings.HasPrefix(path, "~") {
		return nil
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("%s contains potentially dangerous path traversal sequence", fieldName)
	}

	return nil
}
