package directive

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the subset of SKILL.md / command file metadata that
// matters for invocation names.
type Frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty"`
}

// ParseFrontmatter extracts YAML frontmatter from a markdown file. Content
// without a leading "---" has no frontmatter and yields a zero value.
func ParseFrontmatter(content string) (Frontmatter, error) {
	raw, ok, err := splitFrontmatter(content)
	if err != nil || !ok {
		return Frontmatter{}, err
	}
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return Frontmatter{}, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}
	fm.Name = strings.TrimSpace(fm.Name)
	return fm, nil
}

// splitFrontmatter returns the text between the opening and closing "---".
func splitFrontmatter(content string) (string, bool, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")

	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", false, nil
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), true, nil
		}
	}
	return "", false, fmt.Errorf("YAML frontmatter must be closed with '---'")
}
