package directive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aatumaykin/nexsched/internal/logger"
)

// SkillFilename is the file that defines a skill inside its directory.
const SkillFilename = "SKILL.md"

// LoaderConfig lists where directive definitions live.
type LoaderConfig struct {
	SkillDirs   []string          // directories holding <skill>/SKILL.md
	CommandDirs []string          // directories holding <command>.md, nested dirs become "a:b"
	Aliases     map[string]string // extra alias -> canonical pairs from configuration
	Logger      *logger.Logger
}

// Loader builds a Registry from skill and command directories.
type Loader struct {
	cfg LoaderConfig
	log *logger.Logger
}

// NewLoader creates a new Loader instance.
func NewLoader(cfg LoaderConfig) *Loader {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{cfg: cfg, log: log}
}

// Load reads all configured directories. Command directories are loaded
// after skill directories, so a command with the same name replaces the
// skill. Configured aliases are applied last. Missing directories are
// skipped; files with broken frontmatter are logged and skipped.
func (l *Loader) Load() (*Registry, error) {
	reg := NewRegistry()

	for _, dir := range l.cfg.SkillDirs {
		if err := l.loadSkills(reg, dir); err != nil {
			return nil, fmt.Errorf("failed to load skills from %s: %w", dir, err)
		}
	}
	for _, dir := range l.cfg.CommandDirs {
		if err := l.loadCommands(reg, dir); err != nil {
			return nil, fmt.Errorf("failed to load commands from %s: %w", dir, err)
		}
	}
	for alias, canonical := range l.cfg.Aliases {
		if _, _, known := reg.Resolve(canonical); !known {
			reg.Add(Directive{Name: canonical, Source: "config"})
		}
		reg.AddAlias(alias, canonical)
	}

	l.log.Debug("directives loaded", logger.Field{Key: "count", Value: reg.Len()})
	return reg, nil
}

func (l *Loader) loadSkills(reg *Registry, dir string) error {
	if !dirExists(dir) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != SkillFilename {
			return nil
		}

		fm, ok := l.readFrontmatter(path)
		if !ok {
			return nil
		}
		name := fm.Name
		if name == "" {
			name = filepath.Base(filepath.Dir(path))
		}
		reg.Add(Directive{Name: name, Aliases: fm.Aliases, Source: "skill", Path: path})
		return nil
	})
}

func (l *Loader) loadCommands(reg *Registry, dir string) error {
	if !dirExists(dir) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		name = strings.ReplaceAll(name, "/", ":")

		fm, ok := l.readFrontmatter(path)
		if !ok {
			return nil
		}
		reg.Add(Directive{Name: name, Aliases: fm.Aliases, Source: "command", Path: path})
		return nil
	})
}

func (l *Loader) readFrontmatter(path string) (Frontmatter, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		l.log.Warn("skipping unreadable directive file",
			logger.Field{Key: "file", Value: path},
			logger.Field{Key: "error", Value: err})
		return Frontmatter{}, false
	}
	fm, err := ParseFrontmatter(string(content))
	if err != nil {
		l.log.Warn("skipping directive file with invalid frontmatter",
			logger.Field{Key: "file", Value: path},
			logger.Field{Key: "error", Value: err})
		return Frontmatter{}, false
	}
	return fm, true
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
