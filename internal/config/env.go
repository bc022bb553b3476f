package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv загружает переменные окружения из .env файла.
// Уже установленные переменные окружения не перезаписываются.
func LoadEnv(path string) error {
	return godotenv.Load(ExpandHome(path))
}

// LoadEnvFiles loads the .env files that exist, in order, and returns the
// ones it read. Variables that are already set win over every file, and an
// earlier file wins over a later one.
func LoadEnvFiles(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		path := ExpandHome(p)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return loaded, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := LoadEnv(path); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
