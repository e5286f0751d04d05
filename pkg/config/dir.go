package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfigDir overrides the platform config directory when set. Handy
// for tests and for keeping several setups side by side.
const EnvConfigDir = "GITSIDIAN_CONFIG_DIR"

// appDirName is the subdirectory under the platform config root.
const appDirName = "gitsidian"

// Dir resolves the directory that holds the configuration file:
// $GITSIDIAN_CONFIG_DIR when set, otherwise the platform config
// directory (XDG on Linux, Application Support on macOS, AppData on
// Windows) plus the application name.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// DefaultPath resolves the default location of the config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
