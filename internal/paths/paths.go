// Package paths resolves configuration and data directory locations for
// the git-project CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Application directory name used under platform config/data roots.
const appDirName = "git-project"

// DefaultDataDirName is the CWD-relative data directory used by the sqlite
// backend when nothing else is configured.
const DefaultDataDirName = ".git-project-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "GIT_PROJECT_CONFIG_DIR"
	EnvDataDir   = "GIT_PROJECT_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/git-project (fallback ~/.config/git-project)
// macOS:   ~/Library/Application Support/git-project
// Windows: %APPDATA%/git-project
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > GIT_PROJECT_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory for the sqlite backend
// following the precedence chain: flag > config.yaml value >
// GIT_PROJECT_DATA_DIR env > $(CWD)/.git-project-db.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
