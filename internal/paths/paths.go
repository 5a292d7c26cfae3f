// Package paths resolves the rowkeeper configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Project-local directory names, relative to the working directory.
const (
	DefaultConfigDirName = ".rowkeeper"
	DefaultDataDirName   = ".rowkeeper-db"
)

// Environment variables overriding the directories.
const (
	EnvConfigDir = "ROWKEEPER_CONFIG_DIR"
	EnvDataDir   = "ROWKEEPER_DATA_DIR"
)

const appName = "rowkeeper"

// platform holds environment lookups that tests override.
var platform = struct {
	getwd         func() (string, error)
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	getwd:         os.Getwd,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// UserConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/rowkeeper (fallback ~/.config/rowkeeper)
// Others:  os.UserConfigDir()/rowkeeper
func UserConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platform.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
	dir, err := platform.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory: the flag, then
// ROWKEEPER_CONFIG_DIR, then an existing ./.rowkeeper, then an existing
// per-user directory. With none of those it returns ./.rowkeeper, which the
// caller may create.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}

	cwd, err := platform.getwd()
	if err != nil {
		return "", err
	}
	local := filepath.Join(cwd, DefaultConfigDirName)
	if isDir(local) {
		return local, nil
	}
	if user, err := UserConfigDir(); err == nil && isDir(user) {
		return user, nil
	}
	return local, nil
}

// ResolveDataDir returns the data directory: the flag, then the config file
// value, then ROWKEEPER_DATA_DIR, then ./.rowkeeper-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := platform.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
