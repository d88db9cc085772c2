package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName    = "brlreview"
	configName = "config"
	configFile = configName + ".yaml"
)

// ConfigDirEnvVar overrides the configuration directory.
const ConfigDirEnvVar = EnvPrefix + "_CONFIG_DIR"

// GetConfigDir returns the directory holding config.yaml:
//   - $BRLREVIEW_CONFIG_DIR when set
//   - Windows: %LOCALAPPDATA%\brlreview
//   - Linux: $XDG_CONFIG_HOME/brlreview
//   - otherwise, macOS included: $HOME/.config/brlreview
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir, nil
	}

	if runtime.GOOS == "windows" {
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			profile := os.Getenv("USERPROFILE")
			if profile == "" {
				return "", errors.New("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			base = filepath.Join(profile, "AppData", "Local")
		}
		return filepath.Join(base, appName), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && runtime.GOOS != "darwin" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the full path to the default configuration file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}
