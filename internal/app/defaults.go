package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by GetDefaults.
const (
	EnvConfigPath = "NUTRI_CONFIG_PATH"
	EnvHome       = "NUTRI_HOME"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - NUTRI_CONFIG_PATH: config file location (default: ~/.config/nutri.toml)
//   - NUTRI_HOME: base directory for nutri data (default: ~/.local/share/nutri)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome(EnvConfigPath, ".config", "nutri.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := envOrHome(EnvHome, ".local", "share", "nutri")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// envOrHome returns the value of env, or rel joined onto the user's home
// directory when env is unset or empty.
func envOrHome(env string, rel ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, rel...)...), nil
}

// LoadDotEnv loads variables from the .env file at path into the process
// environment. Variables already set are not overridden and a missing file
// is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}
