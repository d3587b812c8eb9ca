package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("NUTRI_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("NUTRI_HOME", "/custom/nutri")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/config.toml")
		}
		if defaults["base_dir"] != "/custom/nutri" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/nutri")
		}
		if defaults["log_dir"] != "/custom/nutri/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/nutri/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("NUTRI_CONFIG_PATH", "")
		t.Setenv("NUTRI_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "nutri.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "nutri")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if defaults["log_dir"] != wantLog {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], wantLog)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("sets unset variables", func(t *testing.T) {
		t.Setenv(EnvHome, "")
		os.Unsetenv(EnvHome)

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("NUTRI_HOME=/from/dotenv\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}
		if got := os.Getenv(EnvHome); got != "/from/dotenv" {
			t.Errorf("%s = %q, want %q", EnvHome, got, "/from/dotenv")
		}
	})

	t.Run("does not override", func(t *testing.T) {
		t.Setenv(EnvHome, "/from/env")

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("NUTRI_HOME=/from/dotenv\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}
		if got := os.Getenv(EnvHome); got != "/from/env" {
			t.Errorf("%s = %q, want %q", EnvHome, got, "/from/env")
		}
	})

	t.Run("missing file is fine", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("LoadDotEnv() error = %v", err)
		}
	})
}
