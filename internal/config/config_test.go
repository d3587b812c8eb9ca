package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite(t *testing.T) {
	original := &Config{
		HostID:  "test-host-abc",
		BaseDir: "/home/user/.local/share/nutri",
		LogDir:  "/home/user/.local/share/nutri/log",
		Vaults: []VaultConfig{
			{Type: "s3", Name: "cloud", S3Bucket: "meals", S3Prefix: "nutri", S3Region: "ap-northeast-1", S3Endpoint: "http://localhost:9000"},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/nutri/keys/nutri.pub",
			PrivateKeyPath: "/home/user/.local/share/nutri/keys/nutri.key",
		},
		Database:  DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/nutri/db"},
		Reference: ReferenceConfig{Path: "/etc/nutri/reference.toml"},
		Analyzer:  AnalyzerConfig{DelayMS: 250},
		Advice:    AdviceConfig{Tips: []string{"Drink water.", "Sleep early."}},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if len(got.Vaults) != 1 {
		t.Fatalf("len(Vaults) = %d, want 1", len(got.Vaults))
	}
	if got.Vaults[0] != original.Vaults[0] {
		t.Errorf("Vaults[0] = %+v, want %+v", got.Vaults[0], original.Vaults[0])
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Reference.Path != original.Reference.Path {
		t.Errorf("Reference.Path = %q, want %q", got.Reference.Path, original.Reference.Path)
	}
	if got.Analyzer.DelayMS != 250 {
		t.Errorf("Analyzer.DelayMS = %d, want 250", got.Analyzer.DelayMS)
	}
	if len(got.Advice.Tips) != 2 {
		t.Errorf("len(Advice.Tips) = %d, want 2", len(got.Advice.Tips))
	}
}

func TestManager_Read_Invalid(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("host_id = ")); err == nil {
		t.Error("Read() expected error for malformed TOML")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/nutri")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"HostID", cfg.HostID, "host-1"},
		{"BaseDir", cfg.BaseDir, "/data/nutri"},
		{"LogDir", cfg.LogDir, "/data/nutri/log"},
		{"Encryption.Type", cfg.Encryption.Type, "none"},
		{"Encryption.PublicKeyPath", cfg.Encryption.PublicKeyPath, "/data/nutri/keys/nutri.pub"},
		{"Encryption.PrivateKeyPath", cfg.Encryption.PrivateKeyPath, "/data/nutri/keys/nutri.key"},
		{"Database.Type", cfg.Database.Type, "sqlite"},
		{"Database.DataDir", cfg.Database.DataDir, "/data/nutri/db"},
		{"Vaults[0].FSVaultRoot", cfg.Vaults[0].FSVaultRoot, "/data/nutri/vault"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	if got := cfg.Analyzer.Delay(); got != DefaultAnalyzerDelay {
		t.Errorf("Analyzer.Delay() = %v, want %v", got, DefaultAnalyzerDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestAnalyzerConfig_Delay(t *testing.T) {
	tests := []struct {
		ms   int
		want time.Duration
	}{
		{0, 0},
		{-5, 0},
		{800, 800 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := (AnalyzerConfig{DelayMS: tt.ms}).Delay(); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing host", func(c *Config) { c.HostID = "" }, true},
		{"no vaults", func(c *Config) { c.Vaults = nil }, true},
		{"vault without type", func(c *Config) { c.Vaults[0].Type = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("h1", "/data")
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "nutri.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nutri.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nutri.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "read-test" {
			t.Errorf("HostID = %q, want %q", got.HostID, "read-test")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/nutri.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
