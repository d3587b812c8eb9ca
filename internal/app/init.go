package app

import (
	"fmt"
	"os"

	"nutri-go/internal/config"
	"nutri-go/internal/encryption"
)

// InitConfig writes cfg to path. When the encryption type needs keys, they
// are generated first so that a failed setup leaves no config behind.
// Keys left by an earlier attempt are reused. passphrase is only called
// when new keys are generated. It reports whether keys were generated.
func InitConfig(path string, cfg *config.Config, passphrase func() (string, error)) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, fmt.Errorf("config file already exists at %s", path)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return false, err
	}

	generated := false
	if encryption.RequiresPassphrase(cfg.Encryption) && !enc.IsConfigured() {
		pass, err := passphrase()
		if err != nil {
			return false, err
		}
		if err := enc.Setup(pass); err != nil {
			return false, fmt.Errorf("setting up encryption: %w", err)
		}
		generated = true
	}

	if err := config.Init(path, cfg); err != nil {
		return generated, fmt.Errorf("failed to initialize config: %w", err)
	}
	return generated, nil
}
