package encryption

import (
	"fmt"

	"nutri-go/internal/config"
	"nutri-go/internal/nutri"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (nutri.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return NoneEncryptor{}, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}

// RequiresPassphrase reports whether the configured encryption type needs a
// passphrase for setup and restore.
func RequiresPassphrase(cfg config.EncryptionConfig) bool {
	return cfg.Type == "age"
}
