package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"nutri-go/internal/config"
	"nutri-go/internal/database"
	"nutri-go/internal/encryption"
	"nutri-go/internal/vault"
)

// ErrNoBackup is returned by Restore when the vault holds no database
// snapshot for this host.
var ErrNoBackup = errors.New("no database backup in vault")

// Restore replaces the local database with the latest snapshot uploaded to
// the vault and returns the snapshot's version. passphrase unlocks the
// private key; it is ignored by encryption types that do not need one.
func Restore(ctx context.Context, cfg *config.Config, passphrase string) (int64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("restore requires a sqlite database, got %q", cfg.Database.Type)
	}

	v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
	if err != nil {
		return 0, fmt.Errorf("creating vault: %w", err)
	}

	version, err := v.GetMetadataVersion(cfg.HostID, dbMetadataName)
	if err != nil {
		return 0, fmt.Errorf("checking remote metadata version: %w", err)
	}
	if version == 0 {
		return 0, ErrNoBackup
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking private key: %w", err)
	}

	var sealed bytes.Buffer
	if err := v.GetMetadata(cfg.HostID, dbMetadataName, &sealed); err != nil {
		return 0, fmt.Errorf("downloading database backup: %w", err)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating data_dir: %w", err)
	}
	tmp, err := os.CreateTemp(cfg.Database.DataDir, "restore-*.db")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := dc.Decrypt(&sealed, tmp); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("decrypting database backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("writing database backup: %w", err)
	}

	if err := verifySnapshot(tmpPath, version); err != nil {
		return 0, err
	}

	if err := os.Rename(tmpPath, database.DatabasePath(cfg.Database, cfg.HostID)); err != nil {
		return 0, fmt.Errorf("replacing database: %w", err)
	}
	return version, nil
}

// verifySnapshot opens the restored file and checks that its journal matches
// the version the vault recorded for it.
func verifySnapshot(path string, version int64) error {
	db, err := database.NewSQLiteDatabase(path)
	if err != nil {
		return fmt.Errorf("opening restored database: %w", err)
	}
	defer db.Close()

	maxID, err := db.MaxOperationID()
	if err != nil {
		return fmt.Errorf("reading restored database: %w", err)
	}
	if maxID != version {
		return fmt.Errorf("restored database version %d does not match vault version %d", maxID, version)
	}
	return nil
}
