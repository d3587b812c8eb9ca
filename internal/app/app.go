package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"nutri-go/internal/config"
	"nutri-go/internal/database"
	"nutri-go/internal/encryption"
	"nutri-go/internal/nutri"
	"nutri-go/internal/reference"
	"nutri-go/internal/vault"
)

// dbMetadataName is the vault metadata item holding the database snapshot.
const dbMetadataName = "db"

// NutriApp is the application layer between the CLI and NutriService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI input, and manages the DB lifecycle on Close.
type NutriApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	vault     nutri.Vault
	encryptor nutri.Encryptor
	service   *nutri.NutriService
	op        *Operation
	logFile   *os.File
}

// NewNutriApp creates a fully wired NutriApp from the given config and loads
// the persisted state, seeding demo data on first run.
// operation identifies the CLI command being run (e.g. "LogFood", "Dashboard").
// The caller must call Close when done.
func NewNutriApp(ctx context.Context, cfg *config.Config, operation, parameters string) (*NutriApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		return nil, fmt.Errorf("encryption keys not found: run `nutri config init`")
	}

	tables, err := reference.Load(cfg.Reference.Path)
	if err != nil {
		return nil, fmt.Errorf("loading reference tables: %w", err)
	}
	if len(cfg.Advice.Tips) > 0 {
		tables.Tips = cfg.Advice.Tips
	}
	ref := tables.Reference()

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	// Check local DB version against remote vault version.
	remoteVersion, err := v.GetMetadataVersion(cfg.HostID, dbMetadataName)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking remote metadata version: %w", err)
	}

	localMax, err := db.MaxOperationID()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking local metadata version: %w", err)
	}

	if remoteVersion > localMax {
		db.Close()
		return nil, fmt.Errorf("local database is behind remote (local=%d, remote=%d): run `nutri restore`", localMax, remoteVersion)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	seed := uint64(time.Now().UnixNano())
	chooser := nutri.NewRandChooser(seed, seed>>32)
	analyzer := nutri.NewMockAnalyzer(ref.Foods, chooser, cfg.Analyzer.Delay())
	svc := nutri.NewNutriService(db, v, ref, analyzer, &slogAdapter{l: logger}, nutri.RealClock{}, chooser)

	if err := svc.Load(); err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("loading state: %w", err)
	}

	return &NutriApp{
		cfg:       cfg,
		db:        db,
		vault:     v,
		encryptor: enc,
		service:   svc,
		op:        NewOperation(operation, parameters),
		logFile:   logFile,
	}, nil
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for DB-mutating commands.
func (a *NutriApp) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// mutate persists the operation, runs fn and records its outcome.
func (a *NutriApp) mutate(fn func() error) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	err := fn()
	switch {
	case errors.Is(err, nutri.ErrLogCancelled):
		a.op.Status = StatusCancelled
	case err != nil:
		a.op.Status = StatusError
	}
	return err
}

// Config returns the configuration the app was built from.
func (a *NutriApp) Config() *config.Config {
	return a.cfg
}

// SearchFoods returns reference foods whose name contains query.
func (a *NutriApp) SearchFoods(query string) []nutri.ReferenceFood {
	return a.service.SearchFoods(query)
}

// Analyze runs the mock image analysis for rawMeal and returns the detected
// food as a 100g preview together with its interaction warnings.
func (a *NutriApp) Analyze(ctx context.Context, rawMeal string) (nutri.Detection, nutri.FoodLogEntry, []nutri.Warning, error) {
	meal, err := nutri.ParseMeal(rawMeal)
	if err != nil {
		return nutri.Detection{}, nutri.FoodLogEntry{}, nil, err
	}
	det, entry, err := a.service.Analyze(ctx, meal)
	if err != nil {
		return det, entry, nil, err
	}
	warnings, err := a.service.FoodWarnings(entry)
	if err != nil {
		return det, entry, nil, err
	}
	return det, entry, warnings, nil
}

// LogFood saves a food entry for today. confirm is consulted when the food
// interacts with a current medication.
func (a *NutriApp) LogFood(name string, portion float64, rawMeal string, confirm func([]nutri.Warning) bool) (nutri.FoodLogEntry, []nutri.Warning, error) {
	meal, err := nutri.ParseMeal(rawMeal)
	if err != nil {
		return nutri.FoodLogEntry{}, nil, err
	}
	var (
		entry    nutri.FoodLogEntry
		warnings []nutri.Warning
	)
	err = a.mutate(func() error {
		var err error
		entry, warnings, err = a.service.LogFood(name, portion, meal, confirm)
		return err
	})
	return entry, warnings, err
}

// Today returns the current day marker.
func (a *NutriApp) Today() (string, error) {
	return a.service.Today()
}

// Entries returns the log entries for date, or every entry when date is empty.
func (a *NutriApp) Entries(date string) ([]nutri.FoodLogEntry, error) {
	return a.service.Entries(date)
}

func (a *NutriApp) Medications() ([]nutri.Medication, error) {
	return a.service.Medications()
}

func (a *NutriApp) AddMedication(name, dose string) (nutri.Medication, error) {
	var med nutri.Medication
	err := a.mutate(func() error {
		var err error
		med, err = a.service.AddMedication(name, dose)
		return err
	})
	return med, err
}

// RemoveMedication removes the medication whose ID is given as a string.
func (a *NutriApp) RemoveMedication(rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid medication id %q: %w", rawID, err)
	}
	return a.mutate(func() error {
		return a.service.RemoveMedication(id)
	})
}

func (a *NutriApp) MedicationConflicts() ([]nutri.Warning, error) {
	return a.service.MedicationConflicts()
}

func (a *NutriApp) Profile() (nutri.Profile, error) {
	return a.service.Profile()
}

// SaveProfile stores p as the active profile, recomputing its TDEE.
func (a *NutriApp) SaveProfile(p nutri.Profile) (nutri.Profile, error) {
	var saved nutri.Profile
	err := a.mutate(func() error {
		var err error
		saved, err = a.service.SaveProfile(p)
		return err
	})
	return saved, err
}

// LoadDemoProfile switches to the demo profile at index.
func (a *NutriApp) LoadDemoProfile(index int) (nutri.Profile, error) {
	var p nutri.Profile
	err := a.mutate(func() error {
		var err error
		p, err = a.service.LoadDemoProfile(index)
		return err
	})
	return p, err
}

func (a *NutriApp) DemoProfiles() []nutri.Profile {
	return a.service.DemoProfiles()
}

func (a *NutriApp) Dashboard() (nutri.Dashboard, error) {
	return a.service.Dashboard()
}

func (a *NutriApp) Report(date string) (nutri.Report, error) {
	return a.service.Report(date)
}

// ExportReport stores the report for date in the vault and returns its checksum.
func (a *NutriApp) ExportReport(date string) (string, nutri.Report, error) {
	return a.service.ExportReport(date)
}

// FetchReport reads an exported report back from the vault.
func (a *NutriApp) FetchReport(checksum string) (nutri.Report, error) {
	return a.service.FetchReport(checksum)
}

func (a *NutriApp) Advice(refresh bool) ([]nutri.Advice, error) {
	return a.service.Advice(refresh)
}

func (a *NutriApp) Trend(days int) (nutri.Trend, error) {
	return a.service.Trend(days)
}

// GetHistory returns the most recent mutating operations.
func (a *NutriApp) GetHistory(limit int) ([]*nutri.Operation, error) {
	return a.service.GetHistory(limit)
}

// Reset discards all state and reseeds demo data. The operation journal is kept.
func (a *NutriApp) Reset() error {
	return a.mutate(a.service.Reset)
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record, backs up the DB, and uploads to vault.
// For non-persisted operations: just closes the database.
func (a *NutriApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		// Finalize the operation record
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}

		// Snapshot the DB to a temp file
		tmpFile, err := os.CreateTemp("", "nutri-db-backup-*.db")
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("creating temp file for db backup: %w", err)
			}
		}

		var tmpPath string
		if tmpFile != nil {
			tmpPath = tmpFile.Name()
			tmpFile.Close()

			if err := a.db.BackupTo(tmpPath); err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("backing up database: %w", err)
				}
				tmpPath = "" // skip vault upload
			}
		}

		if err := a.db.Close(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("closing database: %w", err)
			}
		}

		// Upload DB snapshot to vault with version = operation ID
		if tmpPath != "" {
			if err := a.uploadMetadata(tmpPath, a.op.ID); err != nil {
				if firstErr == nil {
					firstErr = err
				}
			}
			os.Remove(tmpPath)
		}
	} else {
		// Non-mutating operation: just close the database, no upload
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// uploadMetadata encrypts the DB snapshot at path and uploads it to the vault.
func (a *NutriApp) uploadMetadata(path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening db backup for upload: %w", err)
	}
	defer f.Close()

	var sealed bytes.Buffer
	if err := a.encryptor.Encrypt(f, &sealed); err != nil {
		return fmt.Errorf("encrypting db backup: %w", err)
	}

	if err := a.vault.PutMetadata(a.cfg.HostID, dbMetadataName, &sealed, int64(sealed.Len()), version); err != nil {
		return fmt.Errorf("uploading metadata to vault: %w", err)
	}

	return nil
}
