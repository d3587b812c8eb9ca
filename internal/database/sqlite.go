package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutri-go/internal/database/migrations"
	"nutri-go/internal/nutri"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const metaToday = "today"

// SQLiteDatabase implements nutri.Store using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the database at path and applies pending
// migrations. path can be a file path or ":memory:".
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// State operations

func (s *SQLiteDatabase) LoadState() (*nutri.State, error) {
	profile, err := s.loadProfile()
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	st := &nutri.State{Profile: *profile}

	if err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", metaToday).Scan(&st.Today); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: missing today marker", nutri.ErrCorruptState)
		}
		return nil, fmt.Errorf("loading today marker: %w", err)
	}

	if st.Logs, err = s.loadLogs(); err != nil {
		return nil, err
	}
	if st.Medications, err = s.loadMedications(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteDatabase) loadProfile() (*nutri.Profile, error) {
	var (
		p                      nutri.Profile
		diseases, restrictions string
	)
	err := s.db.QueryRow(`SELECT profile_id, name, age, height_cm, weight_kg, diseases, dietary_restrictions, tdee
		FROM profile WHERE id = 1`).Scan(&p.ID, &p.Name, &p.Age, &p.HeightCM, &p.WeightKG, &diseases, &restrictions, &p.TDEE)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if err := decodeList(diseases, &p.Diseases); err != nil {
		return nil, fmt.Errorf("%w: profile diseases: %v", nutri.ErrCorruptState, err)
	}
	if err := decodeList(restrictions, &p.DietaryRestrictions); err != nil {
		return nil, fmt.Errorf("%w: profile restrictions: %v", nutri.ErrCorruptState, err)
	}
	return &p, nil
}

func (s *SQLiteDatabase) loadLogs() ([]nutri.FoodLogEntry, error) {
	rows, err := s.db.Query(`SELECT id, date, time, meal, name, portion, calories, protein, carbs, fat, sodium, ingredients
		FROM food_logs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading food logs: %w", err)
	}
	defer rows.Close()

	logs := []nutri.FoodLogEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating food logs: %w", err)
	}
	return logs, nil
}

func scanEntry(rows *sql.Rows) (nutri.FoodLogEntry, error) {
	var (
		e           nutri.FoodLogEntry
		meal        string
		ingredients string
	)
	n := &e.Nutrients
	if err := rows.Scan(&e.ID, &e.Date, &e.Time, &meal, &e.Name, &e.Portion,
		&n.Calories, &n.Protein, &n.Carbs, &n.Fat, &n.Sodium, &ingredients); err != nil {
		return e, fmt.Errorf("scanning food log: %w", err)
	}
	m, err := nutri.ParseMeal(meal)
	if err != nil {
		return e, fmt.Errorf("%w: food log %d: %v", nutri.ErrCorruptState, e.ID, err)
	}
	e.Meal = m
	if err := decodeList(ingredients, &e.Ingredients); err != nil {
		return e, fmt.Errorf("%w: food log %d ingredients: %v", nutri.ErrCorruptState, e.ID, err)
	}
	return e, nil
}

func (s *SQLiteDatabase) loadMedications() ([]nutri.Medication, error) {
	rows, err := s.db.Query("SELECT id, name, dose FROM medications ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("loading medications: %w", err)
	}
	defer rows.Close()

	meds := []nutri.Medication{}
	for rows.Next() {
		var m nutri.Medication
		if err := rows.Scan(&m.ID, &m.Name, &m.Dose); err != nil {
			return nil, fmt.Errorf("scanning medication: %w", err)
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating medications: %w", err)
	}
	return meds, nil
}

// SaveState replaces the persisted state with st in a single transaction.
func (s *SQLiteDatabase) SaveState(st *nutri.State) error {
	if st == nil {
		return errors.New("saving state: nil state")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearState(tx); err != nil {
		return err
	}

	p := st.Profile
	diseases, err := encodeList(p.Diseases)
	if err != nil {
		return err
	}
	restrictions, err := encodeList(p.DietaryRestrictions)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO profile (id, profile_id, name, age, height_cm, weight_kg, diseases, dietary_restrictions, tdee)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Age, p.HeightCM, p.WeightKG, diseases, restrictions, p.TDEE); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	logStmt, err := tx.Prepare(`INSERT INTO food_logs (id, date, time, meal, name, portion, calories, protein, carbs, fat, sodium, ingredients, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing food log insert: %w", err)
	}
	defer logStmt.Close()

	for i, e := range st.Logs {
		ingredients, err := encodeList(e.Ingredients)
		if err != nil {
			return err
		}
		n := e.Nutrients
		if _, err := logStmt.Exec(e.ID, e.Date, e.Time, string(e.Meal), e.Name, e.Portion,
			n.Calories, n.Protein, n.Carbs, n.Fat, n.Sodium, ingredients, i); err != nil {
			return fmt.Errorf("saving food log %d: %w", e.ID, err)
		}
	}

	for i, m := range st.Medications {
		if _, err := tx.Exec("INSERT INTO medications (id, name, dose, position) VALUES (?, ?, ?, ?)",
			m.ID, m.Name, m.Dose, i); err != nil {
			return fmt.Errorf("saving medication %d: %w", m.ID, err)
		}
	}

	if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", metaToday, st.Today); err != nil {
		return fmt.Errorf("saving today marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}

// ResetState deletes the persisted state. The operation journal is kept.
func (s *SQLiteDatabase) ResetState() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearState(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	return nil
}

func clearState(tx *sql.Tx) error {
	for _, table := range []string{"food_logs", "medications", "profile", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func decodeList(s string, out *[]string) error {
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return err
	}
	if items == nil {
		items = []string{}
	}
	*out = items
	return nil
}

// Operation journal

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*nutri.Operation, error) {
	op := &nutri.Operation{
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  time.Now().UTC(),
	}
	res, err := s.db.Exec("INSERT INTO operations (started_at, operation, parameters) VALUES (?, ?, ?)",
		op.StartedAt, op.Operation, op.Parameters)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	if op.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading operation ID: %w", err)
	}
	return op, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	res, err := s.db.Exec("UPDATE operations SET finished_at = ?, status = ? WHERE id = ?",
		time.Now().UTC(), status, id)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing operation: no operation with id %d", id)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*nutri.Operation, error) {
	rows, err := s.db.Query(`SELECT id, started_at, finished_at, operation, parameters, status
		FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*nutri.Operation
	for rows.Next() {
		op := &nutri.Operation{}
		if err := rows.Scan(&op.ID, &op.StartedAt, &op.FinishedAt, &op.Operation, &op.Parameters, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}
	return ops, nil
}

func (s *SQLiteDatabase) MaxOperationID() (int64, error) {
	var id int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM operations").Scan(&id); err != nil {
		return 0, fmt.Errorf("getting max operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ nutri.Store = (*SQLiteDatabase)(nil)
