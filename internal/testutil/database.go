package testutil

import (
	"errors"
	"testing"

	"nutri-go/internal/database"
	"nutri-go/internal/nutri"
)

// NewTestDatabase creates a new in-memory SQLite database with schema applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// ErrStoreUnavailable is returned by FlakyStore while Fail is set.
var ErrStoreUnavailable = errors.New("store unavailable")

// FlakyStore wraps a Store and fails SaveState while Fail is true.
type FlakyStore struct {
	nutri.Store
	Fail  bool
	Saves int
}

func (s *FlakyStore) SaveState(st *nutri.State) error {
	if s.Fail {
		return ErrStoreUnavailable
	}
	s.Saves++
	return s.Store.SaveState(st)
}
