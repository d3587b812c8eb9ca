package nutri

import (
	"database/sql"
	"errors"
	"time"
)

// ErrCorruptState is returned by a Store when persisted state exists but
// cannot be decoded. The service treats it the same as absent state.
var ErrCorruptState = errors.New("persisted state is corrupt")

// Operation is a journal record of a state-mutating CLI command.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
	StartedAt  time.Time
	FinishedAt sql.NullTime
}

// Store persists the full application state as one snapshot.
// All methods should be implemented with appropriate transaction handling.
type Store interface {
	// State operations

	// LoadState returns the last written state, or nil with no error when
	// nothing has been written yet. Undecodable state yields ErrCorruptState.
	LoadState() (*State, error)

	// SaveState replaces the persisted state with s.
	SaveState(s *State) error

	// ResetState deletes all persisted state.
	ResetState() error

	// Operation journal

	// CreateOperation records the start of a mutating command.
	CreateOperation(operation string, parameters string) (*Operation, error)

	// FinishOperation marks an operation finished with the given status.
	FinishOperation(id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*Operation, error)

	// MaxOperationID returns the highest operation ID, or 0 if none exist.
	MaxOperationID() (int64, error)

	// Close closes the database connection.
	Close() error
}
