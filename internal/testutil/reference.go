package testutil

import (
	"testing"

	"nutri-go/internal/nutri"
	"nutri-go/internal/reference"
)

// NewTestReference returns the built-in reference tables.
func NewTestReference() nutri.Reference {
	return reference.Builtin().Reference()
}

// NewTestService builds a NutriService over an in-memory database and vault
// with the built-in tables, a fixed clock and a chooser that keeps every
// seeded meal and always picks the first option.
func NewTestService(t *testing.T) (*nutri.NutriService, *FlakyStore, *StubClock) {
	t.Helper()
	store := &FlakyStore{Store: NewTestDatabase(t)}
	clock := FixedClock()
	ref := NewTestReference()
	chooser := FixedChooser{}
	analyzer := nutri.NewMockAnalyzer(ref.Foods, chooser, 0)
	svc := nutri.NewNutriService(store, NewTestVault(), ref, analyzer, nutri.NewNopLogger(), clock, chooser)
	return svc, store, clock
}
