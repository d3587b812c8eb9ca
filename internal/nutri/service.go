package nutri

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEmptyMedicationName is returned when adding a medication without a name.
	ErrEmptyMedicationName = errors.New("medication name is required")
	// ErrMedicationNotFound is returned when removing an unknown medication ID.
	ErrMedicationNotFound = errors.New("medication not found")
	// ErrUnknownDemoProfile is returned for a demo profile index out of range.
	ErrUnknownDemoProfile = errors.New("unknown demo profile")
	// ErrLogCancelled is returned when the caller declines to log a food
	// after seeing its interaction warnings.
	ErrLogCancelled = errors.New("food log cancelled")
)

// RecentLimit is the number of entries shown on the dashboard.
const RecentLimit = 5

// Reference bundles the immutable tables the service evaluates against.
type Reference struct {
	Foods    *FoodCatalog
	Drugs    *DrugCatalog
	Profiles []Profile
	Tips     []string
}

// NutriService is the orchestration layer between the CLI, the persisted
// state and the rules engine. Every mutation writes the full state back
// through the Store.
type NutriService struct {
	store    Store
	vault    Vault
	ref      Reference
	analyzer Analyzer
	logger   Logger
	clock    Clock
	chooser  Chooser
	state    *State
}

// NewNutriService creates a new NutriService with the provided dependencies.
// The state is read lazily on first use, or explicitly via Load.
func NewNutriService(store Store, vault Vault, ref Reference, analyzer Analyzer, logger Logger, clock Clock, chooser Chooser) *NutriService {
	return &NutriService{
		store:    store,
		vault:    vault,
		ref:      ref,
		analyzer: analyzer,
		logger:   logger,
		clock:    clock,
		chooser:  chooser,
	}
}

// Load reads the persisted state. Absent or corrupt state is replaced by
// freshly seeded demo data, which is written back immediately.
func (s *NutriService) Load() error {
	st, err := s.store.LoadState()
	if errors.Is(err, ErrCorruptState) {
		s.logger.Warn("persisted state unreadable, reseeding", "error", err)
		st, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	if st == nil {
		if err := s.seed(); err != nil {
			return err
		}
		return nil
	}

	if d := today(s.clock); st.Today != d {
		s.logger.Debug("rolling today marker", "from", st.Today, "to", d)
		st.Today = d
	}
	s.state = st
	return nil
}

func (s *NutriService) seed() error {
	if len(s.ref.Profiles) == 0 {
		return fmt.Errorf("seeding: %w", ErrUnknownDemoProfile)
	}
	st, err := SeedState(s.clock.Now(), s.chooser, s.ref.Foods, s.ref.Profiles[0])
	if err != nil {
		return err
	}
	s.state = st
	if err := s.save(); err != nil {
		return err
	}
	s.logger.Info("demo data seeded", "entries", len(st.Logs), "profile", st.Profile.Name)
	return nil
}

func (s *NutriService) ensureLoaded() error {
	if s.state != nil {
		return nil
	}
	return s.Load()
}

func (s *NutriService) save() error {
	if err := s.store.SaveState(s.state); err != nil {
		s.logger.Error("saving state failed", "error", err)
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// nextID returns an ID greater than every existing log and medication ID,
// based on the current time in milliseconds.
func (s *NutriService) nextID() int64 {
	id := s.clock.Now().UnixMilli()
	for _, e := range s.state.Logs {
		id = max(id, e.ID+1)
	}
	for _, m := range s.state.Medications {
		id = max(id, m.ID+1)
	}
	return id
}

// State returns a copy of the current state.
func (s *NutriService) State() (*State, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.state.Clone(), nil
}

// Today returns the current day marker.
func (s *NutriService) Today() (string, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}
	return s.state.Today, nil
}

// --- Food log ---

// SearchFoods returns reference foods whose name contains query.
func (s *NutriService) SearchFoods(query string) []ReferenceFood {
	return s.ref.Foods.Search(query)
}

// PreviewFood returns the entry that LogFood would save, without saving it.
// known is false when name is not in the food table and the zero-nutrient
// fallback was used.
func (s *NutriService) PreviewFood(name string, portion float64, meal MealType) (entry FoodLogEntry, known bool, err error) {
	if err := s.ensureLoaded(); err != nil {
		return FoodLogEntry{}, false, err
	}
	ref, known := s.ref.Foods.Resolve(name)
	if !known {
		ref.Name = name
	}
	entry, err = NewEntry(s.nextID(), s.state.Today, s.clock.Now().Format("15:04"), meal, ref, portion)
	if err != nil {
		return FoodLogEntry{}, known, err
	}
	return entry, known, nil
}

// LogFood saves a food entry for today. If the entry interacts with a
// current medication, confirm is called with the warnings; returning false
// aborts with ErrLogCancelled. A nil confirm accepts.
func (s *NutriService) LogFood(name string, portion float64, meal MealType, confirm func([]Warning) bool) (FoodLogEntry, []Warning, error) {
	entry, known, err := s.PreviewFood(name, portion, meal)
	if err != nil {
		return FoodLogEntry{}, nil, err
	}
	if !known {
		s.logger.Warn("unknown food, using zero-nutrient fallback", "name", name)
	}

	warnings := CheckFoodInteractions(entry, s.state.Medications, s.ref.Drugs)
	if len(warnings) > 0 && confirm != nil && !confirm(warnings) {
		return entry, warnings, ErrLogCancelled
	}

	s.state.Logs = append(s.state.Logs, entry)
	if err := s.save(); err != nil {
		s.state.Logs = s.state.Logs[:len(s.state.Logs)-1]
		return FoodLogEntry{}, warnings, err
	}
	s.logger.Info("food logged", "name", entry.Name, "portion", entry.Portion, "kcal", entry.Nutrients.Calories)
	return entry, warnings, nil
}

// Entries returns the entries for date, or every entry when date is empty.
func (s *NutriService) Entries(date string) ([]FoodLogEntry, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	if date == "" {
		return s.state.Clone().Logs, nil
	}
	return Aggregate(s.state.Clone().Logs, date).Entries, nil
}

// Analyze runs the analyzer and previews a 100g portion of the detected food.
func (s *NutriService) Analyze(ctx context.Context, meal MealType) (Detection, FoodLogEntry, error) {
	det, err := s.analyzer.Analyze(ctx)
	if err != nil {
		return Detection{}, FoodLogEntry{}, fmt.Errorf("analyzing image: %w", err)
	}
	s.logger.Debug("food detected", "name", det.Name, "confidence", det.Confidence)

	entry, _, err := s.PreviewFood(det.Name, BaselinePortion, meal)
	if err != nil {
		return det, FoodLogEntry{}, err
	}
	return det, entry, nil
}

// FoodWarnings checks a prospective entry against the current medications.
func (s *NutriService) FoodWarnings(entry FoodLogEntry) ([]Warning, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return CheckFoodInteractions(entry, s.state.Medications, s.ref.Drugs), nil
}

// --- Medications ---

// Medications returns the current medication list.
func (s *NutriService) Medications() ([]Medication, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return slices.Clone(s.state.Medications), nil
}

// AddMedication appends a medication to the list.
func (s *NutriService) AddMedication(name, dose string) (Medication, error) {
	if err := s.ensureLoaded(); err != nil {
		return Medication{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Medication{}, ErrEmptyMedicationName
	}

	med := Medication{ID: s.nextID(), Name: name, Dose: dose}
	s.state.Medications = append(s.state.Medications, med)
	if err := s.save(); err != nil {
		s.state.Medications = s.state.Medications[:len(s.state.Medications)-1]
		return Medication{}, err
	}
	s.logger.Info("medication added", "name", name)
	return med, nil
}

// RemoveMedication deletes the medication with the given ID.
func (s *NutriService) RemoveMedication(id int64) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	idx := slices.IndexFunc(s.state.Medications, func(m Medication) bool { return m.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrMedicationNotFound, id)
	}

	prev := s.state.Medications
	s.state.Medications = slices.Delete(slices.Clone(prev), idx, idx+1)
	if err := s.save(); err != nil {
		s.state.Medications = prev
		return err
	}
	s.logger.Info("medication removed", "id", id)
	return nil
}

// MedicationConflicts checks the current medication list against itself.
func (s *NutriService) MedicationConflicts() ([]Warning, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return CheckMedicationInteractions(s.state.Medications, s.ref.Drugs), nil
}

// --- Profile ---

// Profile returns the active profile.
func (s *NutriService) Profile() (Profile, error) {
	if err := s.ensureLoaded(); err != nil {
		return Profile{}, err
	}
	return s.state.Profile.Clone(), nil
}

// SaveProfile replaces the active profile's fields, recomputing TDEE.
// An empty ID keeps the current profile's ID.
func (s *NutriService) SaveProfile(p Profile) (Profile, error) {
	if err := s.ensureLoaded(); err != nil {
		return Profile{}, err
	}
	if p.ID == "" {
		p.ID = s.state.Profile.ID
	}
	return s.replaceProfile(p.Derive())
}

// LoadDemoProfile replaces the active profile with demo profile index, as-is.
func (s *NutriService) LoadDemoProfile(index int) (Profile, error) {
	if err := s.ensureLoaded(); err != nil {
		return Profile{}, err
	}
	if index < 0 || index >= len(s.ref.Profiles) {
		return Profile{}, fmt.Errorf("%w: %d", ErrUnknownDemoProfile, index)
	}
	return s.replaceProfile(s.ref.Profiles[index].Clone())
}

// DemoProfiles returns the available demo profiles.
func (s *NutriService) DemoProfiles() []Profile {
	out := make([]Profile, len(s.ref.Profiles))
	for i, p := range s.ref.Profiles {
		out[i] = p.Clone()
	}
	return out
}

func (s *NutriService) replaceProfile(p Profile) (Profile, error) {
	prev := s.state.Profile
	s.state.Profile = p
	if err := s.save(); err != nil {
		s.state.Profile = prev
		return Profile{}, err
	}
	s.logger.Info("profile saved", "name", p.Name, "tdee", p.TDEE)
	return p.Clone(), nil
}

// --- Views ---

// DailyTotals aggregates the entries of date; empty date means today.
func (s *NutriService) DailyTotals(date string) (DailyTotals, error) {
	if err := s.ensureLoaded(); err != nil {
		return DailyTotals{}, err
	}
	if date == "" {
		date = s.state.Today
	}
	return Aggregate(s.state.Logs, date), nil
}

// Dashboard returns today's totals, recent entries and risks.
func (s *NutriService) Dashboard() (Dashboard, error) {
	day, err := s.DailyTotals("")
	if err != nil {
		return Dashboard{}, err
	}
	conflicts := CheckMedicationInteractions(s.state.Medications, s.ref.Drugs)
	return Dashboard{
		Day:        day,
		TargetKcal: s.state.Profile.TDEE,
		Recent:     RecentEntries(s.state.Logs, RecentLimit),
		Risks:      AssessDay(day, s.state.Profile, conflicts),
	}, nil
}

// Report builds the daily report for date; empty date means today.
func (s *NutriService) Report(date string) (Report, error) {
	day, err := s.DailyTotals(date)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(day, s.state.Profile), nil
}

// Advice selects today's advice fragments.
func (s *NutriService) Advice(forceRefresh bool) ([]Advice, error) {
	day, err := s.DailyTotals("")
	if err != nil {
		return nil, err
	}
	return SelectAdvice(day, s.state.Profile, AdviceOptions{
		ForceRefresh: forceRefresh,
		Tips:         s.ref.Tips,
		Chooser:      s.chooser,
	}), nil
}

// Trend summarises calories over the last days days.
func (s *NutriService) Trend(days int) (Trend, error) {
	if err := s.ensureLoaded(); err != nil {
		return Trend{}, err
	}
	return BuildTrend(s.state.Logs, s.clock.Now(), days, s.state.Profile.TDEE), nil
}

// Reset discards all persisted state and reseeds the demo data.
func (s *NutriService) Reset() error {
	if err := s.store.ResetState(); err != nil {
		return fmt.Errorf("resetting state: %w", err)
	}
	s.state = nil
	s.logger.Info("state reset")
	return s.seed()
}
