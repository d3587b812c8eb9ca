package nutri

import (
	"fmt"
	"time"
)

// Demo seeding parameters.
const (
	SeedDays      = 7
	SeedFoodCount = 10
	SeedSkipAbove = 0.8
)

var seedMeals = []MealType{Breakfast, Lunch, Dinner}

// SeedState builds demo state: up to three meals on each of the last
// SeedDays days (today included), drawn from the first SeedFoodCount foods,
// with each meal slot skipped when the chooser rolls above SeedSkipAbove.
func SeedState(now time.Time, chooser Chooser, foods *FoodCatalog, profile Profile) (*State, error) {
	names := foods.Names()
	if len(names) > SeedFoodCount {
		names = names[:SeedFoodCount]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("seeding: %w", ErrNothingDetectable)
	}

	now = now.UTC()
	st := &State{
		Profile: profile.Clone(),
		Logs:    []FoodLogEntry{},
		Medications: []Medication{
			{ID: 1, Name: "Warfarin", Dose: "5mg, once daily"},
			{ID: 2, Name: "Vitamin C", Dose: "500mg, once daily"},
		},
		Today: now.Format(DateLayout),
	}

	base := now.UnixMilli()
	for i := SeedDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(DateLayout)
		for j, meal := range seedMeals {
			if chooser.Float64() > SeedSkipAbove {
				continue
			}
			ref, _ := foods.Resolve(names[chooser.IntN(len(names))])
			id := base - int64(i)*int64(24*time.Hour/time.Millisecond) - int64(j)*int64(time.Hour/time.Millisecond)
			entry, err := NewEntry(id, date, fmt.Sprintf("%d:00", 12+j*4), meal, ref, BaselinePortion)
			if err != nil {
				return nil, fmt.Errorf("seeding entry: %w", err)
			}
			st.Logs = append(st.Logs, entry)
		}
	}
	return st, nil
}
