package nutri

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DateLayout is the calendar-day format used for FoodLogEntry.Date and State.Today.
const DateLayout = "2006-01-02"

// MealType is the meal category of a food log entry.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// ErrInvalidMeal is returned for meal categories other than breakfast, lunch or dinner.
var ErrInvalidMeal = errors.New("invalid meal type")

// ParseMeal converts user input into a MealType.
func ParseMeal(s string) (MealType, error) {
	switch m := MealType(strings.ToLower(strings.TrimSpace(s))); m {
	case Breakfast, Lunch, Dinner:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMeal, s)
	}
}

// Nutrients holds the five tracked nutrient fields.
// Calories in kcal, protein/carbs/fat in grams, sodium in milligrams.
type Nutrients struct {
	Calories float64 `json:"calories" toml:"calories"`
	Protein  float64 `json:"protein" toml:"protein"`
	Carbs    float64 `json:"carbs" toml:"carbs"`
	Fat      float64 `json:"fat" toml:"fat"`
	Sodium   float64 `json:"sodium" toml:"sodium"`
}

// Add returns the field-wise sum of n and o.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Sodium:   n.Sodium + o.Sodium,
	}
}

// IsZero reports whether every field is zero.
func (n Nutrients) IsZero() bool {
	return n == Nutrients{}
}

// FoodLogEntry is one saved food record. Nutrients is a snapshot taken at
// save time and is never recomputed from the reference table.
type FoodLogEntry struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Meal        MealType  `json:"meal"`
	Name        string    `json:"name"`
	Portion     float64   `json:"portion"`
	Nutrients   Nutrients `json:"nutrients"`
	Ingredients []string  `json:"ingredients"`
}

// Medication is a drug the user is currently taking.
type Medication struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Dose string `json:"dose"`
}

// Profile is the single active user profile.
type Profile struct {
	ID                  string   `json:"id" toml:"id"`
	Name                string   `json:"name" toml:"name"`
	Age                 int      `json:"age" toml:"age"`
	HeightCM            float64  `json:"height_cm" toml:"height_cm"`
	WeightKG            float64  `json:"weight_kg" toml:"weight_kg"`
	Diseases            []string `json:"diseases" toml:"diseases"`
	DietaryRestrictions []string `json:"dietary_restrictions" toml:"dietary_restrictions"`
	TDEE                int      `json:"tdee" toml:"tdee"`
}

// HasDisease reports whether the profile carries the given condition tag.
func (p Profile) HasDisease(tag string) bool {
	return slices.Contains(p.Diseases, tag)
}

// Clone returns a deep copy so callers can hand out profiles without sharing slices.
func (p Profile) Clone() Profile {
	p.Diseases = slices.Clone(p.Diseases)
	p.DietaryRestrictions = slices.Clone(p.DietaryRestrictions)
	return p
}

// ReferenceFood is a static food table record with per-100g nutrients.
type ReferenceFood struct {
	Name        string    `toml:"name"`
	Nutrients   Nutrients `toml:"nutrients"`
	Ingredients []string  `toml:"ingredients"`
}

// RiskLevel is the severity attached to an interaction rule.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
)

// DrugRule holds the interaction rules keyed by a single drug name.
// Drugs is consulted only from this drug's side; see CheckMedicationInteractions.
type DrugRule struct {
	Name     string               `toml:"name"`
	FoodTags map[string]RiskLevel `toml:"food_tags"`
	Drugs    map[string]RiskLevel `toml:"drugs"`
}

// State is the full persisted application state.
type State struct {
	Profile     Profile        `json:"profile"`
	Logs        []FoodLogEntry `json:"logs"`
	Medications []Medication   `json:"medications"`
	Today       string         `json:"today"`
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := &State{
		Profile:     s.Profile.Clone(),
		Logs:        make([]FoodLogEntry, len(s.Logs)),
		Medications: slices.Clone(s.Medications),
		Today:       s.Today,
	}
	for i, e := range s.Logs {
		e.Ingredients = slices.Clone(e.Ingredients)
		c.Logs[i] = e
	}
	return c
}
