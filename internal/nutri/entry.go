package nutri

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrInvalidPortion is returned when a portion is not a positive number of grams.
var ErrInvalidPortion = errors.New("portion must be a positive number of grams")

// BaselinePortion is the portion size, in grams, that reference values describe.
const BaselinePortion = 100.0

// Snapshot scales per-100g reference nutrients to portion grams, rounding
// each field to the nearest whole number.
func Snapshot(ref ReferenceFood, portion float64) Nutrients {
	ratio := portion / BaselinePortion
	return Nutrients{
		Calories: math.Round(ref.Nutrients.Calories * ratio),
		Protein:  math.Round(ref.Nutrients.Protein * ratio),
		Carbs:    math.Round(ref.Nutrients.Carbs * ratio),
		Fat:      math.Round(ref.Nutrients.Fat * ratio),
		Sodium:   math.Round(ref.Nutrients.Sodium * ratio),
	}
}

// NewEntry creates a food log entry with a nutrient snapshot and a private
// copy of the reference ingredient list.
func NewEntry(id int64, date, clock string, meal MealType, ref ReferenceFood, portion float64) (FoodLogEntry, error) {
	if _, err := ParseMeal(string(meal)); err != nil {
		return FoodLogEntry{}, err
	}
	if !(portion > 0) || math.IsInf(portion, 0) {
		return FoodLogEntry{}, fmt.Errorf("%w: %v", ErrInvalidPortion, portion)
	}
	return FoodLogEntry{
		ID:          id,
		Date:        date,
		Time:        clock,
		Meal:        meal,
		Name:        ref.Name,
		Portion:     portion,
		Nutrients:   Snapshot(ref, portion),
		Ingredients: slices.Clone(ref.Ingredients),
	}, nil
}
