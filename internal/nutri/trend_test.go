package nutri_test

import (
	"slices"
	"testing"
	"time"

	"nutri-go/internal/nutri"
)

func TestBuildTrend(t *testing.T) {
	entries := []nutri.FoodLogEntry{
		{Date: "2024-01-13", Nutrients: nutri.Nutrients{Calories: 1000}},
		{Date: "2024-01-13", Nutrients: nutri.Nutrients{Calories: 1500}},
		{Date: "2024-01-15", Nutrients: nutri.Nutrients{Calories: 1200}},
		{Date: "2024-01-01", Nutrients: nutri.Nutrients{Calories: 9999}},
	}
	end := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)

	tr := nutri.BuildTrend(entries, end, 3, 2000)

	var dates []string
	var kcal []float64
	for _, p := range tr.Points {
		dates = append(dates, p.Date)
		kcal = append(kcal, p.Calories)
	}
	if want := []string{"2024-01-13", "2024-01-14", "2024-01-15"}; !slices.Equal(dates, want) {
		t.Errorf("dates = %v, want %v", dates, want)
	}
	if want := []float64{2500, 0, 1200}; !slices.Equal(kcal, want) {
		t.Errorf("calories = %v, want %v", kcal, want)
	}
	if tr.Target != 2000 || tr.OverDays != 1 {
		t.Errorf("Target = %d, OverDays = %d", tr.Target, tr.OverDays)
	}
	if tr.Min != 0 || tr.Max != 2500 || tr.Average != 1233 {
		t.Errorf("Min/Max/Average = %v/%v/%v, want 0/2500/1233", tr.Min, tr.Max, tr.Average)
	}
}

func TestBuildTrend_WindowFloor(t *testing.T) {
	end := time.Date(2024, 1, 15, 8, 0, 0, 0, time.FixedZone("UTC+9", 9*3600))

	tr := nutri.BuildTrend(nil, end, 0, 2000)
	if len(tr.Points) != 1 {
		t.Fatalf("len(Points) = %d, want 1", len(tr.Points))
	}
	// 08:00 at UTC+9 is still the 14th in UTC.
	if tr.Points[0].Date != "2024-01-14" {
		t.Errorf("Date = %q, want 2024-01-14", tr.Points[0].Date)
	}
}
