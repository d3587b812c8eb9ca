package nutri

import (
	"math"
	"time"
)

// DefaultTrendDays is the trend window used by the CLI.
const DefaultTrendDays = 7

// TrendPoint is the calorie total of one day.
type TrendPoint struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
}

// Trend summarises calorie totals over a window of days.
type Trend struct {
	Points   []TrendPoint `json:"points"`
	Target   int          `json:"target"`
	OverDays int          `json:"over_days"`
	Average  float64      `json:"average"`
	Min      float64      `json:"min"`
	Max      float64      `json:"max"`
}

// BuildTrend computes calorie totals for the days-long window ending on
// end's UTC date, oldest first. days below 1 is treated as 1.
func BuildTrend(entries []FoodLogEntry, end time.Time, days int, tdee int) Trend {
	if days < 1 {
		days = 1
	}
	end = end.UTC()
	tr := Trend{Target: tdee, Points: make([]TrendPoint, 0, days)}

	var sum float64
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format(DateLayout)
		kcal := Aggregate(entries, date).Totals.Calories
		tr.Points = append(tr.Points, TrendPoint{Date: date, Calories: kcal})

		sum += kcal
		if kcal > float64(tdee) {
			tr.OverDays++
		}
		if len(tr.Points) == 1 || kcal < tr.Min {
			tr.Min = kcal
		}
		if len(tr.Points) == 1 || kcal > tr.Max {
			tr.Max = kcal
		}
	}
	tr.Average = math.Round(sum / float64(days))
	return tr
}
