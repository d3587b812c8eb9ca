package nutri

// Daily reference targets used by the report, other than calories which
// come from the profile's TDEE.
const (
	TargetCarbsG   = 300.0
	TargetProteinG = 100.0
	TargetFatG     = 70.0
	TargetSodiumMg = DailySodiumLimit
)

// ReportRow compares one nutrient total against its target.
type ReportRow struct {
	Nutrient string  `json:"nutrient"`
	Unit     string  `json:"unit"`
	Value    float64 `json:"value"`
	Target   float64 `json:"target"`
	Percent  float64 `json:"percent"` // capped at 100
	Over     bool    `json:"over"`
}

// Report is the daily report, suitable for JSON export.
type Report struct {
	Date    string         `json:"date"`
	Profile string         `json:"profile"`
	Totals  Nutrients      `json:"totals"`
	Rows    []ReportRow    `json:"rows"`
	Entries []FoodLogEntry `json:"entries"`
}

// BuildReport builds the daily report rows in display order: calories,
// carbs, protein, fat, sodium.
func BuildReport(day DailyTotals, profile Profile) Report {
	t := day.Totals
	return Report{
		Date:    day.Date,
		Profile: profile.Name,
		Totals:  t,
		Rows: []ReportRow{
			reportRow("calories", "kcal", t.Calories, float64(profile.TDEE)),
			reportRow("carbs", "g", t.Carbs, TargetCarbsG),
			reportRow("protein", "g", t.Protein, TargetProteinG),
			reportRow("fat", "g", t.Fat, TargetFatG),
			reportRow("sodium", "mg", t.Sodium, TargetSodiumMg),
		},
		Entries: day.Entries,
	}
}

func reportRow(name, unit string, value, target float64) ReportRow {
	pct := 100.0
	if target > 0 {
		pct = min(value/target*100, 100)
	}
	return ReportRow{
		Nutrient: name,
		Unit:     unit,
		Value:    value,
		Target:   target,
		Percent:  pct,
		Over:     value > target,
	}
}
