package nutri

// DailyTotals is the nutrient sum of one day's entries.
type DailyTotals struct {
	Date    string         `json:"date"`
	Totals  Nutrients      `json:"totals"`
	Entries []FoodLogEntry `json:"entries"`
}

// Aggregate sums the nutrient snapshots of every entry whose Date equals
// date exactly. Matched entries are returned in input order.
func Aggregate(entries []FoodLogEntry, date string) DailyTotals {
	out := DailyTotals{Date: date, Entries: []FoodLogEntry{}}
	for _, e := range entries {
		if e.Date != date {
			continue
		}
		out.Totals = out.Totals.Add(e.Nutrients)
		out.Entries = append(out.Entries, e)
	}
	return out
}
