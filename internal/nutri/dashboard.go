package nutri

import (
	"cmp"
	"slices"
)

// Dashboard thresholds.
const (
	DailySodiumLimit    = 2300.0 // mg
	CalorieOverageRatio = 1.1
)

// RiskCode identifies a dashboard risk.
type RiskCode string

const (
	RiskSodium     RiskCode = "sodium_high"
	RiskCalories   RiskCode = "calories_over"
	RiskMedication RiskCode = "medication_conflict"
)

// Risk is one line of the dashboard risk list.
type Risk struct {
	Code    RiskCode `json:"code"`
	Message string   `json:"message"`
}

// AssessDay returns the dashboard risks for a day. An empty result means no
// risk was detected.
func AssessDay(day DailyTotals, profile Profile, medWarnings []Warning) []Risk {
	var risks []Risk
	if day.Totals.Sodium > DailySodiumLimit {
		risks = append(risks, Risk{Code: RiskSodium, Message: "sodium intake is over the daily limit"})
	}
	if day.Totals.Calories > float64(profile.TDEE)*CalorieOverageRatio {
		risks = append(risks, Risk{Code: RiskCalories, Message: "calories are over target"})
	}
	if len(medWarnings) > 0 {
		risks = append(risks, Risk{Code: RiskMedication, Message: "potential medication interaction detected"})
	}
	return risks
}

// RecentEntries returns up to n entries, newest ID first. The input is not modified.
func RecentEntries(entries []FoodLogEntry, n int) []FoodLogEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b FoodLogEntry) int {
		return cmp.Compare(b.ID, a.ID)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Dashboard is the combined overview for one day.
type Dashboard struct {
	Day        DailyTotals    `json:"day"`
	TargetKcal int            `json:"target_kcal"`
	Recent     []FoodLogEntry `json:"recent"`
	Risks      []Risk         `json:"risks"`
}
