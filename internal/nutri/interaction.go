package nutri

import "fmt"

// WarningKind distinguishes food-drug from drug-drug findings.
type WarningKind string

const (
	FoodDrugWarning WarningKind = "food_drug"
	DrugDrugWarning WarningKind = "drug_drug"
)

// Warning is a structured interaction finding.
// For FoodDrugWarning, Subject is the ingredient; for DrugDrugWarning it is
// the second medication.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	Risk       RiskLevel   `json:"risk"`
	Medication string      `json:"medication"`
	Subject    string      `json:"subject"`
	Message    string      `json:"message"`
}

// CheckFoodInteractions returns one warning per (medication, ingredient) pair
// the medication's food-tag rules mark as high risk. Results follow
// medication order, then ingredient order. Medications without a rule and
// ingredients without a tag are treated as safe.
func CheckFoodInteractions(entry FoodLogEntry, meds []Medication, drugs *DrugCatalog) []Warning {
	var warnings []Warning
	for _, med := range meds {
		rule, ok := drugs.Resolve(med.Name)
		if !ok || rule.FoodTags == nil {
			continue
		}
		for _, ing := range entry.Ingredients {
			if rule.FoodTags[ing] != RiskHigh {
				continue
			}
			warnings = append(warnings, Warning{
				Kind:       FoodDrugWarning,
				Risk:       RiskHigh,
				Medication: med.Name,
				Subject:    ing,
				Message:    fmt.Sprintf("medication [%s] has a high-risk interaction with ingredient [%s]", med.Name, ing),
			})
		}
	}
	return warnings
}

// CheckMedicationInteractions returns a conflict warning for each pair i<j
// where medication i's rule marks medication j as high risk.
//
// Only the earlier medication's rule is consulted. A conflict declared solely
// on the later medication's rule is not reported; reference tables that want
// a symmetric conflict must declare both directions.
func CheckMedicationInteractions(meds []Medication, drugs *DrugCatalog) []Warning {
	var warnings []Warning
	for i := 0; i < len(meds); i++ {
		rule, ok := drugs.Resolve(meds[i].Name)
		if !ok || rule.Drugs == nil {
			continue
		}
		for j := i + 1; j < len(meds); j++ {
			if rule.Drugs[meds[j].Name] != RiskHigh {
				continue
			}
			warnings = append(warnings, Warning{
				Kind:       DrugDrugWarning,
				Risk:       RiskHigh,
				Medication: meds[i].Name,
				Subject:    meds[j].Name,
				Message:    fmt.Sprintf("drug conflict: %s and %s", meds[i].Name, meds[j].Name),
			})
		}
	}
	return warnings
}
