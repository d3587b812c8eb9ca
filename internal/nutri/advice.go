package nutri

import "fmt"

// AdviceCode identifies which rule produced an advice fragment.
type AdviceCode string

const (
	AdviceWelcome    AdviceCode = "welcome"
	AdviceHighSodium AdviceCode = "high_sodium"
	AdviceLowIntake  AdviceCode = "low_intake"
	AdviceOverTarget AdviceCode = "over_target"
	AdviceBalanced   AdviceCode = "balanced"
	AdviceTip        AdviceCode = "tip"
)

// Rule thresholds.
const (
	HypertensionTag         = "hypertension"
	HypertensionSodiumLimit = 2000.0 // mg
	LowIntakeFraction       = 0.5    // of TDEE
)

// DefaultTips is the built-in tip pool.
var DefaultTips = []string{
	"A 15-minute walk after meals helps keep blood sugar steady.",
	"Swap some refined starch for brown rice or sweet potato.",
	"Vegetables are rich in fibre and help you feel full.",
}

// Advice is one fragment of the advice list.
type Advice struct {
	Code AdviceCode `json:"code"`
	Text string     `json:"text"`
}

// AdviceOptions configures SelectAdvice.
type AdviceOptions struct {
	// ForceRefresh skips the welcome short-circuit on an empty day.
	ForceRefresh bool
	// Tips is the pool for the final fragment. Empty means no tip.
	Tips []string
	// Chooser picks the tip. Nil picks the first tip.
	Chooser Chooser
}

// SelectAdvice evaluates the advice rules in fixed priority order:
//
//  1. zero calories and no forced refresh: the welcome fragment only
//  2. hypertension with sodium above 2000 mg: high-sodium warning
//  3. exactly one of low intake (< 50% TDEE), over target (> TDEE), balanced
//  4. one tip from the pool
func SelectAdvice(day DailyTotals, profile Profile, opts AdviceOptions) []Advice {
	t := day.Totals
	if t.Calories == 0 && !opts.ForceRefresh {
		return []Advice{{
			Code: AdviceWelcome,
			Text: fmt.Sprintf("Welcome back, %s! Nothing is logged for today yet. "+
				"Remember to drink enough water (about 2000 cc). "+
				"Your medication list is synced and interactions are being monitored.", profile.Name),
		}}
	}

	var out []Advice
	if profile.HasDisease(HypertensionTag) && t.Sodium > HypertensionSodiumLimit {
		out = append(out, Advice{
			Code: AdviceHighSodium,
			Text: fmt.Sprintf("Hypertension alert: today's sodium (%.0fmg) is high. Keep dinner light.", t.Sodium),
		})
	}

	tdee := float64(profile.TDEE)
	switch {
	case t.Calories < tdee*LowIntakeFraction:
		out = append(out, Advice{Code: AdviceLowIntake, Text: "Low intake: you are below 50% of your TDEE. Add some quality protein."})
	case t.Calories > tdee:
		out = append(out, Advice{Code: AdviceOverTarget, Text: "Over target: move a little more or reduce your next portion."})
	default:
		out = append(out, Advice{Code: AdviceBalanced, Text: "Balanced intake: keep it up!"})
	}

	if len(opts.Tips) > 0 {
		i := 0
		if opts.Chooser != nil {
			i = opts.Chooser.IntN(len(opts.Tips))
		}
		out = append(out, Advice{Code: AdviceTip, Text: opts.Tips[i]})
	}
	return out
}
