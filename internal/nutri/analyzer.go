package nutri

import (
	"context"
	"errors"
	"time"
)

// Confidence bounds reported by MockAnalyzer, inclusive.
const (
	MinConfidence = 85
	MaxConfidence = 99
)

// ErrNothingDetectable is returned when the catalog has no detectable foods.
var ErrNothingDetectable = errors.New("no detectable foods in catalog")

// Detection is the result of a food image analysis.
type Detection struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
}

// Analyzer identifies a food from an image.
type Analyzer interface {
	Analyze(ctx context.Context) (Detection, error)
}

// MockAnalyzer stands in for a vision model: after Delay it reports a random
// detectable food from the catalog. The delay only paces the CLI output.
type MockAnalyzer struct {
	foods   *FoodCatalog
	chooser Chooser
	delay   time.Duration
}

// NewMockAnalyzer creates a MockAnalyzer drawing from foods.
func NewMockAnalyzer(foods *FoodCatalog, chooser Chooser, delay time.Duration) *MockAnalyzer {
	return &MockAnalyzer{foods: foods, chooser: chooser, delay: delay}
}

// Analyze waits for the configured delay, or until ctx is done, and returns a detection.
func (a *MockAnalyzer) Analyze(ctx context.Context) (Detection, error) {
	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Detection{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Detection{}, err
	}

	names := a.foods.Detectable()
	if len(names) == 0 {
		return Detection{}, ErrNothingDetectable
	}
	return Detection{
		Name:       names[a.chooser.IntN(len(names))],
		Confidence: MinConfidence + a.chooser.IntN(MaxConfidence-MinConfidence+1),
	}, nil
}
