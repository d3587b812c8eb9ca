package nutri

import "math"

// Fallbacks applied by Profile.Derive when a field is missing or non-positive.
const (
	DefaultAge      = 25
	DefaultHeightCM = 170
	DefaultWeightKG = 65
)

// BMI returns weight / height² (height converted to metres), rounded to one
// decimal place. Returns 0 for a non-positive height.
func BMI(weightKG, heightCM float64) float64 {
	if heightCM <= 0 {
		return 0
	}
	h := heightCM / 100.0
	return math.Round(weightKG/(h*h)*10) / 10
}

// BMICategory labels a BMI value using the WHO adult cut-offs.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	case bmi < 35.0:
		return "Obesity class I"
	case bmi < 40.0:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}

// TDEE estimates daily energy need with the Mifflin-St Jeor equation using the
// male constant (+5) for every profile. There is no sex field to select the
// female constant; this is a known simplification.
func TDEE(weightKG, heightCM float64, age int) int {
	return int(math.Round(10*weightKG + 6.25*heightCM - 5*float64(age) + 5))
}

// Derive applies field fallbacks and recomputes TDEE. It is called whenever
// the profile is saved; readers elsewhere use the stored TDEE as-is.
func (p Profile) Derive() Profile {
	p = p.Clone()
	if p.Age <= 0 {
		p.Age = DefaultAge
	}
	if p.HeightCM <= 0 {
		p.HeightCM = DefaultHeightCM
	}
	if p.WeightKG <= 0 {
		p.WeightKG = DefaultWeightKG
	}
	p.TDEE = TDEE(p.WeightKG, p.HeightCM, p.Age)
	return p
}

// BMI returns the profile's body mass index.
func (p Profile) BMI() float64 {
	return BMI(p.WeightKG, p.HeightCM)
}
