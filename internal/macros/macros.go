// Package macros computes daily calorie and macronutrient targets from
// user biometrics: Mifflin-St Jeor BMR, activity-scaled TDEE, a
// goal-adjusted calorie target, and a protein/fat/carb gram split.
// Everything here is pure and safe to call concurrently.
package macros

import (
	"math"
	"strconv"
)

// activityFactors maps activity level strings to their TDEE multiplier.
// The single source of truth for valid activity levels; ValidActivityLevel
// exposes the key set for input validation.
var activityFactors = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
	"extreme":   1.9,
}

// goalFactors maps a goal to its calorie adjustment: 20% deficit for
// weight loss, 15% surplus for muscle gain.
var goalFactors = map[string]float64{
	"lose":     0.8,
	"maintain": 1.0,
	"gain":     1.15,
}

// proteinPerKg maps a goal to grams of protein per kg of body weight.
// Higher for weight loss to preserve muscle, slightly lower for bulking.
var proteinPerKg = map[string]float64{
	"lose":     2.4,
	"maintain": 2.2,
	"gain":     2.0,
}

// fatShare maps a goal to the fraction of calories allotted to fat.
// 30% for weight loss (satiety), 20% for gaining (more carbs for energy).
var fatShare = map[string]float64{
	"lose":     0.30,
	"maintain": 0.25,
	"gain":     0.20,
}

// Input carries the biometric form fields. Age, weight, and height arrive
// as strings because that is what the mobile form submits; parsing happens
// inside the pipeline so a bad field degenerates to a zero result instead
// of an error.
type Input struct {
	Sex           string `json:"sex"`
	Age           string `json:"age"`
	WeightKG      string `json:"weight"`
	HeightCM      string `json:"height"`
	ActivityLevel string `json:"activity_level"`
	Goal          string `json:"goal"`
}

// Target is the computed daily target. Grams are independently rounded,
// so protein*4 + fat*9 + carbs*4 can drift a few kcal from Calories.
type Target struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// Breakdown is the full pipeline output, including the intermediate
// values the results screen displays alongside the target.
type Breakdown struct {
	BMR            float64 `json:"bmr"`
	ActivityFactor float64 `json:"activity_factor"`
	TDEE           float64 `json:"tdee"`
	GoalFactor     float64 `json:"goal_factor"`
	AdjustedTDEE   float64 `json:"adjusted_tdee"`
	Target
	ProteinPct int `json:"protein_pct"`
	CarbsPct   int `json:"carbs_pct"`
	FatPct     int `json:"fat_pct"`
}

// parsePositive parses s as a finite positive float. Returns ok=false for
// anything else — empty fields, garbage, zero, negatives, inf.
func parsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v <= 0 {
		return 0, false
	}
	return v, true
}

// BMR computes basal metabolic rate via Mifflin-St Jeor.
// Male: 10w + 6.25h - 5a + 5. Female: 10w + 6.25h - 5a - 161.
// Returns 0 when any field fails to parse to a finite positive number;
// callers must treat 0 as incomplete input, not a valid BMR.
func BMR(sex, weightKG, heightCM, ageYears string) float64 {
	w, okW := parsePositive(weightKG)
	h, okH := parsePositive(heightCM)
	a, okA := parsePositive(ageYears)
	if !okW || !okH || !okA {
		return 0
	}
	bmr := 10*w + 6.25*h - 5*a
	if sex == "male" {
		return bmr + 5
	}
	return bmr - 161
}

// ValidActivityLevel reports whether level is one of the recognized
// activity levels. Saved targets must carry a recognizable label even
// though the pipeline itself tolerates unknown ones.
func ValidActivityLevel(level string) bool {
	_, ok := activityFactors[level]
	return ok
}

// ActivityFactor returns the TDEE multiplier for an activity level.
// Unknown levels fall back to sedentary (1.2).
func ActivityFactor(level string) float64 {
	if f, ok := activityFactors[level]; ok {
		return f
	}
	return 1.2
}

// GoalFactor returns the calorie adjustment for a goal. Unknown goals
// fall back to maintain (1.0).
func GoalFactor(goal string) float64 {
	if f, ok := goalFactors[goal]; ok {
		return f
	}
	return 1.0
}

// Split divides a goal-adjusted TDEE into a macro target. Protein comes
// from body weight (grams per kg by goal), fat from a fixed share of
// calories, and carbs get whatever calories remain. The carb remainder is
// intentionally not clamped: a very low calorie target combined with the
// fixed protein and fat allotments can produce negative carb grams, and
// the caller decides how to present that.
func Split(adjustedTDEE float64, weightKG, goal string) Target {
	w, ok := parsePositive(weightKG)
	if !ok {
		return Target{}
	}

	perKg, okP := proteinPerKg[goal]
	if !okP {
		perKg = 2.2
	}
	proteinGrams := math.Round(w * perKg)
	proteinKcal := proteinGrams * 4

	share, okF := fatShare[goal]
	if !okF {
		share = 0.25
	}
	fatKcal := adjustedTDEE * share
	fatGrams := math.Round(fatKcal / 9)

	carbKcal := adjustedTDEE - proteinKcal - fatKcal
	carbGrams := math.Round(carbKcal / 4)

	return Target{
		Calories: int(math.Round(adjustedTDEE)),
		Protein:  int(proteinGrams),
		Carbs:    int(carbGrams),
		Fat:      int(fatGrams),
	}
}

// Percentages derives the displayed macro distribution from the rounded
// gram values, not the pre-rounding floats, so the three numbers can sum
// to slightly more or less than 100. Zero calories yields zero across the
// board.
func Percentages(t Target) (protein, carbs, fat int) {
	if t.Calories == 0 {
		return 0, 0, 0
	}
	c := float64(t.Calories)
	protein = int(math.Round(float64(t.Protein) * 4 / c * 100))
	carbs = int(math.Round(float64(t.Carbs) * 4 / c * 100))
	fat = int(math.Round(float64(t.Fat) * 9 / c * 100))
	return protein, carbs, fat
}

// Compute runs the whole pipeline: BMR → TDEE → goal adjustment → split →
// percentages. Invalid numeric input propagates as zeros throughout; the
// caller is responsible for refusing to save an all-zero target.
func Compute(in Input) Breakdown {
	bmr := BMR(in.Sex, in.WeightKG, in.HeightCM, in.Age)
	af := ActivityFactor(in.ActivityLevel)
	tdee := bmr * af
	gf := GoalFactor(in.Goal)
	adjusted := tdee * gf

	target := Split(adjusted, in.WeightKG, in.Goal)
	pPct, cPct, fPct := Percentages(target)

	return Breakdown{
		BMR:            bmr,
		ActivityFactor: af,
		TDEE:           tdee,
		GoalFactor:     gf,
		AdjustedTDEE:   adjusted,
		Target:         target,
		ProteinPct:     pPct,
		CarbsPct:       cPct,
		FatPct:         fPct,
	}
}
