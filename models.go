package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"jd/macro-tracker-go-api/internal/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// macroTarget is the saved daily target stored in profiles.macros (jsonb).
// Overwritten whenever the user re-runs the calculator and saves; cleared
// back to NULL on reset.
type macroTarget struct {
	Calories      int       `json:"calories"`
	Protein       int       `json:"protein"`
	Carbs         int       `json:"carbs"`
	Fat           int       `json:"fat"`
	Goal          string    `json:"goal"`
	ActivityLevel string    `json:"activity_level"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// profile maps to the profiles table, one row per user. Macros is nil
// until the user saves a calculator result.
type profile struct {
	UserID    int          `json:"user_id" db:"user_id"`
	FullName  *string      `json:"full_name" db:"full_name"`
	AvatarURL *string      `json:"avatar_url" db:"avatar_url"`
	Plan      string       `json:"plan" db:"plan"`
	Macros    *macroTarget `json:"macros,omitempty" db:"macros"`
	CreatedAt *time.Time   `json:"created_at" db:"created_at"`
}

/* ─── Request / Response shapes ──────────────────────────────────────── */

// saveMacrosRequest is the request body for PUT /api/profile/macros.
// Values come from the calculate endpoint's response; the server only
// stamps updated_at.
type saveMacrosRequest struct {
	Calories      int    `json:"calories"`
	Protein       int    `json:"protein"`
	Carbs         int    `json:"carbs"`
	Fat           int    `json:"fat"`
	Goal          string `json:"goal"`
	ActivityLevel string `json:"activity_level"`
}

// logPortionRequest is the request body for POST /api/tracking/portions.
// Date defaults to today when omitted.
type logPortionRequest struct {
	FoodID   int     `json:"food_id"`
	Quantity float64 `json:"quantity"`
	MealType string  `json:"meal_type"`
	Date     string  `json:"date"`
}

// dailyTrackingSummary is the response for GET /api/tracking/daily and for
// both portion mutations. Target and the derived left/pct fields are only
// populated when the user has saved macros; progress percentages are
// clamped to 0..100 and remaining values floored at 0.
type dailyTrackingSummary struct {
	Date          string              `json:"date"`
	Items         []nutrition.Portion `json:"items"`
	TotalCalories float64             `json:"total_calories"`
	TotalProtein  float64             `json:"total_protein"`
	TotalCarbs    float64             `json:"total_carbs"`
	TotalFat      float64             `json:"total_fat"`

	Target       *macroTarget `json:"target,omitempty"`
	CaloriesLeft float64      `json:"calories_left"`
	ProteinLeft  float64      `json:"protein_left"`
	CarbsLeft    float64      `json:"carbs_left"`
	FatLeft      float64      `json:"fat_left"`
	CaloriesPct  float64      `json:"calories_pct"`
	ProteinPct   float64      `json:"protein_pct"`
	CarbsPct     float64      `json:"carbs_pct"`
	FatPct       float64      `json:"fat_pct"`
}
