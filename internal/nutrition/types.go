// Package nutrition maintains per-user, per-date food logs: an ordered
// list of logged portions plus four running totals kept consistent across
// adds and removals. Persistence goes through the Store contract so the
// ledger itself stays free of transport and database concerns.
package nutrition

// Food is a row from the food catalog. Nutritional values are per 100 g.
// Reference data — never mutated by this package.
type Food struct {
	ID          int     `json:"id" db:"id"`
	Category    string  `json:"category" db:"category"`
	Description string  `json:"description" db:"description"`
	Kcal        float64 `json:"kcal" db:"kcal"`
	ProteinG    float64 `json:"protein_g" db:"protein_g"`
	CarbsG      float64 `json:"carbs_g" db:"carbs_g"`
	FatG        float64 `json:"fat_g" db:"fat_g"`
}

// Portion is one logged quantity of a food, tied to a meal slot and date.
// Portions are never edited in place — a quantity change is modeled as
// remove followed by add.
type Portion struct {
	Food     Food    `json:"food"`
	Quantity float64 `json:"quantity"` // grams
	MealType string  `json:"meal_type"`
	Date     string  `json:"date"` // YYYY-MM-DD
}

// Contribution returns the portion's share of each metric, scaled from
// the food's per-100g values.
func (p Portion) Contribution() (calories, protein, carbs, fat float64) {
	m := p.Quantity / 100
	return p.Food.Kcal * m, p.Food.ProteinG * m, p.Food.CarbsG * m, p.Food.FatG * m
}

// DailyLog is the aggregate for one user on one date. Items keep
// insertion order, which is also display and removal order. The totals
// always equal the sum of each item's contribution, modulo float drift
// absorbed by the floor-at-zero rule on removal.
type DailyLog struct {
	UserID        int       `json:"user_id"`
	Date          string    `json:"date"`
	Items         []Portion `json:"items"`
	TotalCalories float64   `json:"total_calories"`
	TotalProtein  float64   `json:"total_protein"`
	TotalCarbs    float64   `json:"total_carbs"`
	TotalFat      float64   `json:"total_fat"`
}

// emptyLog returns a fresh zeroed log for the key. Not persisted until
// the first mutation.
func emptyLog(userID int, date string) DailyLog {
	return DailyLog{
		UserID: userID,
		Date:   date,
		Items:  []Portion{},
	}
}
