package main

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"jd/macro-tracker-go-api/internal/nutrition"
)

// validMealTypes is the set of allowed meal slots for logged portions.
// Reject unknown values with 400 rather than storing junk in the log.
var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// progressPct returns current/target as a percentage clamped to 0..100.
// Zero target yields 0 — nothing meaningful to fill.
func progressPct(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(100, math.Max(0, current/target*100))
}

// buildTrackingSummary merges a day's log with the user's saved target.
// Remaining values are floored at 0; target may be nil when the user has
// never saved calculator results.
func buildTrackingSummary(log nutrition.DailyLog, target *macroTarget) dailyTrackingSummary {
	s := dailyTrackingSummary{
		Date:          log.Date,
		Items:         log.Items,
		TotalCalories: log.TotalCalories,
		TotalProtein:  log.TotalProtein,
		TotalCarbs:    log.TotalCarbs,
		TotalFat:      log.TotalFat,
	}
	if target == nil {
		return s
	}
	s.Target = target
	s.CaloriesLeft = math.Max(0, float64(target.Calories)-log.TotalCalories)
	s.ProteinLeft = math.Max(0, float64(target.Protein)-log.TotalProtein)
	s.CarbsLeft = math.Max(0, float64(target.Carbs)-log.TotalCarbs)
	s.FatLeft = math.Max(0, float64(target.Fat)-log.TotalFat)
	s.CaloriesPct = progressPct(log.TotalCalories, float64(target.Calories))
	s.ProteinPct = progressPct(log.TotalProtein, float64(target.Protein))
	s.CarbsPct = progressPct(log.TotalCarbs, float64(target.Carbs))
	s.FatPct = progressPct(log.TotalFat, float64(target.Fat))
	return s
}

// loadTarget fetches the user's saved macro target, or nil when the
// profile is missing or has no saved macros. Only a hard store failure is
// reported as an error.
func (h *Handler) loadTarget(c *gin.Context, userID int) (*macroTarget, error) {
	p, err := queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.Macros, nil
}

// getDailyTracking returns the day's log merged with the saved target:
// consumed totals, remaining amounts, and progress percentages.
// GET /api/tracking/daily?date=YYYY-MM-DD (defaults to today). A date with
// no log yet comes back as an empty summary — that is not an error, and
// nothing is written.
func (h *Handler) getDailyTracking(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	// Validate date format before querying — an invalid value silently
	// matches no rows.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	dayLog, err := h.ledger.GetOrCreate(c, userID, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch daily log")
		return
	}

	target, err := h.loadTarget(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, buildTrackingSummary(dayLog, target))
}

// addTrackingPortion logs a food portion against a date and returns the
// persisted summary. The food's per-100g values are captured into the
// portion at log time, so later catalog edits don't rewrite history.
// POST /api/tracking/portions.
func (h *Handler) addTrackingPortion(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body logPortionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Quantity <= 0 || math.IsNaN(body.Quantity) || math.IsInf(body.Quantity, 0) {
		apiError(c, http.StatusBadRequest, "quantity must be a positive number of grams")
		return
	}
	if !validMealTypes[body.MealType] {
		apiError(c, http.StatusBadRequest, "meal_type must be one of: breakfast, lunch, dinner, snack")
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	food, err := queryOne[nutrition.Food](h.db, c,
		`SELECT id, category, description, kcal, protein_g, carbs_g, fat_g
		 FROM foods WHERE id = @id`,
		pgx.NamedArgs{"id": body.FoodID})
	if err != nil {
		respondLookupError(c, err, "food not found", "failed to fetch food")
		return
	}

	portion := nutrition.Portion{
		Food:     food,
		Quantity: body.Quantity,
		MealType: body.MealType,
		Date:     body.Date,
	}

	dayLog, err := h.ledger.AddPortion(c, userID, body.Date, portion)
	if err != nil {
		if errors.Is(err, nutrition.ErrInvalidQuantity) {
			apiError(c, http.StatusBadRequest, "quantity must be a positive number of grams")
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to save daily log")
		return
	}

	// The portion is committed at this point. A failed target read must not
	// report the mutation as failed — degrade to a summary without a target.
	target, err := h.loadTarget(c, userID)
	if err != nil {
		log.Printf("[tracking] target read failed after commit: %v", err)
		target = nil
	}

	c.JSON(http.StatusCreated, buildTrackingSummary(dayLog, target))
}

// removeTrackingPortion removes the portion at the given position in the
// day's log and returns the persisted summary. Positions are the item's
// index in display order.
// DELETE /api/tracking/portions/:index?date=YYYY-MM-DD (defaults to today).
func (h *Handler) removeTrackingPortion(c *gin.Context) {
	userID := c.GetInt("user_id")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid portion index")
		return
	}

	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	dayLog, err := h.ledger.RemovePortion(c, userID, date, index)
	if err != nil {
		if errors.Is(err, nutrition.ErrIndexOutOfRange) {
			apiError(c, http.StatusBadRequest, "portion index out of range")
			return
		}
		apiError(c, http.StatusInternalServerError, "failed to save daily log")
		return
	}

	// The removal is committed at this point. A retry after a 500 here would
	// remove a different item, so degrade to a summary without a target
	// instead of failing the response.
	target, err := h.loadTarget(c, userID)
	if err != nil {
		log.Printf("[tracking] target read failed after commit: %v", err)
		target = nil
	}

	c.JSON(http.StatusOK, buildTrackingSummary(dayLog, target))
}
