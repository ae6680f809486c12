package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"jd/macro-tracker-go-api/internal/macros"
	"jd/macro-tracker-go-api/internal/nutrition"
)

// setupCalculateTest creates a Gin engine with the calculate route behind a
// stub auth shim. The endpoint is pure, so no DB pool is needed.
func setupCalculateTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Handler{}
	router := gin.New()
	router.POST("/api/macros/calculate", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, h.calculateMacros)
	return router
}

// doCalculateRequest sends a POST to the calculate endpoint with the given body.
func doCalculateRequest(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/macros/calculate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCalculate_KnownInput(t *testing.T) {
	router := setupCalculateTest()

	w := doCalculateRequest(router,
		`{"sex":"male","age":"30","weight":"70","height":"170","activity_level":"moderate","goal":"maintain"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp macros.Breakdown
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.BMR != 1667.5 {
		t.Errorf("expected bmr 1667.5, got %v", resp.BMR)
	}
	if resp.ActivityFactor != 1.55 {
		t.Errorf("expected activity_factor 1.55, got %v", resp.ActivityFactor)
	}
	wantCalories := int(math.Round(1667.5 * 1.55))
	if resp.Calories != wantCalories {
		t.Errorf("expected calories %d, got %d", wantCalories, resp.Calories)
	}
	if resp.Protein != 154 {
		t.Errorf("expected protein 154, got %d", resp.Protein)
	}
}

func TestCalculate_InvalidNumbersDegenerateToZeros(t *testing.T) {
	router := setupCalculateTest()

	// Unparseable biometrics are not an error — the pipeline degenerates
	// to a zero result the client refuses to save.
	w := doCalculateRequest(router,
		`{"sex":"female","age":"abc","weight":"","height":"160","activity_level":"light","goal":"lose"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp macros.Breakdown
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.BMR != 0 || resp.Calories != 0 || resp.Protein != 0 {
		t.Errorf("expected zeroed result, got %+v", resp)
	}
}

func TestCalculate_MalformedBody(t *testing.T) {
	router := setupCalculateTest()

	w := doCalculateRequest(router, `{"sex": 42}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

// TestSaveMacros_ValidationRejects verifies the save guards: all-zero
// targets, unknown goals, and unknown activity levels are all rejected
// before anything reaches the store. A saved target must carry labels the
// calculator itself recognizes.
func TestSaveMacros_ValidationRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := Handler{}
	router := gin.New()
	router.PUT("/api/profile/macros", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, h.saveProfileMacros)

	cases := []struct {
		name string
		body string
	}{
		{"all-zero target",
			`{"calories":0,"protein":0,"carbs":0,"fat":0,"goal":"maintain","activity_level":"moderate"}`},
		{"unknown goal",
			`{"calories":2000,"protein":150,"carbs":200,"fat":60,"goal":"bulk","activity_level":"moderate"}`},
		{"unknown activity level",
			`{"calories":2000,"protein":150,"carbs":200,"fat":60,"goal":"maintain","activity_level":"couch"}`},
		{"missing activity level",
			`{"calories":2000,"protein":150,"carbs":200,"fat":60,"goal":"maintain"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/api/profile/macros", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

/* ─── Tracking summary math (no DB) ──────────────────────────────────── */

// dailyLogWithTotals builds a log with the given consumed totals for
// summary-math tests; the items themselves don't matter here.
func dailyLogWithTotals(calories, protein, carbs, fat float64) nutrition.DailyLog {
	return nutrition.DailyLog{
		UserID: 1, Date: "2026-08-01", Items: []nutrition.Portion{},
		TotalCalories: calories, TotalProtein: protein,
		TotalCarbs: carbs, TotalFat: fat,
	}
}

func TestProgressPct_Clamped(t *testing.T) {
	cases := []struct {
		name            string
		current, target float64
		want            float64
	}{
		{"halfway", 100, 200, 50},
		{"exact", 200, 200, 100},
		{"over target clamps to 100", 350, 200, 100},
		{"zero target yields 0", 100, 0, 0},
		{"nothing consumed", 0, 200, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := progressPct(tc.current, tc.target); got != tc.want {
				t.Errorf("progressPct(%v, %v) = %v, want %v", tc.current, tc.target, got, tc.want)
			}
		})
	}
}

func TestBuildTrackingSummary_RemainingFlooredAtZero(t *testing.T) {
	target := &macroTarget{Calories: 2000, Protein: 150, Carbs: 200, Fat: 60}
	log := dailyLogWithTotals(2400, 180, 150, 40)

	s := buildTrackingSummary(log, target)

	if s.CaloriesLeft != 0 {
		t.Errorf("calories_left = %v, want 0 (over target)", s.CaloriesLeft)
	}
	if s.ProteinLeft != 0 {
		t.Errorf("protein_left = %v, want 0 (over target)", s.ProteinLeft)
	}
	if s.CarbsLeft != 50 {
		t.Errorf("carbs_left = %v, want 50", s.CarbsLeft)
	}
	if s.FatLeft != 20 {
		t.Errorf("fat_left = %v, want 20", s.FatLeft)
	}
	if s.CaloriesPct != 100 {
		t.Errorf("calories_pct = %v, want 100 (clamped)", s.CaloriesPct)
	}
}

func TestBuildTrackingSummary_NoTarget(t *testing.T) {
	s := buildTrackingSummary(dailyLogWithTotals(500, 40, 30, 20), nil)

	if s.Target != nil {
		t.Error("expected nil target in summary")
	}
	if s.CaloriesLeft != 0 || s.CaloriesPct != 0 {
		t.Errorf("expected zero derived fields without a target, got %+v", s)
	}
	if s.TotalCalories != 500 {
		t.Errorf("total_calories = %v, want 500", s.TotalCalories)
	}
}
