package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jd/macro-tracker-go-api/internal/nutrition"
)

/* ─── Test fixtures ──────────────────────────────────────────────────── */

// memStore is an in-memory nutrition.Store for handler tests.
type memStore struct {
	logs map[string]nutrition.DailyLog
}

func newMemStore() *memStore {
	return &memStore{logs: make(map[string]nutrition.DailyLog)}
}

func (s *memStore) key(userID int, date string) string {
	return fmt.Sprintf("%d|%s", userID, date)
}

func (s *memStore) Get(ctx context.Context, userID int, date string) (nutrition.DailyLog, error) {
	dayLog, ok := s.logs[s.key(userID, date)]
	if !ok {
		return nutrition.DailyLog{}, nutrition.ErrNotFound
	}
	return dayLog, nil
}

func (s *memStore) Upsert(ctx context.Context, dayLog nutrition.DailyLog) (nutrition.DailyLog, error) {
	s.logs[s.key(dayLog.UserID, dayLog.Date)] = dayLog
	return dayLog, nil
}

// deadPool builds a pool pointed at a port nothing listens on. pgxpool
// dials lazily, so construction succeeds and every query fails with a
// connection error.
func deadPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), "postgres://u:p@127.0.0.1:1/down")
	if err != nil {
		t.Fatalf("failed to build pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// setupHandlerTest wires the handler's routes behind a stub auth shim that
// pins user_id to 1.
func setupHandlerTest(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}
	router.GET("/api/foods/:id", auth, h.getFoodByID)
	router.DELETE("/api/tracking/portions/:index", auth, h.removeTrackingPortion)
	return router
}

/* ─── Lookup error mapping ───────────────────────────────────────────── */

// TestRespondLookupError verifies that only a genuinely missing row maps
// to 404; every other store failure is a 500.
func TestRespondLookupError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing row is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondLookupError(c, pgx.ErrNoRows, "food not found", "failed to fetch food")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("store failure is 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondLookupError(c, fmt.Errorf("dial tcp: connection refused"), "food not found", "failed to fetch food")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
	})
}

// TestGetFoodByID_StoreFailureIs500 verifies that an unreachable database
// is reported as a server failure, not as a missing food.
func TestGetFoodByID_StoreFailureIs500(t *testing.T) {
	h := &Handler{db: deadPool(t)}
	router := setupHandlerTest(h)

	req := httptest.NewRequest("GET", "/api/foods/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

/* ─── Post-commit target read ────────────────────────────────────────── */

// TestRemovePortion_TargetReadFailureDegrades verifies that once the
// removal is persisted, a failing profile read does not turn the response
// into an error — a client retry would remove a different item. The
// committed log comes back with the target omitted.
func TestRemovePortion_TargetReadFailureDegrades(t *testing.T) {
	store := newMemStore()
	chicken := nutrition.Food{ID: 1, Category: "Poultry", Description: "Chicken breast",
		Kcal: 200, ProteinG: 20, CarbsG: 10, FatG: 5}
	rice := nutrition.Food{ID: 2, Category: "Grains", Description: "White rice",
		Kcal: 130, ProteinG: 2.7, CarbsG: 28, FatG: 0.3}
	store.logs[store.key(1, "2026-08-01")] = nutrition.DailyLog{
		UserID: 1, Date: "2026-08-01",
		Items: []nutrition.Portion{
			{Food: chicken, Quantity: 100, MealType: "lunch", Date: "2026-08-01"},
			{Food: rice, Quantity: 100, MealType: "lunch", Date: "2026-08-01"},
		},
		TotalCalories: 330, TotalProtein: 22.7, TotalCarbs: 38, TotalFat: 5.3,
	}

	h := &Handler{db: deadPool(t), ledger: nutrition.NewLedger(store)}
	router := setupHandlerTest(h)

	req := httptest.NewRequest("DELETE", "/api/tracking/portions/0?date=2026-08-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a committed removal, got %d: %s", w.Code, w.Body.String())
	}

	var resp dailyTrackingSummary
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Target != nil {
		t.Error("expected target omitted when the profile read fails")
	}
	if len(resp.Items) != 1 || resp.Items[0].Food.ID != rice.ID {
		t.Errorf("expected only the rice portion to remain, got %+v", resp.Items)
	}
	if resp.TotalCalories != 130 {
		t.Errorf("total_calories = %v, want 130", resp.TotalCalories)
	}

	// The removal itself must be durable.
	persisted := store.logs[store.key(1, "2026-08-01")]
	if len(persisted.Items) != 1 {
		t.Errorf("expected 1 persisted item, got %d", len(persisted.Items))
	}
}
