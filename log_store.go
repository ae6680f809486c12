package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jd/macro-tracker-go-api/internal/nutrition"
)

// pgLogStore implements nutrition.Store on the daily_logs table. The
// items sequence lives in a jsonb column next to the four totals, so a
// single upsert replaces the whole aggregate — there is no partial-field
// patch path.
type pgLogStore struct {
	pool *pgxpool.Pool
}

func newPGLogStore(pool *pgxpool.Pool) *pgLogStore {
	return &pgLogStore{pool: pool}
}

// dailyLogRow is the scan shape for daily_logs. Items stays raw jsonb
// until decoded into []nutrition.Portion.
type dailyLogRow struct {
	UserID        int      `db:"user_id"`
	Date          DateOnly `db:"date"`
	Items         []byte   `db:"items"`
	TotalCalories float64  `db:"total_calories"`
	TotalProtein  float64  `db:"total_protein"`
	TotalCarbs    float64  `db:"total_carbs"`
	TotalFat      float64  `db:"total_fat"`
}

// toLog decodes the row into the ledger's DailyLog.
func (r dailyLogRow) toLog() (nutrition.DailyLog, error) {
	var items []nutrition.Portion
	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &items); err != nil {
			return nutrition.DailyLog{}, fmt.Errorf("decode daily log items: %w", err)
		}
	}
	if items == nil {
		items = []nutrition.Portion{}
	}
	return nutrition.DailyLog{
		UserID:        r.UserID,
		Date:          r.Date.Time.Format("2006-01-02"),
		Items:         items,
		TotalCalories: r.TotalCalories,
		TotalProtein:  r.TotalProtein,
		TotalCarbs:    r.TotalCarbs,
		TotalFat:      r.TotalFat,
	}, nil
}

// Get loads the log for (userID, date). Absent rows map to
// nutrition.ErrNotFound so the ledger can treat them as a normal empty state.
func (s *pgLogStore) Get(ctx context.Context, userID int, date string) (nutrition.DailyLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, date, items, total_calories, total_protein, total_carbs, total_fat
		 FROM daily_logs
		 WHERE user_id = @userID AND date = @date`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		return nutrition.DailyLog{}, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dailyLogRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nutrition.DailyLog{}, nutrition.ErrNotFound
	}
	if err != nil {
		return nutrition.DailyLog{}, err
	}
	return row.toLog()
}

// Upsert writes the whole log keyed by (user_id, date) — full-replace
// semantics, matching the ledger's commit model — and returns the
// persisted state.
func (s *pgLogStore) Upsert(ctx context.Context, log nutrition.DailyLog) (nutrition.DailyLog, error) {
	items, err := json.Marshal(log.Items)
	if err != nil {
		return nutrition.DailyLog{}, fmt.Errorf("encode daily log items: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`INSERT INTO daily_logs (user_id, date, items, total_calories, total_protein, total_carbs, total_fat, updated_at)
		 VALUES (@userID, @date, @items::jsonb, @calories, @protein, @carbs, @fat, now())
		 ON CONFLICT (user_id, date) DO UPDATE SET
			items          = EXCLUDED.items,
			total_calories = EXCLUDED.total_calories,
			total_protein  = EXCLUDED.total_protein,
			total_carbs    = EXCLUDED.total_carbs,
			total_fat      = EXCLUDED.total_fat,
			updated_at     = now()
		 RETURNING user_id, date, items, total_calories, total_protein, total_carbs, total_fat`,
		pgx.NamedArgs{
			"userID": log.UserID, "date": log.Date, "items": string(items),
			"calories": log.TotalCalories, "protein": log.TotalProtein,
			"carbs": log.TotalCarbs, "fat": log.TotalFat,
		})
	if err != nil {
		return nutrition.DailyLog{}, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[dailyLogRow])
	if err != nil {
		return nutrition.DailyLog{}, err
	}
	return row.toLog()
}
