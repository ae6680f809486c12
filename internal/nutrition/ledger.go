package nutrition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrNotFound is returned by Store.Get when no log exists for the key.
// The ledger treats it as a normal empty state, never an error to callers.
var ErrNotFound = errors.New("daily log not found")

// ErrInvalidQuantity rejects non-positive or non-finite portion quantities
// before any state is touched.
var ErrInvalidQuantity = errors.New("quantity must be a positive number of grams")

// ErrIndexOutOfRange rejects a removal index outside the items slice
// before any state is touched.
var ErrIndexOutOfRange = errors.New("portion index out of range")

// Store is the persistence contract for daily logs. Get returns
// ErrNotFound for absent keys. Upsert replaces the whole row keyed by
// (UserID, Date) — items and all four totals land together or not at all.
type Store interface {
	Get(ctx context.Context, userID int, date string) (DailyLog, error)
	Upsert(ctx context.Context, log DailyLog) (DailyLog, error)
}

// Ledger serializes mutations per (user, date) and keeps the running
// totals consistent with the items. A mutation is committed only once the
// store confirms the upsert; on any store failure the previous persisted
// state remains the last known-good value.
type Ledger struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger wraps a Store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, locks: make(map[string]*sync.Mutex)}
}

// keyLock returns the mutex for a (user, date) key, creating it on first
// use. Lock entries are never reclaimed; the set of (user, date) pairs a
// single process touches is small.
func (l *Ledger) keyLock(userID int, date string) *sync.Mutex {
	key := fmt.Sprintf("%d|%s", userID, date)
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// GetOrCreate loads the log for (userID, date). An absent log comes back
// as a fresh zeroed one without being written — it is only persisted on
// the first mutation. Any store error other than not-found is returned
// as-is; the log is unavailable, not silently empty.
func (l *Ledger) GetOrCreate(ctx context.Context, userID int, date string) (DailyLog, error) {
	log, err := l.store.Get(ctx, userID, date)
	if errors.Is(err, ErrNotFound) {
		return emptyLog(userID, date), nil
	}
	if err != nil {
		return DailyLog{}, err
	}
	if log.Items == nil {
		log.Items = []Portion{}
	}
	return log, nil
}

// AddPortion appends a portion to the day's log, adds its contribution to
// each running total, and persists the whole log as one upsert. The
// returned log is the persisted state.
func (l *Ledger) AddPortion(ctx context.Context, userID int, date string, p Portion) (DailyLog, error) {
	if p.Quantity <= 0 || math.IsNaN(p.Quantity) || math.IsInf(p.Quantity, 0) {
		return DailyLog{}, ErrInvalidQuantity
	}

	mu := l.keyLock(userID, date)
	mu.Lock()
	defer mu.Unlock()

	log, err := l.GetOrCreate(ctx, userID, date)
	if err != nil {
		return DailyLog{}, err
	}

	calories, protein, carbs, fat := p.Contribution()
	log.Items = append(log.Items, p)
	log.TotalCalories += calories
	log.TotalProtein += protein
	log.TotalCarbs += carbs
	log.TotalFat += fat

	return l.store.Upsert(ctx, log)
}

// RemovePortion removes the item at index from the day's log, subtracts
// its contribution from each total, and persists. Totals are floored at
// zero to absorb float drift — they never go negative. Remaining items
// keep their relative order.
func (l *Ledger) RemovePortion(ctx context.Context, userID int, date string, index int) (DailyLog, error) {
	mu := l.keyLock(userID, date)
	mu.Lock()
	defer mu.Unlock()

	log, err := l.GetOrCreate(ctx, userID, date)
	if err != nil {
		return DailyLog{}, err
	}
	if index < 0 || index >= len(log.Items) {
		return DailyLog{}, ErrIndexOutOfRange
	}

	calories, protein, carbs, fat := log.Items[index].Contribution()
	log.Items = append(log.Items[:index:index], log.Items[index+1:]...)
	log.TotalCalories = math.Max(0, log.TotalCalories-calories)
	log.TotalProtein = math.Max(0, log.TotalProtein-protein)
	log.TotalCarbs = math.Max(0, log.TotalCarbs-carbs)
	log.TotalFat = math.Max(0, log.TotalFat-fat)

	return l.store.Upsert(ctx, log)
}
