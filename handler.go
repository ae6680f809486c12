package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jd/macro-tracker-go-api/internal/nutrition"
)

// Handler holds shared dependencies (db pool, ledger) for all route handlers.
type Handler struct {
	db     *pgxpool.Pool
	ledger *nutrition.Ledger
}

// newHandler wires the ledger to the pgx-backed log store.
func newHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{
		db:     pool,
		ledger: nutrition.NewLedger(newPGLogStore(pool)),
	}
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondLookupError maps a single-row lookup failure: a missing row is a
// 404 with notFoundMsg, anything else is a store failure and reports 500
// with failureMsg. An unreachable database must never look like an absent
// record.
func respondLookupError(c *gin.Context, err error, notFoundMsg, failureMsg string) {
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, notFoundMsg)
		return
	}
	apiError(c, http.StatusInternalServerError, failureMsg)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn)
// because hosted Postgres providers close idle connections after a few minutes.
func getDBPool() *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.POST("/macros/calculate", h.calculateMacros)
	api.GET("/profile", h.getProfile)
	api.PUT("/profile/macros", h.saveProfileMacros)
	api.DELETE("/profile/macros", h.resetProfileMacros)
	api.GET("/foods", h.searchFoods)
	api.GET("/foods/:id", h.getFoodByID)
	api.GET("/tracking/daily", h.getDailyTracking)
	api.POST("/tracking/portions", h.addTrackingPortion)
	api.DELETE("/tracking/portions/:index", h.removeTrackingPortion)
}
