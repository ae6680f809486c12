package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"jd/macro-tracker-go-api/internal/macros"
)

// validGoals is the set of allowed goal values for saved macro targets.
// The calculator itself tolerates unknown goals (it falls back to
// maintain), but a saved target should carry a recognizable label.
var validGoals = map[string]bool{
	"lose":     true,
	"maintain": true,
	"gain":     true,
}

// calculateMacros runs the full macro pipeline on the submitted biometrics
// and returns the target with its intermediate values. Pure — nothing is
// persisted; the client calls PUT /api/profile/macros to save a result.
// Unparseable numeric fields degenerate to a zero result, still 200.
// POST /api/macros/calculate.
func (h *Handler) calculateMacros(c *gin.Context) {
	var in macros.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	c.JSON(http.StatusOK, macros.Compute(in))
}

// getProfile returns the authenticated user's profile, including the saved
// macro target when one exists.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := queryOne[profile](h.db, c,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		respondLookupError(c, err, "profile not found", "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, p)
}

// saveProfileMacros overwrites the user's saved macro target with the
// submitted values and stamps updated_at. All-zero targets are rejected —
// they mean the calculator ran on incomplete input.
// PUT /api/profile/macros.
func (h *Handler) saveProfileMacros(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body saveMacrosRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Calories == 0 && body.Protein == 0 && body.Carbs == 0 && body.Fat == 0 {
		apiError(c, http.StatusBadRequest, "refusing to save an all-zero target")
		return
	}
	if !validGoals[body.Goal] {
		apiError(c, http.StatusBadRequest, "goal must be one of: lose, maintain, gain")
		return
	}
	if !macros.ValidActivityLevel(body.ActivityLevel) {
		apiError(c, http.StatusBadRequest, "activity_level must be one of: sedentary, light, moderate, active, extreme")
		return
	}

	target := macroTarget{
		Calories:      body.Calories,
		Protein:       body.Protein,
		Carbs:         body.Carbs,
		Fat:           body.Fat,
		Goal:          body.Goal,
		ActivityLevel: body.ActivityLevel,
		UpdatedAt:     time.Now().UTC(),
	}
	// Encode explicitly — the pool runs in simple query protocol, where an
	// arbitrary struct param has no reliable text encoding.
	encoded, err := json.Marshal(target)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save macros")
		return
	}

	p, err := queryOne[profile](h.db, c,
		`UPDATE profiles SET macros = @macros::jsonb
		 WHERE user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "macros": string(encoded)})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save macros")
		return
	}

	c.JSON(http.StatusOK, p)
}

// resetProfileMacros clears the saved macro target back to absent.
// DELETE /api/profile/macros. Returns 204 on success.
func (h *Handler) resetProfileMacros(c *gin.Context) {
	userID := c.GetInt("user_id")

	result, err := h.db.Exec(c,
		"UPDATE profiles SET macros = NULL WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to reset macros")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}

	c.Status(http.StatusNoContent)
}
