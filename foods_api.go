package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"jd/macro-tracker-go-api/internal/nutrition"
)

// searchFoods returns catalog entries whose description contains the query,
// case-insensitively, ordered by description and bounded by limit.
// GET /api/foods?q=chicken&limit=20.
func (h *Handler) searchFoods(c *gin.Context) {
	q := c.Query("q")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		apiError(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > 100 {
		limit = 100
	}

	foods, err := queryMany[nutrition.Food](h.db, c,
		`SELECT id, category, description, kcal, protein_g, carbs_g, fat_g
		 FROM foods
		 WHERE description ILIKE '%' || @q || '%'
		 ORDER BY description
		 LIMIT @limit`,
		pgx.NamedArgs{"q": q, "limit": limit})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to search foods")
		return
	}
	// Ensure foods is an empty array (not null) in JSON
	if foods == nil {
		foods = []nutrition.Food{}
	}

	c.JSON(http.StatusOK, foods)
}

// getFoodByID returns a single catalog entry.
// GET /api/foods/:id. 404 when the id doesn't exist.
func (h *Handler) getFoodByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid food id")
		return
	}

	food, err := queryOne[nutrition.Food](h.db, c,
		`SELECT id, category, description, kcal, protein_g, carbs_g, fat_g
		 FROM foods WHERE id = @id`,
		pgx.NamedArgs{"id": id})
	if err != nil {
		respondLookupError(c, err, "food not found", "failed to fetch food")
		return
	}

	c.JSON(http.StatusOK, food)
}
