package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupAuthTest wires the public login route plus one protected route so
// the middleware can be exercised end to end.
func setupAuthTest(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/login", h.login)
	router.GET("/api/profile", h.authMiddleware(), h.getProfile)
	return router
}

// TestLogin_StoreFailureIs500 verifies that an unreachable user store is
// reported as a server failure, not as bad credentials.
func TestLogin_StoreFailureIs500(t *testing.T) {
	router := setupAuthTest(&Handler{db: deadPool(t)})

	req := httptest.NewRequest("POST", "/api/login",
		strings.NewReader(`{"username":"jd","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := setupAuthTest(&Handler{db: deadPool(t)})

	req := httptest.NewRequest("GET", "/api/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

// TestAuthMiddleware_StoreFailureIs500 verifies that a token that can't be
// checked is a server failure — the client holds a possibly valid session
// and must not be logged out.
func TestAuthMiddleware_StoreFailureIs500(t *testing.T) {
	router := setupAuthTest(&Handler{db: deadPool(t)})

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}
