package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		engine := gin.New()
		engine.GET("/healthz", NewSystemHandler(map[string]HealthCheck{"database": ok, "sessions": ok}).Health)

		w := do(engine, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok","sessions":"ok"}}`, w.Body.String())
	})

	t.Run("a failing check degrades the reply", func(t *testing.T) {
		engine := gin.New()
		engine.GET("/healthz", NewSystemHandler(map[string]HealthCheck{
			"database": ok,
			"sessions": func(context.Context) error { return errors.New("redis: connection refused") },
		}).Health)

		w := do(engine, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"database":"ok","sessions":"redis: connection refused"}}`, w.Body.String())
	})

	t.Run("checks run under a deadline", func(t *testing.T) {
		var hadDeadline bool
		engine := gin.New()
		engine.GET("/healthz", NewSystemHandler(map[string]HealthCheck{
			"database": func(ctx context.Context) error {
				_, hadDeadline = ctx.Deadline()
				return nil
			},
		}).Health)

		do(engine, http.MethodGet, "/healthz", nil)

		assert.True(t, hadDeadline)
	})

	t.Run("no checks", func(t *testing.T) {
		engine := gin.New()
		engine.GET("/healthz", NewSystemHandler(nil).Health)

		w := do(engine, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})
}

func TestHomeHandler(t *testing.T) {
	store := newMemStore()
	h := NewHomeHandler(testBase())
	engine := newTestEngine(t, store, readyState)
	engine.GET("/", h.Home)
	engine.NoRoute(h.NotFound)

	t.Run("dashboard names the company", func(t *testing.T) {
		w := do(engine, http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Working in Sri Lakshmi Finance.")
		assert.Contains(t, w.Body.String(), `href="/customers/new"`)
	})

	t.Run("unknown page", func(t *testing.T) {
		w := do(engine, http.MethodGet, "/nowhere", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "The page you asked for does not exist.")
	})

	t.Run("flash is shown once", func(t *testing.T) {
		req := newRequestWithCookie(t, "/", flashCookie, "Loan%20closed.")
		w := serveRequest(engine, req)

		assert.Contains(t, w.Body.String(), "Loan closed.")
		assert.Contains(t, w.Header().Get("Set-Cookie"), flashCookie+"=;")
	})
}
