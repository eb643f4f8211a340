package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	schemeapp "github.com/pawnfin/console/internal/application/scheme"
	"github.com/pawnfin/console/internal/domain/scheme"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupScheme(t *testing.T, repo *schemeRepo) *gin.Engine {
	t.Helper()
	store := newMemStore()
	_ = store.Save(t.Context(), "sid", readyState)
	h := NewSchemeHandler(testBase(), schemeapp.NewService(repo))

	engine := newTestEngine(t, store, readyState)
	engine.GET("/schemes", h.List)
	engine.POST("/schemes", h.Submit)
	engine.POST("/schemes/:id/delete", h.Delete)
	engine.GET("/api/schemes/rate", h.Rate)
	return engine
}

func goldScheme() scheme.Scheme {
	end := 30
	return scheme.Scheme{ID: "s1", Name: "Gold Standard", Rows: []scheme.Row{
		{StartDay: 1, EndDay: &end, InterestPct: decimal.RequireFromString("1.5")},
		{StartDay: 31, InterestPct: decimal.NewFromInt(2)},
	}}
}

func TestSchemeHandler_List(t *testing.T) {
	t.Run("new scheme editor", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{schemes: []scheme.Scheme{goldScheme()}})

		w := do(engine, http.MethodGet, "/schemes", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Gold Standard")
		assert.Contains(t, w.Body.String(), "New scheme")
	})

	t.Run("opens a stored scheme", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{schemes: []scheme.Scheme{goldScheme()}})

		w := do(engine, http.MethodGet, "/schemes?id=s1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Editing: Gold Standard")
		assert.Equal(t, 2, strings.Count(w.Body.String(), `name="startDay"`))
	})

	t.Run("unknown id", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{})

		w := do(engine, http.MethodGet, "/schemes?id=missing", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), scheme.ErrNotFound.Message)
	})
}

func TestSchemeHandler_Submit(t *testing.T) {
	t.Run("saves a new scheme", func(t *testing.T) {
		repo := &schemeRepo{}
		engine := setupScheme(t, repo)

		w := do(engine, http.MethodPost, "/schemes", url.Values{
			"action":      {"save"},
			"name":        {" Silver Plus "},
			"startDay":    {"31", "1"},
			"endDay":      {"", "30"},
			"interestPct": {"2.5", "2"},
		})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "Scheme Silver Plus saved.", flashOf(w))
		require.Len(t, repo.schemes, 1)
		saved := repo.schemes[0]
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "/schemes?id="+url.QueryEscape(saved.ID), w.Header().Get("Location"))
		require.Len(t, saved.Rows, 2)
		assert.Equal(t, 1, saved.Rows[0].StartDay)
		assert.Equal(t, 31, saved.Rows[1].StartDay)
	})

	t.Run("updates in place", func(t *testing.T) {
		repo := &schemeRepo{schemes: []scheme.Scheme{goldScheme()}}
		engine := setupScheme(t, repo)

		w := do(engine, http.MethodPost, "/schemes", url.Values{
			"id": {"s1"}, "name": {"Gold Standard"},
			"startDay": {"1"}, "endDay": {""}, "interestPct": {"1.75"},
		})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		require.Len(t, repo.schemes, 1)
		assert.Equal(t, "1.75", repo.schemes[0].Rows[0].InterestPct.String())
	})

	t.Run("row errors keep the draft", func(t *testing.T) {
		repo := &schemeRepo{}
		engine := setupScheme(t, repo)

		w := do(engine, http.MethodPost, "/schemes", url.Values{
			"name": {"Broken"}, "startDay": {"10"}, "endDay": {"5"}, "interestPct": {"2"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Row 1: End day must be a number")
		assert.Contains(t, w.Body.String(), `value="Broken"`)
		assert.Empty(t, repo.schemes)
	})

	t.Run("add row", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{})

		w := do(engine, http.MethodPost, "/schemes", url.Values{
			"action": {"add-row"}, "name": {"Draft"},
			"startDay": {"1"}, "endDay": {""}, "interestPct": {"2"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, strings.Count(w.Body.String(), `name="startDay"`))
	})

	t.Run("remove row", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{})

		w := do(engine, http.MethodPost, "/schemes", url.Values{
			"remove": {"0"}, "name": {"Draft"},
			"startDay": {"1", "31"}, "endDay": {"30", ""}, "interestPct": {"2", "3"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, strings.Count(w.Body.String(), `name="startDay"`))
		assert.Contains(t, w.Body.String(), `value="31"`)
	})

	t.Run("new scheme clears the editor", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{})

		w := do(engine, http.MethodPost, "/schemes", url.Values{"action": {"new"}, "id": {"s1"}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/schemes", w.Header().Get("Location"))
	})
}

func TestSchemeHandler_Delete(t *testing.T) {
	t.Run("removes the scheme", func(t *testing.T) {
		repo := &schemeRepo{schemes: []scheme.Scheme{goldScheme()}}
		engine := setupScheme(t, repo)

		w := do(engine, http.MethodPost, "/schemes/s1/delete", url.Values{})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "Scheme deleted.", flashOf(w))
		assert.Empty(t, repo.schemes)
	})

	t.Run("unknown id is not an error", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{})

		w := do(engine, http.MethodPost, "/schemes/ghost/delete", url.Values{})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/schemes", w.Header().Get("Location"))
	})
}

func TestSchemeHandler_Rate(t *testing.T) {
	t.Run("known scheme", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{schemes: []scheme.Scheme{goldScheme()}})

		w := do(engine, http.MethodGet, "/api/schemes/rate?name="+url.QueryEscape("Gold Standard"), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"scheme":"Gold Standard","monthlyPct":"1.5","yearlyPct":"18","found":true}}`, w.Body.String())
	})

	t.Run("none keeps the typed rate", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{schemes: []scheme.Scheme{goldScheme()}})

		w := do(engine, http.MethodGet, "/api/schemes/rate?name=None", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"scheme":"None","monthlyPct":"","yearlyPct":"","found":false}}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		engine := setupScheme(t, &schemeRepo{err: errors.New("database is locked")})

		w := do(engine, http.MethodGet, "/api/schemes/rate?name=Gold", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Schemes are unavailable")
	})
}
