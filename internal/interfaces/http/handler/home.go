package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawnfin/console/internal/interfaces/http/view"
)

// HomeHandler serves the dashboard
type HomeHandler struct {
	BaseHandler
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(base BaseHandler) *HomeHandler {
	return &HomeHandler{BaseHandler: base}
}

// Home renders GET /
func (h *HomeHandler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, view.PageHome, h.page(c, "Home", "home", nil))
}

// NotFound renders unknown routes
func (h *HomeHandler) NotFound(c *gin.Context) {
	p := h.page(c, "Page not found", "", "The page you asked for does not exist.")
	h.render(c, http.StatusNotFound, view.PageError, p)
}
