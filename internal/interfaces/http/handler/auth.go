package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authapp "github.com/pawnfin/console/internal/application/auth"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/infrastructure/pawnapi"
	"github.com/pawnfin/console/internal/interfaces/http/dto"
	"github.com/pawnfin/console/internal/interfaces/http/middleware"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// MsgInvalidCredentials is shown when the pawn-api rejects a login with 401
const MsgInvalidCredentials = "Invalid username or password."

// AuthHandler serves the login page and logout
type AuthHandler struct {
	BaseHandler
	authService *authapp.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(base BaseHandler, authService *authapp.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, authService: authService}
}

type loginPage struct {
	Username string
}

// LoginPage renders the sign-in form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, view.PageLogin, h.page(c, "Login", "", loginPage{}))
}

// Login checks the credentials and moves on to company selection.
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	p := h.page(c, "Login", "", loginPage{})
	if err := bind(c, &form); err != nil {
		h.HandleError(c, err, view.PageLogin, p)
		return
	}
	p.Data = loginPage{Username: form.Username}

	err := h.authService.Login(c.Request.Context(), middleware.GetSession(c), form.Username, form.Password)
	switch {
	case err == nil:
		logger.GetGinLogger(c).Info("User logged in", zap.String("username", form.Username))
		h.redirect(c, "/company")
	case errors.Is(err, pawnapi.ErrSessionExpired):
		p.Error = MsgInvalidCredentials
		h.render(c, http.StatusBadRequest, view.PageLogin, p)
	case errors.Is(err, authapp.ErrNoToken):
		p.Error = err.Error()
		h.render(c, http.StatusBadGateway, view.PageLogin, p)
	default:
		h.HandleError(c, err, view.PageLogin, p)
	}
}

// Logout clears the token and company and returns to the login page. It is
// allowed in every state.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetSession(c)); err != nil {
		logger.GetGinLogger(c).Error("Failed to clear session", zap.Error(err))
	}
	h.redirect(c, "/login")
}
