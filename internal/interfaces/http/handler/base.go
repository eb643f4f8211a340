package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawnfin/console/internal/domain/customer"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/infrastructure/pawnapi"
	"github.com/pawnfin/console/internal/interfaces/http/dto"
	"github.com/pawnfin/console/internal/interfaces/http/middleware"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// flashCookie carries a one-shot confirmation across a redirect
const flashCookie = "pf_flash"

// StatusClientClosed is logged when the browser went away mid-request
const StatusClientClosed = 499

// UserNamer resolves the "Logged in as" name for a session
type UserNamer interface {
	CurrentUser(sess *session.Handle) string
}

// BaseHandler provides the page plumbing shared by the console handlers
type BaseHandler struct {
	users UserNamer
	now   func() time.Time
}

// NewBaseHandler creates a BaseHandler. users may be nil.
func NewBaseHandler(users UserNamer) BaseHandler {
	return BaseHandler{users: users, now: time.Now}
}

func (h *BaseHandler) today() time.Time {
	if h.now == nil {
		return time.Now()
	}
	return h.now()
}

// page builds the view.Page common fields for the current request.
func (h *BaseHandler) page(c *gin.Context, title, active string, data any) view.Page {
	sess := middleware.GetSession(c)
	p := view.Page{
		Title:     title,
		Active:    active,
		Shell:     middleware.InShell(c),
		Company:   sess.State().CompanyLabel(),
		RequestID: middleware.GetRequestID(c),
		Flash:     h.popFlash(c),
		Data:      data,
	}
	if h.users != nil && sess.State().Authenticated() {
		p.User = h.users.CurrentUser(sess)
	}
	return p
}

// render writes the page with status
func (h *BaseHandler) render(c *gin.Context, status int, name string, p view.Page) {
	c.HTML(status, name, p)
}

// redirect answers with 303 so the browser follows with a GET
func (h *BaseHandler) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// setFlash stores msg for the next page rendered by this browser.
func (h *BaseHandler) setFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, msg, 60, "/", "", false, true)
}

// popFlash returns the pending message and clears it. gin escapes cookie
// values on both ends.
func (h *BaseHandler) popFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return raw
}

// HandleError renders err on page name. Validation failures come back as
// 400 with the form as entered; pawn-api failures keep their message.
// Session expiry redirects to the login page.
func (h *BaseHandler) HandleError(c *gin.Context, err error, name string, p view.Page) {
	if err == nil {
		return
	}
	log := logger.GetGinLogger(c)

	if errors.Is(err, pawnapi.ErrSessionExpired) {
		h.redirect(c, "/login")
		return
	}
	if errors.Is(err, context.Canceled) {
		log.Debug("Request canceled", zap.Error(err))
		c.AbortWithStatus(StatusClientClosed)
		return
	}

	var (
		validation shared.ValidationErrors
		missing    *customer.MissingFieldsError
		apiErr     *pawnapi.APIError
		netErr     *pawnapi.NetworkError
		domainErr  *shared.DomainError
	)
	switch {
	case errors.As(err, &validation):
		p.Errors = validation
		h.render(c, http.StatusBadRequest, name, p)
	case errors.As(err, &missing):
		p.Error = missing.Error()
		h.render(c, http.StatusBadRequest, name, p)
	case errors.As(err, &apiErr):
		p.Error = apiErr.Message
		h.render(c, upstreamStatus(apiErr.Status), name, p)
	case errors.As(err, &netErr):
		p.Error = netErr.Error()
		h.render(c, dto.GetHTTPStatus(dto.ErrCodeUpstreamUnreachable), name, p)
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("Request timed out", zap.Error(err))
		p.Error = "The request timed out. Please try again."
		h.render(c, http.StatusGatewayTimeout, name, p)
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		p.Error = domainErr.Message
		h.render(c, dto.GetHTTPStatus(code), name, p)
	default:
		log.Error("Unhandled error", zap.Error(err))
		p.Error = "An unexpected error occurred"
		h.render(c, http.StatusInternalServerError, name, p)
	}
}

// errorText is the message shown where a section failed to load, or "".
// Session expiry is not handled here; callers check it first.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *pawnapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var netErr *pawnapi.NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "An unexpected error occurred"
}

// upstreamStatus maps a pawn-api reply status onto the console response.
func upstreamStatus(status int) int {
	switch {
	case status == http.StatusNotFound:
		return http.StatusNotFound
	case status >= 400 && status < 500:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// bind binds the form or query into obj and converts binding failures to
// field messages.
func bind(c *gin.Context, obj any) error {
	if err := c.ShouldBind(obj); err != nil {
		return middleware.FieldErrors(err)
	}
	return nil
}

// expired reports whether err means the session is gone, and redirects.
func (h *BaseHandler) expired(c *gin.Context, err error) bool {
	if errors.Is(err, pawnapi.ErrSessionExpired) {
		h.redirect(c, "/login")
		return true
	}
	return false
}

// JSON helpers for the endpoints page scripts call

// Success sends a success envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// ErrorWithCode sends an error envelope, deriving the status from code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message))
}
