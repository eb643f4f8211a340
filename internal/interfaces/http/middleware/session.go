package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/infrastructure/config"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Gin context keys set by SessionLoader
const (
	SessionKey        = "session"
	SessionLoadErrKey = "session_load_err"
	companyIDKey      = "company_id"
)

// DefaultSessionCookie is used when session.cookie_name is unset
const DefaultSessionCookie = "pf_session"

// SessionConfig configures SessionLoader
type SessionConfig struct {
	CookieName string
	Cookie     config.CookieConfig
}

// SessionLoader reads the session cookie, loads the state from store and
// puts a *session.Handle on the context. Browsers without a valid cookie get
// a fresh id and an empty state. Other store failures are kept on the
// context so the guard can refuse to render anything. When login rotates the
// session id the cookie is reissued.
func SessionLoader(store session.Store, cfg SessionConfig, log *zap.Logger) gin.HandlerFunc {
	name := cfg.CookieName
	if name == "" {
		name = DefaultSessionCookie
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		id, fresh := sessionID(c, name)
		if fresh {
			setSessionCookie(c, name, id, cfg.Cookie)
		}

		var state session.State
		if !fresh {
			loaded, err := store.Load(c.Request.Context(), id)
			switch {
			case err == nil:
				state = loaded
			case errors.Is(err, session.ErrNotFound):
			default:
				logger.GetGinLogger(c).Error("Failed to load session", zap.Error(err))
				c.Set(SessionLoadErrKey, err)
			}
		}

		sess := session.NewHandle(store, id, state)
		sess.OnRotate(func(next string) {
			setSessionCookie(c, name, next, cfg.Cookie)
		})
		c.Set(SessionKey, sess)

		if companyID := state.CompanyID; companyID != "" {
			c.Set(companyIDKey, companyID)
			ctx, l := logger.WithCompanyID(c.Request.Context(), logger.GetGinLogger(c), companyID)
			c.Request = c.Request.WithContext(ctx)
			logger.SetGinLogger(c, l)
		}
		c.Next()
	}
}

func sessionID(c *gin.Context, name string) (string, bool) {
	raw, err := c.Cookie(name)
	if err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			return id.String(), false
		}
	}
	return uuid.NewString(), true
}

func setSessionCookie(c *gin.Context, name, id string, cfg config.CookieConfig) {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     path,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: sameSite(cfg.SameSite),
	})
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// GetSession returns the handle set by SessionLoader. It never returns nil
// so handlers mounted without the loader (tests) still work.
func GetSession(c *gin.Context) *session.Handle {
	if v, ok := c.Get(SessionKey); ok {
		if h, ok := v.(*session.Handle); ok {
			return h
		}
	}
	return session.NewHandle(nopStore{}, "", session.State{})
}

// GetSessionLoadError returns the store error recorded by SessionLoader
func GetSessionLoadError(c *gin.Context) error {
	if v, ok := c.Get(SessionLoadErrKey); ok {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// GetCompanyID returns the company selected for this request, if any
func GetCompanyID(c *gin.Context) string {
	return c.GetString(companyIDKey)
}

type nopStore struct{}

func (nopStore) Load(_ context.Context, _ string) (session.State, error) {
	return session.State{}, session.ErrNotFound
}
func (nopStore) Save(_ context.Context, _ string, _ session.State) error { return nil }
func (nopStore) Delete(_ context.Context, _ string) error                { return nil }
func (nopStore) Close() error                                            { return nil }
