package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pawnfin/console/internal/domain/session"
)

// ShellKey is set to true when the page renders inside the navigation shell
const ShellKey = "in_shell"

// GuardConfig lists paths the guard lets through untouched
type GuardConfig struct {
	// PublicPrefixes are never guarded: static assets, health checks
	PublicPrefixes []string
}

// RouteGuard applies the login, company, app sequence to every request.
// It must run after SessionLoader.
//
// Redirects use 303 so a guarded POST is re-requested as GET.
func RouteGuard(cfg GuardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range cfg.PublicPrefixes {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		stage := session.StageOf(GetSession(c).State(), GetSessionLoadError(c))
		decision := session.Decide(stage, path)
		switch {
		case decision.Blank:
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		case decision.Redirect != "":
			c.Redirect(http.StatusSeeOther, decision.Redirect)
			c.Abort()
			return
		}
		c.Set(ShellKey, decision.Shell)
		c.Next()
	}
}

// InShell reports whether the guard placed this page inside the shell
func InShell(c *gin.Context) bool {
	return c.GetBool(ShellKey)
}
