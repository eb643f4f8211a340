package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/infrastructure/config"
	"github.com/pawnfin/console/internal/infrastructure/sessionstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSID = "0b9e4a4e-3d5c-4a53-9f0c-1f4c2f7a9a11"

type failingStore struct{ session.Store }

func (failingStore) Load(context.Context, string) (session.State, error) {
	return session.State{}, errors.New("redis: connection refused")
}

func newGuardedRouter(t *testing.T, store session.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionLoader(store, SessionConfig{Cookie: config.CookieConfig{Path: "/"}}, nil))
	r.Use(RouteGuard(GuardConfig{PublicPrefixes: []string{"/static/", "/healthz"}}))
	page := func(c *gin.Context) {
		if InShell(c) {
			c.String(http.StatusOK, "shell:"+GetSession(c).CompanyID())
			return
		}
		c.String(http.StatusOK, "bare")
	}
	for _, p := range []string{"/", "/login", "/company", "/customers/search", "/ledger", "/healthz", "/static/console.css"} {
		r.GET(p, page)
	}
	r.POST("/logout", page)
	r.POST("/customers/new", page)
	return r
}

func get(r http.Handler, method, path string, cookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie {
		req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: testSID})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionLoader_IssuesCookie(t *testing.T) {
	store := sessionstore.NewMemoryStore(time.Hour, time.Minute)
	defer store.Close()
	r := newGuardedRouter(t, store)

	w := get(r, http.MethodGet, "/login", false)
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultSessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Len(t, cookies[0].Value, 36)

	w = get(r, http.MethodGet, "/login", true)
	assert.Empty(t, w.Result().Cookies(), "a valid cookie is not reissued")
}

func TestSessionLoader_InvalidCookieGetsFreshID(t *testing.T) {
	store := sessionstore.NewMemoryStore(time.Hour, time.Minute)
	defer store.Close()
	r := newGuardedRouter(t, store)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "../../etc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "../../etc", w.Result().Cookies()[0].Value)
}

func TestSessionLoader_LoginRotatesID(t *testing.T) {
	store := sessionstore.NewMemoryStore(time.Hour, time.Minute)
	defer store.Close()
	require.NoError(t, store.Save(context.Background(), testSID, session.State{}))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionLoader(store, SessionConfig{Cookie: config.CookieConfig{Path: "/"}}, nil))
	r.POST("/login", func(c *gin.Context) {
		if err := GetSession(c).SetToken(c.Request.Context(), "tok-1"); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Redirect(http.StatusSeeOther, "/company")
	})

	w := get(r, http.MethodPost, "/login", true)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultSessionCookie, cookies[0].Name)
	assert.NotEqual(t, testSID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	st, err := store.Load(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", st.Token)

	_, err = store.Load(context.Background(), testSID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRouteGuard(t *testing.T) {
	tests := []struct {
		name     string
		state    *session.State
		method   string
		path     string
		wantCode int
		wantLoc  string
		wantBody string
	}{
		{"anonymous home redirects to login", nil, http.MethodGet, "/", http.StatusSeeOther, "/login", ""},
		{"anonymous login renders bare", nil, http.MethodGet, "/login", http.StatusOK, "", "bare"},
		{"anonymous logout allowed", nil, http.MethodPost, "/logout", http.StatusOK, "", "bare"},
		{"anonymous post redirected with 303", nil, http.MethodPost, "/customers/new", http.StatusSeeOther, "/login", ""},
		{"no company goes to company", &session.State{Token: "t"}, http.MethodGet, "/ledger", http.StatusSeeOther, "/company", ""},
		{"no company may search", &session.State{Token: "t"}, http.MethodGet, "/customers/search", http.StatusOK, "", "shell:"},
		{"no company picker", &session.State{Token: "t"}, http.MethodGet, "/company", http.StatusOK, "", "bare"},
		{"ready renders in shell", &session.State{Token: "t", CompanyID: "c1"}, http.MethodGet, "/ledger", http.StatusOK, "", "shell:c1"},
		{"static bypasses guard", nil, http.MethodGet, "/static/console.css", http.StatusOK, "", "bare"},
		{"health bypasses guard", nil, http.MethodGet, "/healthz", http.StatusOK, "", "bare"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := sessionstore.NewMemoryStore(time.Hour, time.Minute)
			defer store.Close()
			if tt.state != nil {
				require.NoError(t, store.Save(context.Background(), testSID, *tt.state))
			}
			r := newGuardedRouter(t, store)

			w := get(r, tt.method, tt.path, true)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRouteGuard_StoreFailureRendersNothing(t *testing.T) {
	r := newGuardedRouter(t, failingStore{})

	w := get(r, http.MethodGet, "/login", true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Body.String())

	w = get(r, http.MethodGet, "/healthz", true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetSession_WithoutLoader(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	sess := GetSession(c)
	require.NotNil(t, sess)
	assert.False(t, sess.State().Authenticated())
	assert.NoError(t, GetSessionLoadError(c))
}
