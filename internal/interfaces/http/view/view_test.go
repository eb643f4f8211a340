package view

import (
	"io/fs"
	"net/http/httptest"
	"testing"

	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/pawnfin/console/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(printing.NewTemplateEngine())
	require.NoError(t, err)
	return r
}

func renderPage(t *testing.T, r *Renderer, name string, p Page) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, p).Render(w))
	return w.Body.String()
}

func TestNewRenderer_ParsesEveryPage(t *testing.T) {
	r := newTestRenderer(t)
	for _, name := range []string{
		PageLogin, PageCompany, PageHome, PageCustomerNew, PageCustomerSearch,
		PageCustomerDetail, PageNewLoan, PageCloseLoan, PageDeposits, PageDepositNew,
		PageDepositDetail, PageLedger, PageVouchers, PageSchemes, PageError,
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("layout"))
	assert.False(t, r.Has("partials"))
}

func TestRenderer_LoginIsBare(t *testing.T) {
	r := newTestRenderer(t)
	body := renderPage(t, r, PageLogin, Page{
		Title: "Login",
		Error: "Please enter both username and password.",
		Data:  struct{ Username string }{"ravi"},
	})

	assert.Contains(t, body, `<body class="bare">`)
	assert.Contains(t, body, `value="ravi"`)
	assert.Contains(t, body, "Please enter both username and password.")
	assert.NotContains(t, body, "Control Panel")
}

func TestRenderer_ShellShowsSessionAndActiveLink(t *testing.T) {
	r := newTestRenderer(t)
	body := renderPage(t, r, PageHome, Page{
		Title:   "Home",
		Active:  "home",
		Shell:   true,
		User:    "ravi",
		Company: "Sri Lakshmi Bankers",
	})

	assert.Contains(t, body, "Control Panel")
	assert.Contains(t, body, `<a href="/" class="active">Dashboard / Home</a>`)
	assert.Contains(t, body, "Logged in as <strong>ravi</strong>")
	assert.Contains(t, body, "Sri Lakshmi Bankers")
}

func TestRenderer_EscapesUserInput(t *testing.T) {
	r := newTestRenderer(t)
	body := renderPage(t, r, PageLogin, Page{Data: struct{ Username string }{`"><script>alert(1)</script>`}})

	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestRenderer_MissingFieldsAreListed(t *testing.T) {
	r := newTestRenderer(t)
	body := renderPage(t, r, PageError, Page{
		Error: "Please fill the following mandatory fields before saving:\n\n- Name\n- Photo",
	})

	assert.Contains(t, body, "<div>- Name</div>")
	assert.Contains(t, body, "<div>- Photo</div>")
}

func TestRenderer_UnknownPageFallsBackToError(t *testing.T) {
	r := newTestRenderer(t)
	body := renderPage(t, r, "nope", Page{Title: "Oops"})

	assert.Contains(t, body, "Unknown page nope")
}

func TestRenderer_ValidationErrorsShownOnTop(t *testing.T) {
	r := newTestRenderer(t)
	body := renderPage(t, r, PageError, Page{Errors: shared.NewValidationError("amount", "Amount is required.")})

	assert.Contains(t, body, "<div>Amount is required.</div>")
	assert.Nil(t, Page{}.ErrorLines())
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"console.css", "console.js"} {
		b, err := fs.ReadFile(Static(), name)
		require.NoError(t, err)
		assert.NotEmpty(t, b)
	}
}
