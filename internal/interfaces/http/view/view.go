// Package view holds the console's HTML pages and static assets, embedded in
// the binary, and a gin HTML renderer that executes them inside the shared
// layout.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/pawnfin/console/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsFile = "templates/partials.html"
	rootTemplate = "layout"
)

// Page names, one per template file
const (
	PageLogin          = "login"
	PageCompany        = "company"
	PageHome           = "home"
	PageCustomerNew    = "customer_new"
	PageCustomerSearch = "customer_search"
	PageCustomerDetail = "customer_detail"
	PageNewLoan        = "new_loan"
	PageCloseLoan      = "close_loan"
	PageDeposits       = "deposits"
	PageDepositNew     = "deposit_new"
	PageDepositDetail  = "deposit_detail"
	PageLedger         = "ledger"
	PageVouchers       = "vouchers"
	PageSchemes        = "schemes"
	PageError          = "error"
)

// Page is what every template receives. Data carries the page-specific view
// model.
type Page struct {
	Title     string
	Active    string
	Shell     bool
	User      string
	Company   string
	Flash     string
	Error     string
	Errors    shared.ValidationErrors
	RequestID string
	Data      any
}

// ErrorLines splits a multi-line error for display
func (p Page) ErrorLines() []string {
	if p.Error == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(p.Error, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Renderer implements gin's render.HTMLRender over the embedded pages. Each
// page is parsed once, together with the layout and shared partials.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page with the template engine's functions plus
// the page helpers.
func NewRenderer(engine *printing.TemplateEngine) (*Renderer, error) {
	funcs := engine.GetFuncMap()
	maps.Copy(funcs, pageFuncs())

	base, err := template.New(rootTemplate).Funcs(funcs).ParseFS(templateFS, layoutFile, partialsFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		if f == layoutFile || f == partialsFile {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		tmpl, err := clone.ParseFS(templateFS, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[strings.TrimSuffix(path.Base(f), ".html")] = tmpl
	}
	return r, nil
}

// MustRenderer is NewRenderer that panics on a template error
func MustRenderer(engine *printing.TemplateEngine) *Renderer {
	r, err := NewRenderer(engine)
	if err != nil {
		panic(err)
	}
	return r
}

// Instance implements render.HTMLRender
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		tmpl = r.pages[PageError]
		if p, isPage := data.(Page); isPage {
			p.Error = "Unknown page " + name
			data = p
		}
	}
	return render.HTML{Template: tmpl, Name: rootTemplate, Data: data}
}

// Has reports whether a page with name exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Static returns the embedded assets, rooted so /static/console.css maps to console.css.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func pageFuncs() template.FuncMap {
	return template.FuncMap{
		"rupees": func(v int64) string {
			return printing.FormatINR(decimal.NewFromInt(v))
		},
		"nullINR": func(v shared.Number) string {
			if !v.Valid {
				return "-"
			}
			return printing.FormatINR(v.Decimal)
		},
		"nullPct": func(v shared.Number) string {
			if !v.Valid {
				return "-"
			}
			return v.Decimal.Round(4).String() + "%"
		},
		"loanType":   loan.TypeLabel,
		"pathEscape": url.PathEscape,
		"hasJewels": func(raw string) bool {
			t, ok := loan.ParseType(raw)
			return ok && t.HasJewels()
		},
		"negative": func(v int64) bool { return v < 0 },
	}
}
