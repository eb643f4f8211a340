package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DisplayDateLayout is how dates are shown to staff (dd-mm-yyyy).
const DisplayDateLayout = "02-01-2006"

var (
	indianEnglish = language.MustParse("en-IN")
	titleCaser    = cases.Title(language.English)
)

// TemplateEngine renders HTML templates with the console's formatting
// functions. It is shared by the ticket printer and the page views.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a template engine
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{funcMap: template.FuncMap{
		"formatINR":      FormatINR,
		"formatAmount":   FormatAmount,
		"formatPct":      formatPct,
		"formatWeight":   formatWeight,
		"formatDate":     FormatDate,
		"formatDateTime": formatDateTime,
		"title":          titleCase,
		"upper":          strings.ToUpper,
		"trim":           strings.TrimSpace,
		"join":           strings.Join,
		"default":        defaultFunc,
		"isPositive":     isPositive,
		"add":            func(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) },
		"dict":           dict,
		"now":            time.Now,
	}}
}

// Parse parses a named template with the engine's functions
func (e *TemplateEngine) Parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(text)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse template "+name, err)
	}
	return tmpl, nil
}

// Execute renders tmpl with data into a string
func (e *TemplateEngine) Execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// FormatAmount groups digits the Indian way (12,34,567.5), at most two decimals.
func FormatAmount(v decimal.Decimal) string {
	p := message.NewPrinter(indianEnglish)
	return p.Sprintf("%v", number.Decimal(v.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// FormatINR is FormatAmount with the rupee sign
func FormatINR(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-₹" + FormatAmount(v.Abs())
	}
	return "₹" + FormatAmount(v)
}

func formatPct(v decimal.Decimal) string {
	return v.Round(4).String() + "%"
}

func formatWeight(s string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return d.StringFixed(2) + " g"
}

// FormatDate renders an ISO date or timestamp as dd-mm-yyyy. Anything that
// does not parse is returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, ok := parseTime(s); ok {
		return t.Format(DisplayDateLayout)
	}
	return s
}

func formatDateTime(s string) string {
	t, ok := parseTime(strings.TrimSpace(s))
	if !ok {
		return s
	}
	return t.Local().Format(DisplayDateLayout + " 15:04")
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if len(s) > 10 {
		if t, err := time.Parse(time.DateOnly, s[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func titleCase(s string) string {
	return titleCaser.String(strings.ToLower(s))
}

func defaultFunc(def, v any) any {
	switch t := v.(type) {
	case nil:
		return def
	case string:
		if strings.TrimSpace(t) == "" {
			return def
		}
	}
	return v
}

func isPositive(v decimal.Decimal) bool {
	return v.IsPositive()
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}
