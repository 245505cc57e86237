package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/i18n"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var documentFS embed.FS

// Embedded document templates
const (
	TemplateInvoice       = "invoice.html"
	TemplateAuditReport   = "audit_report.html"
	TemplateOutreachEmail = "outreach_email.html"
)

type templateSource struct {
	fsys     fs.FS
	patterns []string
}

// TemplateEngine executes html/templates with locale-aware helpers.
// All templates are parsed once at construction.
type TemplateEngine struct {
	bundle  *i18n.Bundle
	funcMap template.FuncMap
	sources []templateSource
	set     *template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithTemplates adds templates from fsys matching the glob patterns
func WithTemplates(fsys fs.FS, patterns ...string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.sources = append(e.sources, templateSource{fsys: fsys, patterns: patterns})
	}
}

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine parses the embedded document templates plus any added with WithTemplates
func NewTemplateEngine(bundle *i18n.Bundle, opts ...TemplateEngineOption) (*TemplateEngine, error) {
	if bundle == nil {
		return nil, fmt.Errorf("template engine needs a translation bundle")
	}
	e := &TemplateEngine{
		bundle:  bundle,
		sources: []templateSource{{fsys: documentFS, patterns: []string{"templates/*.html"}}},
	}
	e.funcMap = e.baseFuncs()

	for _, opt := range opts {
		opt(e)
	}

	set := template.New("").Funcs(e.funcMap)
	for _, src := range e.sources {
		for _, pattern := range src.patterns {
			if _, err := set.ParseFS(src.fsys, pattern); err != nil {
				return nil, fmt.Errorf("failed to parse templates %s: %w", pattern, err)
			}
		}
	}
	e.set = set
	return e, nil
}

// Has reports whether a template with the given name was parsed
func (e *TemplateEngine) Has(name string) bool {
	return e.set.Lookup(name) != nil
}

// Render executes a parsed template by name
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	tmpl := e.set.Lookup(name)
	if tmpl == nil {
		return "", NewRenderError(CodeNoTemplate, "template not found: "+name, nil)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(CodeFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

// RenderString parses and executes an ad-hoc template with the engine's functions
func (e *TemplateEngine) RenderString(name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(CodeBadInput, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(CodeBadInput, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(CodeFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// FuncMap returns a copy of the template function map
func (e *TemplateEngine) FuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

func (e *TemplateEngine) baseFuncs() template.FuncMap {
	return template.FuncMap{
		// translation and locale formatting
		"t":      e.translate,
		"money":  formatMoney,
		"number": formatNumber,
		"date":   formatDate,

		"formatDecimal": formatDecimal,
		"formatPercent": formatPercent,
		"isoDate":       isoDate,

		"truncate":  truncate,
		"join":      strings.Join,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"title":     titleCase,
		"trim":      strings.TrimSpace,
		"hasPrefix": strings.HasPrefix,
		"nl2br":     nl2br,
		"markdown":  markdown,

		"add": add,
		"sub": sub,
		"mul": mul,
		"seq": seq,

		"default": defaultFunc,
		"empty":   empty,
		"dict":    dict,
		"list":    list,

		"scoreClass": scoreClass,

		"safeHTML": safeHTML,
		"safeJS":   safeJS,
		"safeURL":  safeURL,

		"now": time.Now,
	}
}

// translate is {{t .Locale "key" "name" value ...}}
func (e *TemplateEngine) translate(locale any, key string, pairs ...any) string {
	loc := toLocale(locale)
	if len(pairs) == 0 {
		return e.bundle.T(loc, key)
	}
	args := i18n.Args{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			args[k] = pairs[i+1]
		}
	}
	return e.bundle.T(loc, key, args)
}

func toLocale(v any) shared.Locale {
	switch l := v.(type) {
	case shared.Locale:
		return l
	case string:
		return shared.LocaleOrDefault(l)
	default:
		return shared.DefaultLocale
	}
}

func formatMoney(locale any, amount any, currency any) string {
	return i18n.FormatMoney(toDecimal(amount), fmt.Sprint(currency), toLocale(locale))
}

func formatNumber(locale any, v any) string {
	return i18n.FormatNumber(toDecimal(v), toLocale(locale))
}

func formatDate(locale any, v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return i18n.FormatDate(t, toLocale(locale))
}

func isoDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDecimal(v any, precision int) string {
	return toDecimal(v).StringFixed(int32(precision))
}

// formatPercent prints a rate that is already in percent, e.g. 21 -> "21 %"
func formatPercent(v any) string {
	return toDecimal(v).String() + " %"
}

// truncate shortens to max runes including the suffix
func truncate(s string, max int, suffix ...string) string {
	suf := "…"
	if len(suffix) > 0 {
		suf = suffix[0]
	}
	runes := []rune(s)
	sufRunes := []rune(suf)
	if len(runes) <= max {
		return s
	}
	if max <= len(sufRunes) {
		return string(sufRunes[:max])
	}
	return string(runes[:max-len(sufRunes)]) + suf
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// nl2br escapes s and turns newlines into <br>
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.TrimSpace(s))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func add(a, b any) decimal.Decimal { return toDecimal(a).Add(toDecimal(b)) }
func sub(a, b any) decimal.Decimal { return toDecimal(a).Sub(toDecimal(b)) }
func mul(a, b any) decimal.Decimal { return toDecimal(a).Mul(toDecimal(b)) }

// seq returns 0..n-1
func seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

func empty(v any) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	case bool:
		return !val
	case decimal.Decimal:
		return val.IsZero()
	case *time.Time:
		return val == nil
	}
	return false
}

func defaultFunc(val, def any) any {
	if empty(val) {
		return def
	}
	return val
}

func dict(pairs ...any) map[string]any {
	result := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			result[key] = pairs[i+1]
		}
	}
	return result
}

func list(vals ...any) []any {
	return vals
}

// scoreClass maps a 0-100 score to a CSS class
func scoreClass(score int) string {
	switch {
	case score >= 75:
		return "good"
	case score >= 50:
		return "warn"
	default:
		return "bad"
	}
}

// safeHTML marks trusted markup. Never pass user input.
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

// safeJS marks trusted script content such as encoded JSON-LD
func safeJS(s string) template.JS {
	return template.JS(s)
}

func safeURL(s string) template.URL {
	return template.URL(s)
}

func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int32:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		for _, f := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(f, val); err == nil {
				return t
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
