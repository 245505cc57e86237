// Package webfetch loads prospect websites and extracts the facts the audit analyzer scores.
package webfetch

import (
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/webstudio/backend/internal/domain/audit"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	widthPattern    = regexp.MustCompile(`(?i)(?:^|[;{\s])(?:min-)?width\s*:\s*(\d{3,5})px`)
	fontSizePattern = regexp.MustCompile(`(?i)font-size\s*:\s*(\d+(?:\.\d+)?)px`)
)

const (
	// widths at or above this many pixels do not fit a phone screen
	fixedWidthPx = 900
	smallFontPx  = 12.0
	// tables declared wider than this are treated as page grids
	layoutTableWidth = 600
)

// Extract parses an HTML document and fills the structural facts of PageMetrics.
// Transport facts (status, timing, size, HTTPS) are left to the caller.
func Extract(r io.Reader, pageURL *url.URL) (audit.PageMetrics, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return audit.PageMetrics{}, err
	}

	e := &extractor{page: pageURL}
	e.walk(doc, 0)

	m := e.m
	m.Title = strings.TrimSpace(m.Title)
	m.TitleLength = len([]rune(m.Title))
	m.MetaDescription = strings.TrimSpace(m.MetaDescription)
	m.MetaDescriptionLength = len([]rune(m.MetaDescription))
	m.WordCount = e.words
	return m, nil
}

type extractor struct {
	page       *url.URL
	m          audit.PageMetrics
	words      int
	titleSeen  bool
	tableDepth int
}

func (e *extractor) walk(n *html.Node, depth int) {
	if depth > 256 {
		return
	}

	switch n.Type {
	case html.ElementNode:
		if skip := e.element(n); skip {
			return
		}
	case html.TextNode:
		if inBody(n) {
			e.words += len(strings.Fields(n.Data))
		}
	}

	isTable := n.Type == html.ElementNode && n.DataAtom == atom.Table
	if isTable {
		e.tableDepth++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.walk(c, depth+1)
	}
	if isTable {
		e.tableDepth--
	}
}

// element records facts for one tag and reports whether its children should be skipped
func (e *extractor) element(n *html.Node) bool {
	if style := attr(n, "style"); style != "" {
		e.m.InlineStyleCount++
		e.inspectCSS(style)
	}

	switch n.DataAtom {
	case atom.Html:
		if strings.TrimSpace(attr(n, "lang")) != "" {
			e.m.HasLangAttr = true
		}
	case atom.Title:
		if !e.titleSeen && n.FirstChild != nil {
			e.m.Title = textContent(n)
			e.titleSeen = true
		}
		return true
	case atom.Meta:
		e.meta(n)
	case atom.Link:
		e.link(n)
	case atom.Script:
		e.script(n)
		return true
	case atom.Style:
		e.inspectCSS(textContent(n))
		return true
	case atom.Noscript, atom.Template:
		return true
	case atom.H1:
		e.m.H1Count++
	case atom.Img:
		e.m.ImageCount++
		if _, ok := attrOK(n, "alt"); !ok {
			e.m.ImagesWithoutAlt++
		}
	case atom.A:
		e.anchor(n)
	case atom.Form:
		if isContactForm(n) {
			e.m.HasContactForm = true
		}
	case atom.Table:
		if e.tableDepth > 0 || strings.EqualFold(attr(n, "role"), "presentation") {
			e.m.UsesTablesForLayout = true
		} else if w, err := strconv.Atoi(strings.TrimSuffix(attr(n, "width"), "px")); err == nil && w >= layoutTableWidth {
			e.m.UsesTablesForLayout = true
		}
	}
	if _, ok := attrOK(n, "itemscope"); ok {
		e.m.HasStructuredData = true
	}
	return false
}

func (e *extractor) meta(n *html.Node) {
	name := strings.ToLower(attr(n, "name"))
	property := strings.ToLower(attr(n, "property"))
	content := attr(n, "content")

	switch {
	case name == "description" && e.m.MetaDescription == "":
		e.m.MetaDescription = content
	case name == "viewport":
		e.m.HasViewport = strings.Contains(strings.ToLower(content), "width=")
	case name == "robots" || name == "googlebot":
		if strings.Contains(strings.ToLower(content), "noindex") {
			e.m.NoIndex = true
		}
	case strings.HasPrefix(property, "og:"):
		e.m.HasOpenGraph = true
	}
}

func (e *extractor) link(n *html.Node) {
	for _, rel := range strings.Fields(strings.ToLower(attr(n, "rel"))) {
		switch rel {
		case "canonical":
			e.m.HasCanonical = attr(n, "href") != ""
		case "stylesheet":
			e.m.StylesheetCount++
		case "icon", "apple-touch-icon":
			e.m.HasFavicon = true
		}
	}
}

func (e *extractor) script(n *html.Node) {
	if strings.EqualFold(attr(n, "type"), "application/ld+json") {
		e.m.HasStructuredData = true
		return
	}
	e.m.ScriptCount++
	if src := attr(n, "src"); src != "" && e.isExternal(src) {
		e.m.ExternalScriptCount++
	}
}

func (e *extractor) anchor(n *html.Node) {
	href := strings.TrimSpace(attr(n, "href"))
	lower := strings.ToLower(href)
	switch {
	case href == "", strings.HasPrefix(href, "#"), strings.HasPrefix(lower, "javascript:"), strings.HasPrefix(lower, "mailto:"):
		return
	case strings.HasPrefix(lower, "tel:"):
		e.m.HasPhoneLink = true
		return
	}
	if e.isExternal(href) {
		e.m.ExternalLinks++
	} else {
		e.m.InternalLinks++
	}
}

func (e *extractor) isExternal(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return false
	}
	if e.page == nil {
		return true
	}
	return !sameSite(u.Hostname(), e.page.Hostname())
}

func (e *extractor) inspectCSS(css string) {
	for _, m := range widthPattern.FindAllStringSubmatch(css, -1) {
		if w, err := strconv.Atoi(m[1]); err == nil && w >= fixedWidthPx {
			e.m.HasFixedWidth = true
		}
	}
	for _, m := range fontSizePattern.FindAllStringSubmatch(css, -1) {
		if size, err := strconv.ParseFloat(m[1], 64); err == nil && size > 0 && size < smallFontPx {
			e.m.SmallFontDeclared = true
		}
	}
}

// sameSite treats www.example.cz and example.cz as one site
func sameSite(a, b string) bool {
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	return a == b
}

func isContactForm(form *html.Node) bool {
	found := false
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Textarea:
				found = true
				return
			case atom.Input:
				switch strings.ToLower(attr(n, "type")) {
				case "email", "tel":
					found = true
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(form)
	return found
}

func inBody(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.Body {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
