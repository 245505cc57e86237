package audit

import (
	"math"
	"sort"
)

// Category groups scoring rules
type Category string

const (
	CategorySEO         Category = "seo"
	CategoryPerformance Category = "performance"
	CategoryMobile      Category = "mobile"
)

// Issue is one failed rule and the points it cost
type Issue struct {
	Category Category `json:"category"`
	Code     string   `json:"code"`
	Points   int      `json:"points"`
}

// Result is the outcome of AnalyzeWebsite
type Result struct {
	SEO         int     `json:"seo"`
	Performance int     `json:"performance"`
	Mobile      int     `json:"mobile"`
	Overall     int     `json:"overall"`
	Grade       string  `json:"grade"`
	Issues      []Issue `json:"issues"`
}

// Issue codes. They double as i18n keys under audit.issue.
const (
	IssueMissingTitle           = "missing_title"
	IssueTitleLength            = "title_length"
	IssueMissingMetaDescription = "missing_meta_description"
	IssueMetaDescriptionLength  = "meta_description_length"
	IssueMissingH1              = "missing_h1"
	IssueMultipleH1             = "multiple_h1"
	IssueImagesWithoutAlt       = "images_without_alt"
	IssueMissingCanonical       = "missing_canonical"
	IssueMissingOpenGraph       = "missing_open_graph"
	IssueMissingStructuredData  = "missing_structured_data"
	IssueMissingLang            = "missing_lang"
	IssueNoIndex                = "noindex"
	IssueVerySlowResponse       = "very_slow_response"
	IssueSlowResponse           = "slow_response"
	IssueSluggishResponse       = "sluggish_response"
	IssueHugeHTML               = "huge_html"
	IssueLargeHTML              = "large_html"
	IssueTooManyScripts         = "too_many_scripts"
	IssueManyScripts            = "many_scripts"
	IssueManyExternalScripts    = "many_external_scripts"
	IssueManyInlineStyles       = "many_inline_styles"
	IssueNoHTTPS                = "no_https"
	IssueMissingViewport        = "missing_viewport"
	IssueTableLayout            = "table_layout"
	IssueFixedWidth             = "fixed_width"
	IssueSmallFont              = "small_font"
	IssueMissingPhoneLink       = "missing_phone_link"
	IssueMissingFavicon         = "missing_favicon"
)

type scorer struct {
	scores map[Category]int
	issues []Issue
}

func (s *scorer) deduct(cat Category, code string, points int) {
	if points <= 0 {
		return
	}
	s.scores[cat] -= points
	s.issues = append(s.issues, Issue{Category: cat, Code: code, Points: points})
}

// AnalyzeWebsite scores a page. Each category starts at 100 and loses points per failed rule.
func AnalyzeWebsite(m PageMetrics) Result {
	s := &scorer{scores: map[Category]int{
		CategorySEO:         100,
		CategoryPerformance: 100,
		CategoryMobile:      100,
	}}

	// SEO
	if m.Title == "" {
		s.deduct(CategorySEO, IssueMissingTitle, 20)
	} else if m.TitleLength < 10 || m.TitleLength > 60 {
		s.deduct(CategorySEO, IssueTitleLength, 5)
	}
	if m.MetaDescription == "" {
		s.deduct(CategorySEO, IssueMissingMetaDescription, 15)
	} else if m.MetaDescriptionLength < 50 || m.MetaDescriptionLength > 160 {
		s.deduct(CategorySEO, IssueMetaDescriptionLength, 5)
	}
	switch {
	case m.H1Count == 0:
		s.deduct(CategorySEO, IssueMissingH1, 10)
	case m.H1Count > 1:
		s.deduct(CategorySEO, IssueMultipleH1, 5)
	}
	if m.ImagesWithoutAlt > 0 {
		s.deduct(CategorySEO, IssueImagesWithoutAlt, min(10, 2*m.ImagesWithoutAlt))
	}
	if !m.HasCanonical {
		s.deduct(CategorySEO, IssueMissingCanonical, 5)
	}
	if !m.HasOpenGraph {
		s.deduct(CategorySEO, IssueMissingOpenGraph, 5)
	}
	if !m.HasStructuredData {
		s.deduct(CategorySEO, IssueMissingStructuredData, 10)
	}
	if !m.HasLangAttr {
		s.deduct(CategorySEO, IssueMissingLang, 5)
	}
	if m.NoIndex {
		s.deduct(CategorySEO, IssueNoIndex, 20)
	}

	// Performance
	switch {
	case m.ResponseTimeMs > 3000:
		s.deduct(CategoryPerformance, IssueVerySlowResponse, 30)
	case m.ResponseTimeMs > 1500:
		s.deduct(CategoryPerformance, IssueSlowResponse, 15)
	case m.ResponseTimeMs > 800:
		s.deduct(CategoryPerformance, IssueSluggishResponse, 5)
	}
	switch {
	case m.HTMLBytes > 500*1024:
		s.deduct(CategoryPerformance, IssueHugeHTML, 15)
	case m.HTMLBytes > 200*1024:
		s.deduct(CategoryPerformance, IssueLargeHTML, 5)
	}
	switch {
	case m.ScriptCount > 20:
		s.deduct(CategoryPerformance, IssueTooManyScripts, 15)
	case m.ScriptCount > 10:
		s.deduct(CategoryPerformance, IssueManyScripts, 5)
	}
	if m.ExternalScriptCount > 8 {
		s.deduct(CategoryPerformance, IssueManyExternalScripts, 10)
	}
	if m.InlineStyleCount > 10 {
		s.deduct(CategoryPerformance, IssueManyInlineStyles, 5)
	}
	if !m.HTTPS {
		s.deduct(CategoryPerformance, IssueNoHTTPS, 10)
	}

	// Mobile
	if !m.HasViewport {
		s.deduct(CategoryMobile, IssueMissingViewport, 40)
	}
	if m.UsesTablesForLayout {
		s.deduct(CategoryMobile, IssueTableLayout, 20)
	}
	if m.HasFixedWidth {
		s.deduct(CategoryMobile, IssueFixedWidth, 15)
	}
	if m.SmallFontDeclared {
		s.deduct(CategoryMobile, IssueSmallFont, 10)
	}
	if !m.HasPhoneLink {
		s.deduct(CategoryMobile, IssueMissingPhoneLink, 5)
	}
	if !m.HasFavicon {
		s.deduct(CategoryMobile, IssueMissingFavicon, 5)
	}

	r := Result{
		SEO:         clamp(s.scores[CategorySEO]),
		Performance: clamp(s.scores[CategoryPerformance]),
		Mobile:      clamp(s.scores[CategoryMobile]),
		Issues:      s.issues,
	}
	r.Overall = int(math.Round(0.4*float64(r.SEO) + 0.35*float64(r.Performance) + 0.25*float64(r.Mobile)))
	r.Grade = GradeFor(r.Overall)
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
	sort.SliceStable(r.Issues, func(i, j int) bool { return r.Issues[i].Points > r.Issues[j].Points })
	return r
}

// GradeFor maps an overall score to a letter
func GradeFor(overall int) string {
	switch {
	case overall >= 90:
		return "A"
	case overall >= 75:
		return "B"
	case overall >= 60:
		return "C"
	case overall >= 40:
		return "D"
	default:
		return "F"
	}
}

// TopIssues returns at most n issues, highest cost first
func (r Result) TopIssues(n int) []Issue {
	if n > len(r.Issues) {
		n = len(r.Issues)
	}
	return r.Issues[:n]
}

func clamp(v int) int {
	return max(0, min(100, v))
}
