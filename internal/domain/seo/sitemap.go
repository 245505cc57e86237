package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

// Alternate is an hreflang link to a translation of a page
type Alternate struct {
	Hreflang string `xml:"hreflang,attr" json:"hreflang"`
	Href     string `xml:"href,attr" json:"href"`
}

type sitemapLink struct {
	Rel string `xml:"rel,attr"`
	Alternate
}

// SitemapURL is one <url> entry
type SitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	Alternates []sitemapLink `xml:"xhtml:link"`
}

// URLSet is the sitemap document
type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []SitemapURL `xml:"url"`
}

func NewURLSet() *URLSet {
	return &URLSet{Xmlns: sitemapNS, XHTML: xhtmlNS}
}

// Add appends a page. A zero lastMod is omitted.
func (s *URLSet) Add(loc string, lastMod time.Time, alternates []Alternate) {
	u := SitemapURL{Loc: loc}
	if !lastMod.IsZero() {
		u.LastMod = lastMod.UTC().Format("2006-01-02")
	}
	for _, a := range alternates {
		u.Alternates = append(u.Alternates, sitemapLink{Rel: "alternate", Alternate: a})
	}
	s.URLs = append(s.URLs, u)
}

func (s *URLSet) Len() int {
	return len(s.URLs)
}

// Marshal renders the sitemap with an XML declaration
func (s *URLSet) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Robots builds robots.txt for the site
func Robots(baseURL string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin\n")
	b.WriteString("Disallow: /api\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n")
	return b.String()
}
