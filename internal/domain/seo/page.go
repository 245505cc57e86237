package seo

import (
	"strings"
	"unicode/utf8"

	"github.com/webstudio/backend/internal/domain/shared"
)

const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 160
	RelatedCityLimit     = 5
)

// LandingPage is a service page targeted at one city
type LandingPage struct {
	Locale          shared.Locale
	ServiceSlug     string
	ServiceTitle    string
	CitySlug        string
	CityName        string
	Title           string
	MetaDescription string
	H1              string
	Intro           string
	Body            string
	CTA             string
	Canonical       string
	Alternates      []Alternate
	FAQ             []FAQ
	Related         []RelatedLink
	JSONLD          string
}

// RelatedLink points to the same service in another city
type RelatedLink struct {
	CitySlug string
	CityName string
	URL      string
}

// LandingRef identifies a landing page in listings and sitemaps
type LandingRef struct {
	Locale      shared.Locale
	ServiceSlug string
	CitySlug    string
	Title       string
	URL         string
}

// PageTitle joins parts with " | " and trims the result to 60 characters
func PageTitle(main, suffix string) string {
	title := strings.TrimSpace(main)
	if suffix != "" {
		title += " | " + suffix
	}
	return strings.TrimRight(TrimAtWord(title, MaxTitleLength), " |-")
}

// MetaDescription collapses whitespace and caps the text at 160 characters
func MetaDescription(s string) string {
	return TrimAtWord(strings.Join(strings.Fields(s), " "), MaxDescriptionLength)
}

// TrimAtWord shortens s to at most max runes, cutting at the last space when there is one
func TrimAtWord(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:")
}

// URL helpers. base has no trailing slash.

func HomeURL(base string, locale shared.Locale) string {
	return base + "/" + locale.String()
}

func ServiceURL(base string, locale shared.Locale, service string) string {
	return HomeURL(base, locale) + "/" + service
}

func LandingURL(base string, locale shared.Locale, service, city string) string {
	return ServiceURL(base, locale, service) + "/" + city
}

func BlogURL(base string, locale shared.Locale) string {
	return HomeURL(base, locale) + "/blog"
}

func PostURL(base string, locale shared.Locale, slug string) string {
	return BlogURL(base, locale) + "/" + slug
}

// Alternates builds hreflang links for the given locales. The default locale
// also gets x-default when present.
func Alternates(locales []shared.Locale, urlFor func(shared.Locale) string) []Alternate {
	out := make([]Alternate, 0, len(locales)+1)
	hasDefault := false
	for _, l := range shared.SupportedLocales {
		if !containsLocale(locales, l) {
			continue
		}
		out = append(out, Alternate{Hreflang: l.String(), Href: urlFor(l)})
		if l == shared.DefaultLocale {
			hasDefault = true
		}
	}
	if hasDefault {
		out = append(out, Alternate{Hreflang: "x-default", Href: urlFor(shared.DefaultLocale)})
	}
	return out
}

func containsLocale(list []shared.Locale, l shared.Locale) bool {
	for _, v := range list {
		if v == l {
			return true
		}
	}
	return false
}
