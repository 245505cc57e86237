package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/shared"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	cz := c.Cities(CountryCZ)
	de := c.Cities(CountryDE)
	require.NotEmpty(t, cz)
	require.NotEmpty(t, de)
	assert.Len(t, c.Cities(), len(cz)+len(de))
	assert.Equal(t, "praha", cz[0].Slug)
	assert.Equal(t, "berlin", de[0].Slug)

	for i := 1; i < len(cz); i++ {
		assert.GreaterOrEqual(t, cz[i-1].Population, cz[i].Population)
	}
}

func TestCatalog_City(t *testing.T) {
	c := DefaultCatalog()

	brno, err := c.City("brno")
	require.NoError(t, err)
	assert.Equal(t, "Brünn", brno.Name(shared.LocaleDE))
	assert.Equal(t, "Brno", brno.Name(shared.LocaleCS))
	assert.Equal(t, "Jihomoravský kraj", brno.RegionName(shared.LocaleCS))

	_, err = c.City("atlantis")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCatalog_ForLocale(t *testing.T) {
	c := DefaultCatalog()

	for _, city := range c.ForLocale(shared.LocaleCS) {
		assert.Equal(t, CountryCZ, city.Country)
	}
	for _, city := range c.ForLocale(shared.LocaleDE) {
		assert.Equal(t, CountryDE, city.Country)
	}
	assert.Len(t, c.ForLocale(shared.LocaleEN), len(c.Cities()))
}

func TestCatalog_Related(t *testing.T) {
	c := DefaultCatalog()
	brno, _ := c.City("brno")

	related := c.Related(brno, RelatedCityLimit)
	require.Len(t, related, 5)
	assert.Equal(t, "praha", related[0].Slug)
	for _, r := range related {
		assert.NotEqual(t, "brno", r.Slug)
		assert.Equal(t, CountryCZ, r.Country)
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	_, err := LoadCatalog([]byte("cities:\n  - slug: Bad Slug\n    country: CZ\n"))
	assert.Error(t, err)

	_, err = LoadCatalog([]byte("cities:\n  - slug: wien\n    country: AT\n"))
	assert.Error(t, err)

	_, err = LoadCatalog([]byte("cities:\n  - slug: a\n    country: CZ\n  - slug: a\n    country: CZ\n"))
	assert.Error(t, err)
}

func TestTrimAtWord(t *testing.T) {
	assert.Equal(t, "short", TrimAtWord("  short ", 60))
	assert.Equal(t, "Tvorba webových", TrimAtWord("Tvorba webových stránek", 18))
	assert.Equal(t, "abcdef", TrimAtWord("abcdefgh", 6))
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Web design Brno | Studio", PageTitle("Web design Brno", "Studio"))

	long := PageTitle("Tvorba webových stránek a e-shopů na míru České Budějovice", "Webové studio Novák")
	assert.LessOrEqual(t, utf8.RuneCountInString(long), MaxTitleLength)
	assert.False(t, strings.HasSuffix(long, "|"))
	assert.False(t, strings.HasSuffix(long, " "))
}

func TestMetaDescription(t *testing.T) {
	d := MetaDescription(strings.Repeat("word ", 50))
	assert.LessOrEqual(t, utf8.RuneCountInString(d), MaxDescriptionLength)
	assert.Equal(t, "a b", MetaDescription("a \n  b"))
}

func TestURLs(t *testing.T) {
	base := "https://example.cz"
	assert.Equal(t, "https://example.cz/cs", HomeURL(base, shared.LocaleCS))
	assert.Equal(t, "https://example.cz/de/webdesign/berlin", LandingURL(base, shared.LocaleDE, "webdesign", "berlin"))
	assert.Equal(t, "https://example.cz/en/blog/hello", PostURL(base, shared.LocaleEN, "hello"))
}

func TestAlternates(t *testing.T) {
	alts := Alternates([]shared.Locale{shared.LocaleEN, shared.LocaleCS}, func(l shared.Locale) string {
		return "https://x.cz/" + l.String()
	})
	require.Len(t, alts, 3)
	assert.Equal(t, "cs", alts[0].Hreflang)
	assert.Equal(t, "en", alts[1].Hreflang)
	assert.Equal(t, Alternate{Hreflang: "x-default", Href: "https://x.cz/cs"}, alts[2])

	alts = Alternates([]shared.Locale{shared.LocaleDE}, func(l shared.Locale) string { return l.String() })
	assert.Len(t, alts, 1)
}

func TestGraph_Marshal(t *testing.T) {
	agency := Agency{Name: "Studio", URL: "https://studio.cz", Street: "Hlavní 1", City: "Brno"}
	brno, _ := DefaultCatalog().City("brno")

	g := NewGraph(
		ProfessionalServiceNode(agency, brno, "Brno"),
		ServiceNode(agency, "Web design", "", "https://studio.cz/cs/web/brno", brno, "Brno"),
		BreadcrumbNode(Crumb{Name: "Home", URL: "https://studio.cz/cs"}, Crumb{Name: "Web", URL: "https://studio.cz/cs/web"}),
		FAQNode([]FAQ{{Question: "<b>Q?</b>", Answer: "A"}}),
	)
	out, err := g.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, out, "<b>")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "https://schema.org", doc["@context"])
	nodes := doc["@graph"].([]any)
	require.Len(t, nodes, 4)

	ps := nodes[0].(map[string]any)
	assert.Equal(t, "ProfessionalService", ps["@type"])
	assert.Equal(t, "https://studio.cz/#organization", ps["@id"])
	assert.Equal(t, "Brno", ps["areaServed"].(map[string]any)["name"])

	bc := nodes[2].(map[string]any)["itemListElement"].([]any)
	assert.EqualValues(t, 2, bc[1].(map[string]any)["position"])
}

func TestBlogPostingNode(t *testing.T) {
	published := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := BlogPostingNode(Agency{URL: "https://s.cz"}, BlogPostingInput{
		Title:       "Hello",
		URL:         "https://s.cz/en/blog/hello",
		Locale:      "en",
		Tags:        []string{"seo", "web"},
		PublishedAt: &published,
		UpdatedAt:   published,
	})
	assert.Equal(t, "2026-03-01T10:00:00Z", p.DatePublished)
	assert.Equal(t, "seo, web", p.Keywords)
	assert.Equal(t, "https://s.cz/#organization", p.Publisher.ID)
}

func TestURLSet_Marshal(t *testing.T) {
	s := NewURLSet()
	s.Add("https://s.cz/cs", time.Time{}, []Alternate{{Hreflang: "de", Href: "https://s.cz/de"}})
	s.Add("https://s.cz/cs/blog/a", time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC), nil)

	out, err := s.Marshal()
	require.NoError(t, err)
	xml := string(out)
	assert.True(t, strings.HasPrefix(xml, "<?xml"))
	assert.Contains(t, xml, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, xml, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.Contains(t, xml, `<xhtml:link rel="alternate" hreflang="de" href="https://s.cz/de"></xhtml:link>`)
	assert.Contains(t, xml, "<lastmod>2026-05-02</lastmod>")
	assert.Equal(t, 2, s.Len())
}

func TestRobots(t *testing.T) {
	r := Robots("https://s.cz/")
	assert.Contains(t, r, "Disallow: /admin\n")
	assert.Contains(t, r, "Disallow: /api\n")
	assert.Contains(t, r, "Sitemap: https://s.cz/sitemap.xml")
}
