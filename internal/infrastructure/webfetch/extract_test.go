package webfetch

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellBuiltPage = `<!DOCTYPE html>
<html lang="cs">
<head>
  <meta charset="utf-8">
  <title>Instalatér Brno | Novák a syn</title>
  <meta name="description" content="Havarijní služba, rekonstrukce koupelen a montáž kotlů v Brně a okolí.">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta property="og:title" content="Novák a syn">
  <link rel="canonical" href="https://novak.cz/">
  <link rel="icon" href="/favicon.ico">
  <link rel="stylesheet" href="/site.css">
  <script type="application/ld+json">{"@type":"Plumber"}</script>
  <script src="/app.js"></script>
  <script src="https://www.googletagmanager.com/gtag/js"></script>
</head>
<body>
  <h1>Instalatér v Brně</h1>
  <p>Opravíme vodu, topení i plyn.</p>
  <img src="/team.jpg" alt="Náš tým">
  <img src="/van.jpg">
  <a href="/kontakt">Kontakt</a>
  <a href="https://www.novak.cz/cenik">Ceník</a>
  <a href="https://facebook.com/novak">Facebook</a>
  <a href="tel:+420777123456">Zavolejte</a>
  <a href="#top">Nahoru</a>
  <form action="/send"><input type="email" name="email"><textarea name="msg"></textarea></form>
</body>
</html>`

const legacyPage = `<html>
<head>
  <meta name="robots" content="noindex, nofollow">
  <style>body { width: 1024px; font-size: 10px }</style>
</head>
<body>
  <table width="980"><tr><td><table><tr><td style="color:red">Vítejte</td></tr></table></td></tr></table>
  <h1>One</h1><h1>Two</h1>
</body>
</html>`

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtract_WellBuiltPage(t *testing.T) {
	m, err := Extract(strings.NewReader(wellBuiltPage), mustURL(t, "https://novak.cz/"))
	require.NoError(t, err)

	assert.Equal(t, "Instalatér Brno | Novák a syn", m.Title)
	assert.Equal(t, 29, m.TitleLength)
	assert.Equal(t, len([]rune(m.MetaDescription)), m.MetaDescriptionLength)
	assert.True(t, m.HasViewport)
	assert.True(t, m.HasCanonical)
	assert.True(t, m.HasOpenGraph)
	assert.True(t, m.HasStructuredData)
	assert.True(t, m.HasFavicon)
	assert.True(t, m.HasLangAttr)
	assert.False(t, m.NoIndex)

	assert.Equal(t, 1, m.H1Count)
	assert.Equal(t, 2, m.ImageCount)
	assert.Equal(t, 1, m.ImagesWithoutAlt)

	assert.Equal(t, 2, m.ScriptCount)
	assert.Equal(t, 1, m.ExternalScriptCount)
	assert.Equal(t, 1, m.StylesheetCount)

	assert.Equal(t, 2, m.InternalLinks)
	assert.Equal(t, 1, m.ExternalLinks)
	assert.True(t, m.HasPhoneLink)
	assert.True(t, m.HasContactForm)

	assert.False(t, m.UsesTablesForLayout)
	assert.False(t, m.HasFixedWidth)
	assert.False(t, m.SmallFontDeclared)
	assert.Greater(t, m.WordCount, 10)
}

func TestExtract_LegacyPage(t *testing.T) {
	m, err := Extract(strings.NewReader(legacyPage), mustURL(t, "http://old.example.de/"))
	require.NoError(t, err)

	assert.Empty(t, m.Title)
	assert.Zero(t, m.TitleLength)
	assert.False(t, m.HasViewport)
	assert.False(t, m.HasLangAttr)
	assert.True(t, m.NoIndex)
	assert.Equal(t, 2, m.H1Count)
	assert.True(t, m.UsesTablesForLayout)
	assert.True(t, m.HasFixedWidth)
	assert.True(t, m.SmallFontDeclared)
	assert.Equal(t, 1, m.InlineStyleCount)
	assert.False(t, m.HasContactForm)
	assert.False(t, m.HasPhoneLink)
}

func TestExtract_SearchFormIsNotContactForm(t *testing.T) {
	page := `<html><body><form><input type="search" name="q"></form></body></html>`
	m, err := Extract(strings.NewReader(page), mustURL(t, "https://a.cz/"))
	require.NoError(t, err)
	assert.False(t, m.HasContactForm)
}

func TestSameSite(t *testing.T) {
	assert.True(t, sameSite("www.novak.cz", "novak.cz"))
	assert.True(t, sameSite("NOVAK.cz", "www.novak.cz"))
	assert.False(t, sameSite("shop.novak.cz", "novak.cz"))
}
