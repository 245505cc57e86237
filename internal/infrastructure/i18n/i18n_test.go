package i18n

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/shared"
)

func TestLoad_EmbeddedDictionariesHaveSameKeys(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	cs := b.Keys(shared.LocaleCS, "")
	require.NotEmpty(t, cs)
	assert.Equal(t, cs, b.Keys(shared.LocaleDE, ""))
	assert.Equal(t, cs, b.Keys(shared.LocaleEN, ""))
}

func TestBundle_T(t *testing.T) {
	fsys := fstest.MapFS{
		"l/cs.yaml": {Data: []byte("greet: \"Ahoj {name}\"\nnested:\n  only_cs: \"jen česky\"\n")},
		"l/de.yaml": {Data: []byte("greet: \"Hallo {name}\"\n")},
		"l/en.yaml": {Data: []byte("greet: \"Hi {name}\"\ncount: 3\n")},
	}
	b, err := LoadFS(fsys, "l")
	require.NoError(t, err)

	assert.Equal(t, "Hallo Petr", b.T(shared.LocaleDE, "greet", Args{"name": "Petr"}))
	assert.Equal(t, "Hi {name}", b.T(shared.LocaleEN, "greet"))
	assert.Equal(t, "jen česky", b.T(shared.LocaleDE, "nested.only_cs"), "falls back to default locale")
	assert.Equal(t, "missing.key", b.T(shared.LocaleEN, "missing.key"))
	assert.Equal(t, "3", b.T(shared.LocaleEN, "count"))
	assert.True(t, b.Has(shared.LocaleEN, "nested.only_cs"))
	assert.False(t, b.Has(shared.LocaleEN, "nope"))
}

func TestLoadFS_MissingLocale(t *testing.T) {
	fsys := fstest.MapFS{"l/cs.yaml": {Data: []byte("a: b\n")}}
	_, err := LoadFS(fsys, "l")
	assert.Error(t, err)
}

func TestBundle_Negotiate(t *testing.T) {
	b := MustLoad()

	assert.Equal(t, shared.LocaleDE, b.Negotiate("de-AT,de;q=0.9,en;q=0.8"))
	assert.Equal(t, shared.LocaleEN, b.Negotiate("en-GB,en;q=0.9"))
	assert.Equal(t, shared.LocaleCS, b.Negotiate("cs-CZ"))
	assert.Equal(t, shared.LocaleCS, b.Negotiate(""))
	assert.Equal(t, shared.LocaleCS, b.Negotiate("ja-JP"))
}

func TestFormatMoney(t *testing.T) {
	amount := decimal.RequireFromString("1234.5")

	assert.Equal(t, "1.234,50 €", FormatMoney(amount, "EUR", shared.LocaleDE))
	assert.Equal(t, "€1,234.50", FormatMoney(amount, "EUR", shared.LocaleEN))
	assert.Equal(t, "1,234.50 Kč", FormatMoney(amount, "CZK", shared.LocaleEN))
	assert.Equal(t, "1,234.50 USD", FormatMoney(amount, "usd", shared.LocaleEN))

	cs := FormatMoney(amount, "CZK", shared.LocaleCS)
	assert.Contains(t, cs, "234,50")
	assert.Contains(t, cs, "Kč")
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2. 1. 2026", FormatDate(d, shared.LocaleCS))
	assert.Equal(t, "02.01.2026", FormatDate(d, shared.LocaleDE))
	assert.Equal(t, "January 2, 2026", FormatDate(d, shared.LocaleEN))
}
