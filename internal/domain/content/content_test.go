package content

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstudio/backend/internal/domain/shared"
)

func TestNewService(t *testing.T) {
	s, err := NewService(shared.LocaleCS, ServiceInput{
		Title:    "Tvorba webových stránek",
		Keywords: []string{"web", " web ", "", "eshop"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tvorba-webovych-stranek", s.Slug)
	assert.Equal(t, []string{"web", "eshop"}, s.Keywords)

	_, err = NewService(shared.LocaleCS, ServiceInput{Title: "SEO", Slug: "Bad Slug"})
	assert.Error(t, err)
	_, err = NewService(shared.Locale("pl"), ServiceInput{Title: "SEO"})
	assert.Error(t, err)

	require.NoError(t, s.Update(ServiceInput{Title: "Weby", Slug: "weby", Published: true}))
	assert.Equal(t, "weby", s.Slug)
	assert.True(t, s.Published)
	assert.Equal(t, 2, s.Version)
}

func TestNewPricingPackage(t *testing.T) {
	p, err := NewPricingPackage(shared.LocaleDE, PricingInput{
		Name:     "Starter Paket",
		Price:    decimal.RequireFromString("499.999"),
		Currency: "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, "starter-paket", p.Slug)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, BillingOneTime, p.BillingPeriod)
	assert.True(t, decimal.RequireFromString("500").Equal(p.Price))

	_, err = NewPricingPackage(shared.LocaleDE, PricingInput{Name: "X", Price: decimal.NewFromInt(-1), Currency: "EUR"})
	assert.Error(t, err)
	_, err = NewPricingPackage(shared.LocaleDE, PricingInput{Name: "X", Currency: "USD"})
	assert.Error(t, err)
	_, err = NewPricingPackage(shared.LocaleDE, PricingInput{Name: "X", Currency: "EUR", BillingPeriod: "weekly"})
	assert.Error(t, err)
}

func TestNewPortfolioItem(t *testing.T) {
	p, err := NewPortfolioItem(shared.LocaleEN, PortfolioInput{Title: "Bakery e-shop", ProjectURL: "https://pekarna.cz"})
	require.NoError(t, err)
	assert.Equal(t, "bakery-e-shop", p.Slug)

	_, err = NewPortfolioItem(shared.LocaleEN, PortfolioInput{Title: "X", ProjectURL: "pekarna.cz"})
	assert.Error(t, err)
	_, err = NewPortfolioItem(shared.LocaleEN, PortfolioInput{Title: "X", ProjectURL: "ftp://pekarna.cz"})
	assert.Error(t, err)
}

func TestNewBlock(t *testing.T) {
	b, err := NewBlock(" Home.Hero.Title ", shared.LocaleCS, "Weby, které prodávají")
	require.NoError(t, err)
	assert.Equal(t, "home.hero.title", b.Key)

	for _, key := range []string{"", "home..title", ".home", "home title", "home-hero"} {
		_, err := NewBlock(key, shared.LocaleCS, "x")
		assert.Error(t, err, key)
	}
}
