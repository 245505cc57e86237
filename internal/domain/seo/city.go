package seo

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/webstudio/backend/internal/domain/shared"
	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var citiesYAML []byte

// Country is an ISO 3166-1 alpha-2 code of a served market
type Country string

const (
	CountryCZ Country = "CZ"
	CountryDE Country = "DE"
)

// City is a landing page target
type City struct {
	Slug       string            `yaml:"slug"`
	Country    Country           `yaml:"country"`
	Names      map[string]string `yaml:"names"`
	Region     map[string]string `yaml:"region"`
	Lat        float64           `yaml:"lat"`
	Lng        float64           `yaml:"lng"`
	Population int               `yaml:"population"`
}

// Name returns the localized city name, falling back to the default locale
func (c City) Name(locale shared.Locale) string {
	return localized(c.Names, locale, c.Slug)
}

// RegionName returns the localized region name
func (c City) RegionName(locale shared.Locale) string {
	return localized(c.Region, locale, "")
}

func localized(m map[string]string, locale shared.Locale, fallback string) string {
	if v, ok := m[locale.String()]; ok && v != "" {
		return v
	}
	if v, ok := m[shared.DefaultLocale.String()]; ok && v != "" {
		return v
	}
	return fallback
}

// MarketFor returns the countries whose cities are listed for a locale
func MarketFor(locale shared.Locale) []Country {
	switch locale {
	case shared.LocaleCS:
		return []Country{CountryCZ}
	case shared.LocaleDE:
		return []Country{CountryDE}
	default:
		return []Country{CountryCZ, CountryDE}
	}
}

// Catalog is a read-only set of cities ordered by population
type Catalog struct {
	cities []City
	bySlug map[string]int
}

type catalogFile struct {
	Cities []City `yaml:"cities"`
}

// LoadCatalog parses a YAML city list
func LoadCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse city catalog: %w", err)
	}

	sort.SliceStable(f.Cities, func(i, j int) bool {
		return f.Cities[i].Population > f.Cities[j].Population
	})

	c := &Catalog{cities: f.Cities, bySlug: make(map[string]int, len(f.Cities))}
	for i, city := range f.Cities {
		if !shared.IsValidSlug(city.Slug) {
			return nil, fmt.Errorf("invalid city slug %q", city.Slug)
		}
		if city.Country != CountryCZ && city.Country != CountryDE {
			return nil, fmt.Errorf("city %s: unsupported country %q", city.Slug, city.Country)
		}
		if _, dup := c.bySlug[city.Slug]; dup {
			return nil, fmt.Errorf("duplicate city slug %q", city.Slug)
		}
		c.bySlug[city.Slug] = i
	}
	return c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded city catalog
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(citiesYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Cities returns the cities of the given countries, or all cities when none are given
func (c *Catalog) Cities(countries ...Country) []City {
	out := make([]City, 0, len(c.cities))
	for _, city := range c.cities {
		if len(countries) == 0 || containsCountry(countries, city.Country) {
			out = append(out, city)
		}
	}
	return out
}

// ForLocale returns the cities of the locale's market
func (c *Catalog) ForLocale(locale shared.Locale) []City {
	return c.Cities(MarketFor(locale)...)
}

// City looks a city up by slug
func (c *Catalog) City(slug string) (City, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return City{}, shared.NewDomainError("NOT_FOUND", "City not found: "+slug)
	}
	return c.cities[i], nil
}

// Related returns up to limit other cities of the same country, largest first
func (c *Catalog) Related(city City, limit int) []City {
	out := make([]City, 0, limit)
	for _, other := range c.cities {
		if len(out) >= limit {
			break
		}
		if other.Slug == city.Slug || other.Country != city.Country {
			continue
		}
		out = append(out, other)
	}
	return out
}

func containsCountry(list []Country, c Country) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
