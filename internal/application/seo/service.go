package seo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/webstudio/backend/internal/domain/blog"
	"github.com/webstudio/backend/internal/domain/content"
	"github.com/webstudio/backend/internal/domain/seo"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/i18n"
	"go.uber.org/zap"
)

const (
	sitemapCacheKey = "seo:sitemap"
	sitemapTTL      = time.Hour
	faqCount        = 3
)

// Translator looks up localized phrases
type Translator interface {
	T(locale shared.Locale, key string, args ...i18n.Args) string
}

// PageCache keeps rendered documents between requests
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SEOService builds landing pages, the sitemap and structured data
type SEOService struct {
	services content.ServiceRepository
	posts    blog.PostRepository
	catalog  *seo.Catalog
	phrases  Translator
	agency   seo.Agency
	baseURL  string
	cache    PageCache
	logger   *zap.Logger
}

// SEOServiceOption configures optional collaborators
type SEOServiceOption func(*SEOService)

// WithCache caches the generated sitemap
func WithCache(c PageCache) SEOServiceOption {
	return func(s *SEOService) { s.cache = c }
}

// NewSEOService creates the service. baseURL is the public origin without trailing slash.
func NewSEOService(
	services content.ServiceRepository,
	posts blog.PostRepository,
	catalog *seo.Catalog,
	phrases Translator,
	agency seo.Agency,
	baseURL string,
	logger *zap.Logger,
	opts ...SEOServiceOption,
) *SEOService {
	s := &SEOService{
		services: services,
		posts:    posts,
		catalog:  catalog,
		phrases:  phrases,
		agency:   agency,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseURL returns the public origin
func (s *SEOService) BaseURL() string {
	return s.baseURL
}

// Cities lists the catalog, optionally for one country
func (s *SEOService) Cities(country string) []seo.City {
	if country == "" {
		return s.catalog.Cities()
	}
	return s.catalog.Cities(seo.Country(strings.ToUpper(country)))
}

// LandingPage builds the page for a published service in a city of the locale's market
func (s *SEOService) LandingPage(ctx context.Context, locale shared.Locale, serviceSlug, citySlug string) (*seo.LandingPage, error) {
	city, err := s.catalog.City(citySlug)
	if err != nil {
		return nil, err
	}
	if !inMarket(locale, city.Country) {
		return nil, shared.NewDomainError("NOT_FOUND", "City not found: "+citySlug)
	}
	svc, err := s.publishedService(ctx, locale, serviceSlug)
	if err != nil {
		return nil, err
	}
	locales, err := s.services.LocalesForSlug(ctx, svc.Slug)
	if err != nil {
		return nil, err
	}
	return s.buildLanding(locale, svc, city, locales)
}

func (s *SEOService) buildLanding(locale shared.Locale, svc *content.Service, city seo.City, locales []shared.Locale) (*seo.LandingPage, error) {
	cityName := city.Name(locale)
	args := i18n.Args{
		"service":       svc.Title,
		"service_lower": lowerFirst(svc.Title),
		"city":          cityName,
		"region":        city.RegionName(locale),
		"agency":        s.agency.Name,
	}

	canonical := seo.LandingURL(s.baseURL, locale, svc.Slug, city.Slug)
	page := &seo.LandingPage{
		Locale:          locale,
		ServiceSlug:     svc.Slug,
		ServiceTitle:    svc.Title,
		CitySlug:        city.Slug,
		CityName:        cityName,
		Title:           seo.PageTitle(s.phrases.T(locale, "landing.title", args), s.agency.Name),
		MetaDescription: seo.MetaDescription(s.phrases.T(locale, "landing.meta", args)),
		H1:              s.phrases.T(locale, "landing.h1", args),
		Intro:           s.phrases.T(locale, "landing.intro", args),
		Body:            svc.Body,
		CTA:             s.phrases.T(locale, "landing.cta", args),
		Canonical:       canonical,
	}

	alternates := make([]shared.Locale, 0, len(locales))
	for _, l := range locales {
		if inMarket(l, city.Country) {
			alternates = append(alternates, l)
		}
	}
	page.Alternates = seo.Alternates(alternates, func(l shared.Locale) string {
		return seo.LandingURL(s.baseURL, l, svc.Slug, city.Slug)
	})

	for i := 1; i <= faqCount; i++ {
		n := string(rune('0' + i))
		page.FAQ = append(page.FAQ, seo.FAQ{
			Question: s.phrases.T(locale, "landing.faq.q"+n, args),
			Answer:   s.phrases.T(locale, "landing.faq.a"+n, args),
		})
	}

	for _, other := range s.catalog.Related(city, seo.RelatedCityLimit) {
		page.Related = append(page.Related, seo.RelatedLink{
			CitySlug: other.Slug,
			CityName: other.Name(locale),
			URL:      seo.LandingURL(s.baseURL, locale, svc.Slug, other.Slug),
		})
	}

	graph := seo.NewGraph(
		seo.ProfessionalServiceNode(s.agency, city, cityName),
		seo.ServiceNode(s.agency, svc.Title, page.MetaDescription, canonical, city, cityName),
		seo.BreadcrumbNode(
			seo.Crumb{Name: s.phrases.T(locale, "site.nav.home"), URL: seo.HomeURL(s.baseURL, locale)},
			seo.Crumb{Name: svc.Title, URL: seo.ServiceURL(s.baseURL, locale, svc.Slug)},
			seo.Crumb{Name: cityName, URL: canonical},
		),
		seo.FAQNode(page.FAQ),
	)
	jsonLD, err := graph.Marshal()
	if err != nil {
		return nil, err
	}
	page.JSONLD = jsonLD
	return page, nil
}

// ListLandingPages pairs every published service with every city of the locale's market
func (s *SEOService) ListLandingPages(ctx context.Context, locale shared.Locale) ([]seo.LandingRef, error) {
	services, err := s.services.FindAll(ctx, publishedServices(locale))
	if err != nil {
		return nil, err
	}
	cities := s.catalog.ForLocale(locale)
	out := make([]seo.LandingRef, 0, len(services)*len(cities))
	for _, svc := range services {
		for _, city := range cities {
			out = append(out, seo.LandingRef{
				Locale:      locale,
				ServiceSlug: svc.Slug,
				CitySlug:    city.Slug,
				Title:       svc.Title + " " + city.Name(locale),
				URL:         seo.LandingURL(s.baseURL, locale, svc.Slug, city.Slug),
			})
		}
	}
	return out, nil
}

// ServiceAlternates returns hreflang links for a service page
func (s *SEOService) ServiceAlternates(ctx context.Context, slug string) ([]seo.Alternate, error) {
	locales, err := s.services.LocalesForSlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return seo.Alternates(locales, func(l shared.Locale) string {
		return seo.ServiceURL(s.baseURL, l, slug)
	}), nil
}

// HomeAlternates links the home page in every locale
func (s *SEOService) HomeAlternates() []seo.Alternate {
	return seo.Alternates(shared.SupportedLocales, func(l shared.Locale) string {
		return seo.HomeURL(s.baseURL, l)
	})
}

// Robots returns robots.txt
func (s *SEOService) Robots() string {
	return seo.Robots(s.baseURL)
}

func (s *SEOService) publishedService(ctx context.Context, locale shared.Locale, slug string) (*content.Service, error) {
	svc, err := s.services.FindBySlug(ctx, locale, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.WrapDomainError("NOT_FOUND", "Service not found", err)
		}
		return nil, err
	}
	if !svc.Published {
		return nil, shared.NewDomainError("NOT_FOUND", "Service not found")
	}
	return svc, nil
}

// publishedServices selects every published service of a locale, or of all locales when empty
func publishedServices(locale shared.Locale) shared.Filter {
	filter := shared.DefaultFilter()
	filter.OrderBy = ""
	filter.PageSize = 0
	if locale != "" {
		filter.Filters[content.FilterLocale] = locale
	}
	filter.Filters[content.FilterPublished] = true
	return filter
}

func inMarket(locale shared.Locale, country seo.Country) bool {
	for _, c := range seo.MarketFor(locale) {
		if c == country {
			return true
		}
	}
	return false
}

// lowerFirst lowercases the first letter so a title reads inside a sentence
func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = []rune(strings.ToLower(string(r[0])))[0]
	return string(r)
}
