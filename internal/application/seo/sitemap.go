package seo

import (
	"context"
	"time"

	"github.com/webstudio/backend/internal/domain/blog"
	"github.com/webstudio/backend/internal/domain/seo"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Sitemap lists home, blog, service and landing pages plus published posts.
// The document is cached when a cache is configured.
func (s *SEOService) Sitemap(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, sitemapCacheKey); err != nil {
			s.logger.Warn("Sitemap cache read failed", zap.Error(err))
		} else if ok {
			return data, nil
		}
	}

	data, err := s.buildSitemap(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sitemapCacheKey, data, sitemapTTL); err != nil {
			s.logger.Warn("Sitemap cache write failed", zap.Error(err))
		}
	}
	return data, nil
}

func (s *SEOService) buildSitemap(ctx context.Context) ([]byte, error) {
	services, err := s.services.FindAll(ctx, publishedServices(""))
	if err != nil {
		return nil, err
	}
	postFilter := shared.DefaultFilter()
	postFilter.OrderBy = "published_at"
	postFilter.PageSize = 0
	postFilter.Filters[blog.FilterStatus] = string(blog.StatusPublished)
	posts, err := s.posts.FindAll(ctx, postFilter)
	if err != nil {
		return nil, err
	}

	set := seo.NewURLSet()
	home := s.HomeAlternates()
	for _, l := range shared.SupportedLocales {
		set.Add(seo.HomeURL(s.baseURL, l), latestPost(posts, l), home)
	}
	for _, l := range shared.SupportedLocales {
		set.Add(seo.BlogURL(s.baseURL, l), latestPost(posts, l), nil)
	}

	locales := make(map[string][]shared.Locale)
	for _, svc := range services {
		locales[svc.Slug] = append(locales[svc.Slug], svc.Locale)
	}

	for _, svc := range services {
		slug := svc.Slug
		set.Add(seo.ServiceURL(s.baseURL, svc.Locale, slug), svc.UpdatedAt,
			seo.Alternates(locales[slug], func(l shared.Locale) string {
				return seo.ServiceURL(s.baseURL, l, slug)
			}))

		for _, city := range s.catalog.ForLocale(svc.Locale) {
			citySlug := city.Slug
			set.Add(seo.LandingURL(s.baseURL, svc.Locale, slug, citySlug), svc.UpdatedAt,
				seo.Alternates(marketLocales(locales[slug], city), func(l shared.Locale) string {
					return seo.LandingURL(s.baseURL, l, slug, citySlug)
				}))
		}
	}

	for _, p := range posts {
		set.Add(seo.PostURL(s.baseURL, p.Locale, p.Slug), p.UpdatedAt, nil)
	}

	s.logger.Debug("Sitemap built", zap.Int("urls", set.Len()))
	return set.Marshal()
}

func marketLocales(locales []shared.Locale, city seo.City) []shared.Locale {
	out := make([]shared.Locale, 0, len(locales))
	for _, l := range locales {
		if inMarket(l, city.Country) {
			out = append(out, l)
		}
	}
	return out
}

// latestPost is the newest update among published posts of a locale
func latestPost(posts []blog.Post, locale shared.Locale) time.Time {
	var latest time.Time
	for _, p := range posts {
		if p.Locale == locale && p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
	}
	return latest
}
