package seo

import (
	blogapp "github.com/webstudio/backend/internal/application/blog"
	"github.com/webstudio/backend/internal/domain/seo"
	"github.com/webstudio/backend/internal/domain/shared"
)

// OrganizationJSONLD describes the agency and the site in one locale
func (s *SEOService) OrganizationJSONLD(locale shared.Locale) (string, error) {
	name := s.phrases.T(locale, "site.name")
	return seo.NewGraph(
		seo.OrganizationNode(s.agency),
		seo.WebSiteNode(s.agency, name, seo.HomeURL(s.baseURL, locale), locale.String()),
	).Marshal()
}

// PostJSONLD describes a published post
func (s *SEOService) PostJSONLD(post blogapp.PostDTO) (string, error) {
	locale := shared.LocaleOrDefault(post.Locale)
	description := post.MetaDescription
	if description == "" {
		description = post.Excerpt
	}
	return seo.NewGraph(
		seo.BlogPostingNode(s.agency, seo.BlogPostingInput{
			Title:       post.Title,
			Description: seo.MetaDescription(description),
			URL:         seo.PostURL(s.baseURL, locale, post.Slug),
			ImageURL:    post.CoverImageURL,
			Locale:      locale.String(),
			Tags:        post.Tags,
			PublishedAt: post.PublishedAt,
			UpdatedAt:   post.UpdatedAt,
		}),
		seo.BreadcrumbNode(
			seo.Crumb{Name: s.phrases.T(locale, "site.nav.home"), URL: seo.HomeURL(s.baseURL, locale)},
			seo.Crumb{Name: s.phrases.T(locale, "blog.title"), URL: seo.BlogURL(s.baseURL, locale)},
			seo.Crumb{Name: post.Title, URL: seo.PostURL(s.baseURL, locale, post.Slug)},
		),
	).Marshal()
}
