package handler

import (
	"github.com/webstudio/backend/internal/domain/seo"
	"github.com/webstudio/backend/internal/domain/shared"
)

// ============================================================================
// Public Response DTOs
// ============================================================================

// CityResponse is a landing page target city
// @Description City with localized names
type CityResponse struct {
	Slug       string  `json:"slug" example:"brno"`
	Country    string  `json:"country" example:"CZ"`
	Name       string  `json:"name" example:"Brno"`
	Region     string  `json:"region,omitempty" example:"Jihomoravský kraj"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Population int     `json:"population"`
}

func toCityResponse(c seo.City, locale shared.Locale) CityResponse {
	return CityResponse{
		Slug:       c.Slug,
		Country:    string(c.Country),
		Name:       c.Name(locale),
		Region:     c.RegionName(locale),
		Lat:        c.Lat,
		Lng:        c.Lng,
		Population: c.Population,
	}
}

// FAQResponse is one question with its answer
// @Description FAQ entry
type FAQResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// RelatedLinkResponse points to the same service in another city
// @Description Related landing page
type RelatedLinkResponse struct {
	CitySlug string `json:"city_slug"`
	CityName string `json:"city_name"`
	URL      string `json:"url"`
}

// LandingPageResponse is a service page targeted at one city
// @Description Landing page content and SEO metadata
type LandingPageResponse struct {
	Locale          string                `json:"locale" example:"cs"`
	ServiceSlug     string                `json:"service_slug" example:"tvorba-webu"`
	ServiceTitle    string                `json:"service_title"`
	CitySlug        string                `json:"city_slug" example:"brno"`
	CityName        string                `json:"city_name" example:"Brno"`
	Title           string                `json:"title"`
	MetaDescription string                `json:"meta_description"`
	H1              string                `json:"h1"`
	Intro           string                `json:"intro"`
	Body            string                `json:"body,omitempty"`
	CTA             string                `json:"cta"`
	Canonical       string                `json:"canonical"`
	Alternates      []seo.Alternate       `json:"alternates"`
	FAQ             []FAQResponse         `json:"faq"`
	Related         []RelatedLinkResponse `json:"related"`
	JSONLD          string                `json:"json_ld"`
}

func toLandingPageResponse(p *seo.LandingPage) LandingPageResponse {
	faq := make([]FAQResponse, len(p.FAQ))
	for i, f := range p.FAQ {
		faq[i] = FAQResponse{Question: f.Question, Answer: f.Answer}
	}
	related := make([]RelatedLinkResponse, len(p.Related))
	for i, r := range p.Related {
		related[i] = RelatedLinkResponse{CitySlug: r.CitySlug, CityName: r.CityName, URL: r.URL}
	}
	alternates := p.Alternates
	if alternates == nil {
		alternates = []seo.Alternate{}
	}
	return LandingPageResponse{
		Locale:          p.Locale.String(),
		ServiceSlug:     p.ServiceSlug,
		ServiceTitle:    p.ServiceTitle,
		CitySlug:        p.CitySlug,
		CityName:        p.CityName,
		Title:           p.Title,
		MetaDescription: p.MetaDescription,
		H1:              p.H1,
		Intro:           p.Intro,
		Body:            p.Body,
		CTA:             p.CTA,
		Canonical:       p.Canonical,
		Alternates:      alternates,
		FAQ:             faq,
		Related:         related,
		JSONLD:          p.JSONLD,
	}
}

// LandingRefResponse identifies a landing page
// @Description Landing page reference
type LandingRefResponse struct {
	ServiceSlug string `json:"service_slug"`
	CitySlug    string `json:"city_slug"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

// CitiesQuery filters the city catalog
// @Description City filters
type CitiesQuery struct {
	Country string `form:"country" binding:"omitempty,oneof=CZ DE cz de"`
}

// BlocksByPrefixQuery selects public content blocks
// @Description Block prefix
type BlocksByPrefixQuery struct {
	Prefix string `form:"prefix"`
}
