package seo

import (
	"encoding/json"
	"strings"
	"time"
)

const schemaContext = "https://schema.org"

// Agency describes the business behind the site for structured data
type Agency struct {
	Name       string
	LegalName  string
	URL        string
	Email      string
	Phone      string
	Street     string
	City       string
	PostalCode string
	Country    string
	LogoURL    string
}

// Graph is a JSON-LD document with several nodes
type Graph struct {
	Context string `json:"@context"`
	Nodes   []any  `json:"@graph"`
}

// NewGraph creates a graph from the given nodes
func NewGraph(nodes ...any) Graph {
	return Graph{Context: schemaContext, Nodes: nodes}
}

// Marshal renders the graph for a <script type="application/ld+json"> element.
// encoding/json escapes <, > and & so the output is safe inside HTML.
func (g Graph) Marshal() (string, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	AddressCountry  string `json:"addressCountry,omitempty"`
}

type GeoCoordinates struct {
	Type      string  `json:"@type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is used for areaServed
type Place struct {
	Type string          `json:"@type"`
	Name string          `json:"name"`
	Geo  *GeoCoordinates `json:"geo,omitempty"`
}

// Ref points to another node of the same graph
type Ref struct {
	ID string `json:"@id"`
}

type ProfessionalService struct {
	Type       string          `json:"@type"`
	ID         string          `json:"@id"`
	Name       string          `json:"name"`
	LegalName  string          `json:"legalName,omitempty"`
	URL        string          `json:"url"`
	Email      string          `json:"email,omitempty"`
	Telephone  string          `json:"telephone,omitempty"`
	Logo       string          `json:"logo,omitempty"`
	Address    *PostalAddress  `json:"address,omitempty"`
	AreaServed *Place          `json:"areaServed,omitempty"`
	Geo        *GeoCoordinates `json:"geo,omitempty"`
}

type Service struct {
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Provider    Ref    `json:"provider"`
	AreaServed  *Place `json:"areaServed,omitempty"`
}

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type BreadcrumbList struct {
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

type FAQPage struct {
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
}

type Organization struct {
	Type      string         `json:"@type"`
	ID        string         `json:"@id"`
	Name      string         `json:"name"`
	LegalName string         `json:"legalName,omitempty"`
	URL       string         `json:"url"`
	Email     string         `json:"email,omitempty"`
	Telephone string         `json:"telephone,omitempty"`
	Logo      string         `json:"logo,omitempty"`
	Address   *PostalAddress `json:"address,omitempty"`
}

type WebSite struct {
	Type       string `json:"@type"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	InLanguage string `json:"inLanguage"`
	Publisher  Ref    `json:"publisher"`
}

type BlogPosting struct {
	Type          string `json:"@type"`
	Headline      string `json:"headline"`
	Description   string `json:"description,omitempty"`
	URL           string `json:"url"`
	Image         string `json:"image,omitempty"`
	InLanguage    string `json:"inLanguage"`
	DatePublished string `json:"datePublished,omitempty"`
	DateModified  string `json:"dateModified,omitempty"`
	Keywords      string `json:"keywords,omitempty"`
	Author        Ref    `json:"author"`
	Publisher     Ref    `json:"publisher"`
}

// Crumb is one step of a breadcrumb trail
type Crumb struct {
	Name string
	URL  string
}

// FAQ is a question with its answer
type FAQ struct {
	Question string
	Answer   string
}

// OrganizationID is the @id shared by the agency nodes
func OrganizationID(a Agency) string {
	return a.URL + "/#organization"
}

func (a Agency) address() *PostalAddress {
	if a.Street == "" && a.City == "" {
		return nil
	}
	return &PostalAddress{
		Type:            "PostalAddress",
		StreetAddress:   a.Street,
		AddressLocality: a.City,
		PostalCode:      a.PostalCode,
		AddressCountry:  a.Country,
	}
}

func cityPlace(city City, name string) *Place {
	return &Place{
		Type: "City",
		Name: name,
		Geo:  &GeoCoordinates{Type: "GeoCoordinates", Latitude: city.Lat, Longitude: city.Lng},
	}
}

// ProfessionalServiceNode describes the agency serving a city
func ProfessionalServiceNode(a Agency, city City, cityName string) ProfessionalService {
	return ProfessionalService{
		Type:       "ProfessionalService",
		ID:         OrganizationID(a),
		Name:       a.Name,
		LegalName:  a.LegalName,
		URL:        a.URL,
		Email:      a.Email,
		Telephone:  a.Phone,
		Logo:       a.LogoURL,
		Address:    a.address(),
		AreaServed: cityPlace(city, cityName),
		Geo:        &GeoCoordinates{Type: "GeoCoordinates", Latitude: city.Lat, Longitude: city.Lng},
	}
}

// ServiceNode describes a service offered in a city
func ServiceNode(a Agency, name, description, url string, city City, cityName string) Service {
	return Service{
		Type:        "Service",
		Name:        name,
		Description: description,
		URL:         url,
		Provider:    Ref{ID: OrganizationID(a)},
		AreaServed:  cityPlace(city, cityName),
	}
}

// BreadcrumbNode numbers crumbs from 1
func BreadcrumbNode(crumbs ...Crumb) BreadcrumbList {
	items := make([]ListItem, len(crumbs))
	for i, c := range crumbs {
		items[i] = ListItem{Type: "ListItem", Position: i + 1, Name: c.Name, Item: c.URL}
	}
	return BreadcrumbList{Type: "BreadcrumbList", ItemListElement: items}
}

func FAQNode(faqs []FAQ) FAQPage {
	qs := make([]Question, len(faqs))
	for i, f := range faqs {
		qs[i] = Question{
			Type:           "Question",
			Name:           f.Question,
			AcceptedAnswer: Answer{Type: "Answer", Text: f.Answer},
		}
	}
	return FAQPage{Type: "FAQPage", MainEntity: qs}
}

func OrganizationNode(a Agency) Organization {
	return Organization{
		Type:      "Organization",
		ID:        OrganizationID(a),
		Name:      a.Name,
		LegalName: a.LegalName,
		URL:       a.URL,
		Email:     a.Email,
		Telephone: a.Phone,
		Logo:      a.LogoURL,
		Address:   a.address(),
	}
}

func WebSiteNode(a Agency, name, url, lang string) WebSite {
	return WebSite{
		Type:       "WebSite",
		Name:       name,
		URL:        url,
		InLanguage: lang,
		Publisher:  Ref{ID: OrganizationID(a)},
	}
}

// BlogPostingInput carries the post facts needed for a BlogPosting node
type BlogPostingInput struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Locale      string
	Tags        []string
	PublishedAt *time.Time
	UpdatedAt   time.Time
}

func BlogPostingNode(a Agency, in BlogPostingInput) BlogPosting {
	p := BlogPosting{
		Type:         "BlogPosting",
		Headline:     TrimAtWord(in.Title, 110),
		Description:  in.Description,
		URL:          in.URL,
		Image:        in.ImageURL,
		InLanguage:   in.Locale,
		DateModified: in.UpdatedAt.UTC().Format(time.RFC3339),
		Author:       Ref{ID: OrganizationID(a)},
		Publisher:    Ref{ID: OrganizationID(a)},
	}
	if in.PublishedAt != nil {
		p.DatePublished = in.PublishedAt.UTC().Format(time.RFC3339)
	}
	if len(in.Tags) > 0 {
		p.Keywords = strings.Join(in.Tags, ", ")
	}
	return p
}
