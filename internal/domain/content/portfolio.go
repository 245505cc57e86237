package content

import (
	"net/url"
	"strings"
	"time"

	"github.com/webstudio/backend/internal/domain/shared"
)

// PortfolioItem is a reference project
type PortfolioItem struct {
	shared.Aggregate
	Locale      shared.Locale
	Slug        string
	Title       string
	ClientName  string
	Description string
	ProjectURL  string
	ImageKey    string
	Tags        []string
	CompletedAt *time.Time
	SortOrder   int
	Published   bool
}

// PortfolioInput carries the editable fields of a PortfolioItem
type PortfolioInput struct {
	Slug        string
	Title       string
	ClientName  string
	Description string
	ProjectURL  string
	ImageKey    string
	Tags        []string
	CompletedAt *time.Time
	SortOrder   int
	Published   bool
}

// NewPortfolioItem creates a portfolio entry for one locale
func NewPortfolioItem(locale shared.Locale, in PortfolioInput) (*PortfolioItem, error) {
	p := &PortfolioItem{Aggregate: shared.NewAggregate()}
	if err := p.apply(locale, in); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces editable fields
func (p *PortfolioItem) Update(in PortfolioInput) error {
	if err := p.apply(p.Locale, in); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *PortfolioItem) apply(locale shared.Locale, in PortfolioInput) error {
	if !locale.IsValid() {
		return shared.NewDomainError("INVALID_LOCALE", "Unsupported locale")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title is required")
	}
	slug, err := shared.NormalizeSlug(in.Slug, title)
	if err != nil {
		return err
	}
	projectURL := strings.TrimSpace(in.ProjectURL)
	if projectURL != "" {
		u, err := url.Parse(projectURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return shared.NewDomainError("INVALID_URL", "Project URL must be an absolute http(s) URL")
		}
	}

	p.Locale = locale
	p.Slug = slug
	p.Title = title
	p.ClientName = strings.TrimSpace(in.ClientName)
	p.Description = in.Description
	p.ProjectURL = projectURL
	p.ImageKey = strings.TrimSpace(in.ImageKey)
	p.Tags = cleanList(in.Tags)
	p.CompletedAt = in.CompletedAt
	p.SortOrder = in.SortOrder
	p.Published = in.Published
	return nil
}
