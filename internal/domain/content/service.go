package content

import (
	"strings"

	"github.com/webstudio/backend/internal/domain/shared"
)

// Service is an offering shown on the site and used to build landing pages
type Service struct {
	shared.Aggregate
	Locale    shared.Locale
	Slug      string
	Title     string
	Summary   string
	Body      string
	Icon      string
	Keywords  []string
	SortOrder int
	Published bool
}

// ServiceInput carries the editable fields of a Service
type ServiceInput struct {
	Slug      string
	Title     string
	Summary   string
	Body      string
	Icon      string
	Keywords  []string
	SortOrder int
	Published bool
}

// NewService creates a service for one locale
func NewService(locale shared.Locale, in ServiceInput) (*Service, error) {
	s := &Service{Aggregate: shared.NewAggregate()}
	if err := s.apply(locale, in); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces editable fields
func (s *Service) Update(in ServiceInput) error {
	if err := s.apply(s.Locale, in); err != nil {
		return err
	}
	s.Touch()
	return nil
}

func (s *Service) apply(locale shared.Locale, in ServiceInput) error {
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
	s.Locale = locale
	s.Slug = slug
	s.Title = title
	s.Summary = strings.TrimSpace(in.Summary)
	s.Body = in.Body
	s.Icon = strings.TrimSpace(in.Icon)
	s.Keywords = cleanList(in.Keywords)
	s.SortOrder = in.SortOrder
	s.Published = in.Published
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
