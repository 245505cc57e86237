package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webstudio/backend/internal/domain/content"
)

// ListContentInput filters admin content lists
type ListContentInput struct {
	Locale    string
	Published *bool
	Search    string
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
}

// ServiceDTO is a service as returned by the API
type ServiceDTO struct {
	ID        uuid.UUID `json:"id"`
	Locale    string    `json:"locale"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Body      string    `json:"body,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	Keywords  []string  `json:"keywords"`
	SortOrder int       `json:"sort_order"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToServiceDTO(s *content.Service) ServiceDTO {
	return ServiceDTO{
		ID:        s.ID,
		Locale:    string(s.Locale),
		Slug:      s.Slug,
		Title:     s.Title,
		Summary:   s.Summary,
		Body:      s.Body,
		Icon:      s.Icon,
		Keywords:  s.Keywords,
		SortOrder: s.SortOrder,
		Published: s.Published,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// PricingDTO is a pricing package as returned by the API
type PricingDTO struct {
	ID            uuid.UUID       `json:"id"`
	Locale        string          `json:"locale"`
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	BillingPeriod string          `json:"billing_period"`
	Features      []string        `json:"features"`
	Highlighted   bool            `json:"highlighted"`
	SortOrder     int             `json:"sort_order"`
	Published     bool            `json:"published"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToPricingDTO(p *content.PricingPackage) PricingDTO {
	return PricingDTO{
		ID:            p.ID,
		Locale:        string(p.Locale),
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Currency:      p.Currency,
		BillingPeriod: string(p.BillingPeriod),
		Features:      p.Features,
		Highlighted:   p.Highlighted,
		SortOrder:     p.SortOrder,
		Published:     p.Published,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// PortfolioDTO is a portfolio item with its resolved image URL
type PortfolioDTO struct {
	ID          uuid.UUID  `json:"id"`
	Locale      string     `json:"locale"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	ClientName  string     `json:"client_name,omitempty"`
	Description string     `json:"description,omitempty"`
	ProjectURL  string     `json:"project_url,omitempty"`
	ImageKey    string     `json:"image_key,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Tags        []string   `json:"tags"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	SortOrder   int        `json:"sort_order"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToPortfolioDTO(p *content.PortfolioItem) PortfolioDTO {
	return PortfolioDTO{
		ID:          p.ID,
		Locale:      string(p.Locale),
		Slug:        p.Slug,
		Title:       p.Title,
		ClientName:  p.ClientName,
		Description: p.Description,
		ProjectURL:  p.ProjectURL,
		ImageKey:    p.ImageKey,
		Tags:        p.Tags,
		CompletedAt: p.CompletedAt,
		SortOrder:   p.SortOrder,
		Published:   p.Published,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// BlockDTO is one content block
type BlockDTO struct {
	Key       string    `json:"key"`
	Locale    string    `json:"locale"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImageUploadInput requests a presigned upload
type ImageUploadInput struct {
	Kind        string
	Filename    string
	ContentType string
}

// ImageUpload is where the client PUTs the file and the key to store afterwards
type ImageUpload struct {
	UploadURL   string    `json:"upload_url"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
