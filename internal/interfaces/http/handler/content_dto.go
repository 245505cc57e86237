package handler

import (
	"time"

	"github.com/shopspring/decimal"
	contentapp "github.com/webstudio/backend/internal/application/content"
	"github.com/webstudio/backend/internal/domain/content"
)

// ============================================================================
// Content Request DTOs
// ============================================================================

// ServiceRequest creates or replaces a service
// @Description Service offered by the agency
type ServiceRequest struct {
	Locale    string   `json:"locale" binding:"omitempty,locale" example:"cs"`
	Slug      string   `json:"slug" binding:"required,slug,max=100" example:"tvorba-webu"`
	Title     string   `json:"title" binding:"required,min=1,max=200" example:"Tvorba webových stránek"`
	Summary   string   `json:"summary" binding:"max=500"`
	Body      string   `json:"body"`
	Icon      string   `json:"icon" binding:"max=100"`
	Keywords  []string `json:"keywords" binding:"max=30,dive,max=100"`
	SortOrder int      `json:"sort_order"`
	Published bool     `json:"published"`
}

func (r ServiceRequest) input() content.ServiceInput {
	return content.ServiceInput{
		Slug:      r.Slug,
		Title:     r.Title,
		Summary:   r.Summary,
		Body:      r.Body,
		Icon:      r.Icon,
		Keywords:  r.Keywords,
		SortOrder: r.SortOrder,
		Published: r.Published,
	}
}

// PricingRequest creates or replaces a pricing package
// @Description Pricing package
type PricingRequest struct {
	Locale        string          `json:"locale" binding:"omitempty,locale" example:"cs"`
	Slug          string          `json:"slug" binding:"required,slug,max=100" example:"start"`
	Name          string          `json:"name" binding:"required,min=1,max=200" example:"Start"`
	Description   string          `json:"description" binding:"max=1000"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"14900"`
	Currency      string          `json:"currency" binding:"omitempty,oneof=CZK EUR" example:"CZK"`
	BillingPeriod string          `json:"billing_period" binding:"omitempty,oneof=one_time monthly yearly" example:"one_time"`
	Features      []string        `json:"features" binding:"max=50,dive,max=200"`
	Highlighted   bool            `json:"highlighted"`
	SortOrder     int             `json:"sort_order"`
	Published     bool            `json:"published"`
}

func (r PricingRequest) input() content.PricingInput {
	return content.PricingInput{
		Slug:          r.Slug,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Currency:      r.Currency,
		BillingPeriod: content.BillingPeriod(r.BillingPeriod),
		Features:      r.Features,
		Highlighted:   r.Highlighted,
		SortOrder:     r.SortOrder,
		Published:     r.Published,
	}
}

// PortfolioRequest creates or replaces a portfolio item
// @Description Portfolio reference
type PortfolioRequest struct {
	Locale      string     `json:"locale" binding:"omitempty,locale" example:"cs"`
	Slug        string     `json:"slug" binding:"required,slug,max=100" example:"pekarna-novak"`
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	ClientName  string     `json:"client_name" binding:"max=200"`
	Description string     `json:"description"`
	ProjectURL  string     `json:"project_url" binding:"omitempty,url,max=500"`
	ImageKey    string     `json:"image_key" binding:"max=500"`
	Tags        []string   `json:"tags" binding:"max=20,dive,max=50"`
	CompletedAt *time.Time `json:"completed_at"`
	SortOrder   int        `json:"sort_order"`
	Published   bool       `json:"published"`
}

func (r PortfolioRequest) input() content.PortfolioInput {
	return content.PortfolioInput{
		Slug:        r.Slug,
		Title:       r.Title,
		ClientName:  r.ClientName,
		Description: r.Description,
		ProjectURL:  r.ProjectURL,
		ImageKey:    r.ImageKey,
		Tags:        r.Tags,
		CompletedAt: r.CompletedAt,
		SortOrder:   r.SortOrder,
		Published:   r.Published,
	}
}

// BlockRequest sets the text of a content block
// @Description Content block value
type BlockRequest struct {
	Value string `json:"value" binding:"max=20000"`
}

// ImageUploadRequest asks for a presigned upload URL
// @Description Image upload request
type ImageUploadRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=portfolio blog" example:"portfolio"`
	Filename    string `json:"filename" binding:"required,max=200" example:"homepage.png"`
	ContentType string `json:"content_type" binding:"required" example:"image/png"`
}

// ListContentQuery represents query parameters for admin content lists
// @Description Content list filters
type ListContentQuery struct {
	Locale    string `form:"locale" binding:"omitempty,locale"`
	Published *bool  `form:"published"`
	Search    string `form:"search"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (q ListContentQuery) input() contentapp.ListContentInput {
	return contentapp.ListContentInput{
		Locale:    q.Locale,
		Published: q.Published,
		Search:    q.Search,
		Page:      q.Page,
		PageSize:  q.PageSize,
		OrderBy:   q.OrderBy,
		OrderDir:  q.OrderDir,
	}
}

// BlocksQuery selects content blocks
// @Description Block filters
type BlocksQuery struct {
	Locale string `form:"locale" binding:"omitempty,locale"`
	Prefix string `form:"prefix"`
}
