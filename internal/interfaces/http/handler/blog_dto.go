package handler

import "time"

// ============================================================================
// Blog Request DTOs
// ============================================================================

// CreatePostRequest creates a draft post
// @Description Blog post draft
type CreatePostRequest struct {
	Locale          string   `json:"locale" binding:"omitempty,locale" example:"cs"`
	Slug            string   `json:"slug" binding:"omitempty,slug,max=150"`
	Title           string   `json:"title" binding:"required,min=1,max=200" example:"Jak vybrat doménu"`
	Excerpt         string   `json:"excerpt" binding:"max=500"`
	Body            string   `json:"body"`
	CoverImageKey   string   `json:"cover_image_key" binding:"max=500"`
	Tags            []string `json:"tags" binding:"max=20,dive,max=50"`
	MetaDescription string   `json:"meta_description" binding:"max=300"`
}

// UpdatePostRequest replaces the editable fields of a post
// @Description Blog post update
type UpdatePostRequest struct {
	Slug            string   `json:"slug" binding:"omitempty,slug,max=150"`
	Title           string   `json:"title" binding:"required,min=1,max=200"`
	Excerpt         string   `json:"excerpt" binding:"max=500"`
	Body            string   `json:"body"`
	CoverImageKey   string   `json:"cover_image_key" binding:"max=500"`
	Tags            []string `json:"tags" binding:"max=20,dive,max=50"`
	MetaDescription string   `json:"meta_description" binding:"max=300"`
}

// SchedulePostRequest sets a future publish time
// @Description Publish schedule
type SchedulePostRequest struct {
	PublishAt time.Time `json:"publish_at" binding:"required" example:"2026-11-02T08:00:00Z"`
}

// GenerateDraftRequest asks the AI provider for a draft
// @Description Draft generation request
type GenerateDraftRequest struct {
	Topic    string   `json:"topic" binding:"required,min=3,max=300" example:"Lokální SEO pro řemeslníky"`
	Locale   string   `json:"locale" binding:"omitempty,locale" example:"cs"`
	Keywords []string `json:"keywords" binding:"max=10,dive,max=60"`
}

// ListPostsQuery represents query parameters for the admin post list
// @Description Post list filters
type ListPostsQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=draft scheduled published archived"`
	Locale    string `form:"locale" binding:"omitempty,locale"`
	Tag       string `form:"tag"`
	Generated *bool  `form:"generated"`
	Search    string `form:"search"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PublicPostsQuery pages through the public blog
// @Description Public blog filters
type PublicPostsQuery struct {
	Tag      string `form:"tag"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=50"`
}
