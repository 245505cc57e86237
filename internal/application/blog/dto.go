package blog

import (
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/blog"
)

// CreatePostInput creates a draft post
type CreatePostInput struct {
	Locale          string
	Slug            string
	Title           string
	Excerpt         string
	Body            string
	CoverImageKey   string
	Tags            []string
	MetaDescription string
	AuthorID        *uuid.UUID
}

// UpdatePostInput replaces the editable fields of a post
type UpdatePostInput struct {
	Slug            string
	Title           string
	Excerpt         string
	Body            string
	CoverImageKey   string
	Tags            []string
	MetaDescription string
}

// ListPostsInput filters the admin post list
type ListPostsInput struct {
	Status    string
	Locale    string
	Tag       string
	Generated *bool
	Search    string
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
}

// GenerateDraftInput asks the AI provider for a draft
type GenerateDraftInput struct {
	Topic    string
	Locale   string
	Keywords []string
}

// PostDTO is a post as returned by the API
type PostDTO struct {
	ID              uuid.UUID  `json:"id"`
	Locale          string     `json:"locale"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Excerpt         string     `json:"excerpt"`
	Body            string     `json:"body,omitempty"`
	CoverImageKey   string     `json:"cover_image_key,omitempty"`
	CoverImageURL   string     `json:"cover_image_url,omitempty"`
	Tags            []string   `json:"tags"`
	MetaDescription string     `json:"meta_description,omitempty"`
	AuthorID        *uuid.UUID `json:"author_id,omitempty"`
	Generated       bool       `json:"generated"`
	Status          string     `json:"status"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	ReadingMinutes  int        `json:"reading_minutes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToPostDTO converts a domain post
func ToPostDTO(p *blog.Post) PostDTO {
	return PostDTO{
		ID:              p.ID,
		Locale:          string(p.Locale),
		Slug:            p.Slug,
		Title:           p.Title,
		Excerpt:         p.Excerpt,
		Body:            p.Body,
		CoverImageKey:   p.CoverImageKey,
		Tags:            p.Tags,
		MetaDescription: p.MetaDescription,
		AuthorID:        p.AuthorID,
		Generated:       p.Generated,
		Status:          string(p.Status),
		ScheduledAt:     p.ScheduledAt,
		PublishedAt:     p.PublishedAt,
		ReadingMinutes:  p.ReadingMinutes(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
