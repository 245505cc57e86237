package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Filter keys understood by PostRepository.FindAll
const (
	FilterStatus    = "status"
	FilterLocale    = "locale"
	FilterTag       = "tag"
	FilterGenerated = "generated"
)

// PostRepository persists blog posts
type PostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	FindBySlug(ctx context.Context, locale shared.Locale, slug string) (*Post, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Post, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindDue returns scheduled posts whose time is at or before now
	FindDue(ctx context.Context, now time.Time) ([]Post, error)
	ExistsBySlug(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}
