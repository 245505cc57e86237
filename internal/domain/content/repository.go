package content

import (
	"context"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Filter keys shared by the content repositories
const (
	FilterLocale    = "locale"
	FilterPublished = "published"
)

// ServiceRepository persists services
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)
	FindBySlug(ctx context.Context, locale shared.Locale, slug string) (*Service, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Service, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// LocalesForSlug lists locales that have a published service with this slug
	LocalesForSlug(ctx context.Context, slug string) ([]shared.Locale, error)
	ExistsBySlug(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PricingRepository persists pricing packages
type PricingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PricingPackage, error)
	FindBySlug(ctx context.Context, locale shared.Locale, slug string) (*PricingPackage, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PricingPackage, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySlug(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, p *PricingPackage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PortfolioRepository persists portfolio items
type PortfolioRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PortfolioItem, error)
	FindBySlug(ctx context.Context, locale shared.Locale, slug string) (*PortfolioItem, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PortfolioItem, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySlug(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, p *PortfolioItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlockRepository persists content blocks
type BlockRepository interface {
	Find(ctx context.Context, key string, locale shared.Locale) (*Block, error)
	// FindByPrefix returns blocks of a locale whose key starts with prefix; empty prefix returns all
	FindByPrefix(ctx context.Context, locale shared.Locale, prefix string) ([]Block, error)
	Upsert(ctx context.Context, b *Block) error
	Delete(ctx context.Context, key string, locale shared.Locale) error
}
