package content

import (
	"context"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/content"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreatePricing adds a pricing package in one locale
func (s *ContentService) CreatePricing(ctx context.Context, locale string, in content.PricingInput) (*PricingDTO, error) {
	loc, err := shared.ParseLocale(locale)
	if err != nil {
		return nil, err
	}
	pkg, err := content.NewPricingPackage(loc, in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, s.pricing.ExistsBySlug, pkg.Locale, pkg.Slug, nil); err != nil {
		return nil, err
	}
	if err := s.pricing.Save(ctx, pkg); err != nil {
		return nil, err
	}
	s.logger.Info("Pricing package created", zap.String("slug", pkg.Slug), zap.String("locale", string(pkg.Locale)))
	dto := ToPricingDTO(pkg)
	return &dto, nil
}

func (s *ContentService) GetPricing(ctx context.Context, id uuid.UUID) (*PricingDTO, error) {
	pkg, err := s.pricing.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Pricing package", err)
	}
	dto := ToPricingDTO(pkg)
	return &dto, nil
}

func (s *ContentService) UpdatePricing(ctx context.Context, id uuid.UUID, in content.PricingInput) (*PricingDTO, error) {
	pkg, err := s.pricing.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Pricing package", err)
	}
	if err := pkg.Update(in); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, s.pricing.ExistsBySlug, pkg.Locale, pkg.Slug, &pkg.ID); err != nil {
		return nil, err
	}
	if err := s.pricing.Save(ctx, pkg); err != nil {
		return nil, err
	}
	dto := ToPricingDTO(pkg)
	return &dto, nil
}

func (s *ContentService) DeletePricing(ctx context.Context, id uuid.UUID) error {
	if err := s.pricing.Delete(ctx, id); err != nil {
		return notFound("Pricing package", err)
	}
	return nil
}

func (s *ContentService) ListPricing(ctx context.Context, input ListContentInput) (shared.Paginated[PricingDTO], error) {
	return listPage(ctx, adminFilter(input), s.pricing.FindAll, s.pricing.Count, ToPricingDTO)
}

// PublishedPricing lists the packages on the pricing page
func (s *ContentService) PublishedPricing(ctx context.Context, locale shared.Locale) ([]PricingDTO, error) {
	items, err := s.pricing.FindAll(ctx, publicFilter(locale))
	if err != nil {
		return nil, err
	}
	return convert(items, ToPricingDTO), nil
}

func (s *ContentService) PublishedPricingBySlug(ctx context.Context, locale shared.Locale, slug string) (*PricingDTO, error) {
	pkg, err := s.pricing.FindBySlug(ctx, locale, slug)
	if err != nil {
		return nil, notFound("Pricing package", err)
	}
	if !pkg.Published {
		return nil, shared.NewDomainError("NOT_FOUND", "Pricing package not found")
	}
	dto := ToPricingDTO(pkg)
	return &dto, nil
}
