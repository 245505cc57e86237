package content

import (
	"context"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/content"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreatePortfolio adds a reference project in one locale
func (s *ContentService) CreatePortfolio(ctx context.Context, locale string, in content.PortfolioInput) (*PortfolioDTO, error) {
	loc, err := shared.ParseLocale(locale)
	if err != nil {
		return nil, err
	}
	item, err := content.NewPortfolioItem(loc, in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, s.portfolio.ExistsBySlug, item.Locale, item.Slug, nil); err != nil {
		return nil, err
	}
	if err := s.portfolio.Save(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("Portfolio item created", zap.String("slug", item.Slug), zap.String("locale", string(item.Locale)))
	return s.portfolioDTO(ctx, item), nil
}

func (s *ContentService) GetPortfolio(ctx context.Context, id uuid.UUID) (*PortfolioDTO, error) {
	item, err := s.portfolio.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Portfolio item", err)
	}
	return s.portfolioDTO(ctx, item), nil
}

// UpdatePortfolio replaces the editable fields. A replaced image is removed from storage.
func (s *ContentService) UpdatePortfolio(ctx context.Context, id uuid.UUID, in content.PortfolioInput) (*PortfolioDTO, error) {
	item, err := s.portfolio.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Portfolio item", err)
	}
	oldImage := item.ImageKey
	if err := item.Update(in); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, s.portfolio.ExistsBySlug, item.Locale, item.Slug, &item.ID); err != nil {
		return nil, err
	}
	if err := s.portfolio.Save(ctx, item); err != nil {
		return nil, err
	}
	if oldImage != "" && oldImage != item.ImageKey {
		s.deleteObject(ctx, oldImage)
	}
	return s.portfolioDTO(ctx, item), nil
}

// DeletePortfolio removes the item and its image
func (s *ContentService) DeletePortfolio(ctx context.Context, id uuid.UUID) error {
	item, err := s.portfolio.FindByID(ctx, id)
	if err != nil {
		return notFound("Portfolio item", err)
	}
	if err := s.portfolio.Delete(ctx, id); err != nil {
		return notFound("Portfolio item", err)
	}
	if item.ImageKey != "" {
		s.deleteObject(ctx, item.ImageKey)
	}
	return nil
}

func (s *ContentService) ListPortfolio(ctx context.Context, input ListContentInput) (shared.Paginated[PortfolioDTO], error) {
	page, err := listPage(ctx, adminFilter(input), s.portfolio.FindAll, s.portfolio.Count, ToPortfolioDTO)
	if err != nil {
		return page, err
	}
	s.resolveImages(ctx, page.Items)
	return page, nil
}

// PublishedPortfolio lists the reference projects shown on the site
func (s *ContentService) PublishedPortfolio(ctx context.Context, locale shared.Locale) ([]PortfolioDTO, error) {
	items, err := s.portfolio.FindAll(ctx, publicFilter(locale))
	if err != nil {
		return nil, err
	}
	dtos := convert(items, ToPortfolioDTO)
	s.resolveImages(ctx, dtos)
	return dtos, nil
}

func (s *ContentService) PublishedPortfolioBySlug(ctx context.Context, locale shared.Locale, slug string) (*PortfolioDTO, error) {
	item, err := s.portfolio.FindBySlug(ctx, locale, slug)
	if err != nil {
		return nil, notFound("Portfolio item", err)
	}
	if !item.Published {
		return nil, shared.NewDomainError("NOT_FOUND", "Portfolio item not found")
	}
	return s.portfolioDTO(ctx, item), nil
}

func (s *ContentService) portfolioDTO(ctx context.Context, item *content.PortfolioItem) *PortfolioDTO {
	dto := ToPortfolioDTO(item)
	dto.ImageURL = s.ImageURL(ctx, item.ImageKey)
	return &dto
}

func (s *ContentService) resolveImages(ctx context.Context, items []PortfolioDTO) {
	for i := range items {
		items[i].ImageURL = s.ImageURL(ctx, items[i].ImageKey)
	}
}
