package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/content"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// publicListSize caps public lists; the site never shows more items per locale
const publicListSize = 100

// ContentService manages the editable site content: services, pricing, portfolio and text blocks
type ContentService struct {
	services  content.ServiceRepository
	pricing   content.PricingRepository
	portfolio content.PortfolioRepository
	blocks    content.BlockRepository
	storage   ObjectStorage
	logger    *zap.Logger
	now       func() time.Time
}

// NewContentService creates a content service. storage may be nil when uploads are disabled.
func NewContentService(
	services content.ServiceRepository,
	pricing content.PricingRepository,
	portfolio content.PortfolioRepository,
	blocks content.BlockRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *ContentService {
	return &ContentService{
		services:  services,
		pricing:   pricing,
		portfolio: portfolio,
		blocks:    blocks,
		storage:   storage,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateService adds a service in one locale
func (s *ContentService) CreateService(ctx context.Context, locale string, in content.ServiceInput) (*ServiceDTO, error) {
	loc, err := shared.ParseLocale(locale)
	if err != nil {
		return nil, err
	}
	svc, err := content.NewService(loc, in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, s.services.ExistsBySlug, svc.Locale, svc.Slug, nil); err != nil {
		return nil, err
	}
	if err := s.services.Save(ctx, svc); err != nil {
		return nil, err
	}
	s.logger.Info("Service created", zap.String("slug", svc.Slug), zap.String("locale", string(svc.Locale)))
	dto := ToServiceDTO(svc)
	return &dto, nil
}

// GetService returns a service by id
func (s *ContentService) GetService(ctx context.Context, id uuid.UUID) (*ServiceDTO, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Service", err)
	}
	dto := ToServiceDTO(svc)
	return &dto, nil
}

// UpdateService replaces the editable fields of a service
func (s *ContentService) UpdateService(ctx context.Context, id uuid.UUID, in content.ServiceInput) (*ServiceDTO, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Service", err)
	}
	if err := svc.Update(in); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, s.services.ExistsBySlug, svc.Locale, svc.Slug, &svc.ID); err != nil {
		return nil, err
	}
	if err := s.services.Save(ctx, svc); err != nil {
		return nil, err
	}
	dto := ToServiceDTO(svc)
	return &dto, nil
}

// DeleteService removes a service
func (s *ContentService) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.services.Delete(ctx, id); err != nil {
		return notFound("Service", err)
	}
	return nil
}

// ListServices is the admin list
func (s *ContentService) ListServices(ctx context.Context, input ListContentInput) (shared.Paginated[ServiceDTO], error) {
	return listPage(ctx, adminFilter(input), s.services.FindAll, s.services.Count, ToServiceDTO)
}

// PublishedServices lists the services shown on the site
func (s *ContentService) PublishedServices(ctx context.Context, locale shared.Locale) ([]ServiceDTO, error) {
	items, err := s.services.FindAll(ctx, publicFilter(locale))
	if err != nil {
		return nil, err
	}
	return convert(items, ToServiceDTO), nil
}

// PublishedService returns a published service by slug
func (s *ContentService) PublishedService(ctx context.Context, locale shared.Locale, slug string) (*ServiceDTO, error) {
	svc, err := s.services.FindBySlug(ctx, locale, slug)
	if err != nil {
		return nil, notFound("Service", err)
	}
	if !svc.Published {
		return nil, shared.NewDomainError("NOT_FOUND", "Service not found")
	}
	dto := ToServiceDTO(svc)
	return &dto, nil
}

// ServiceLocales lists the locales with a published service under slug
func (s *ContentService) ServiceLocales(ctx context.Context, slug string) ([]shared.Locale, error) {
	return s.services.LocalesForSlug(ctx, slug)
}

type slugCheck func(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error)

func (s *ContentService) ensureSlugFree(ctx context.Context, exists slugCheck, locale shared.Locale, slug string, excludeID *uuid.UUID) error {
	taken, err := exists(ctx, locale, slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError("SLUG_EXISTS", "Slug "+slug+" is already used in locale "+string(locale))
	}
	return nil
}

func adminFilter(input ListContentInput) shared.Filter {
	filter := shared.DefaultFilter()
	// editor order unless the caller asks otherwise
	filter.OrderBy = input.OrderBy
	filter.OrderDir = input.OrderDir
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 && input.PageSize <= 100 {
		filter.PageSize = input.PageSize
	}
	filter.Search = strings.TrimSpace(input.Search)
	if input.Locale != "" {
		filter.Filters[content.FilterLocale] = shared.LocaleOrDefault(input.Locale)
	}
	if input.Published != nil {
		filter.Filters[content.FilterPublished] = *input.Published
	}
	return filter
}

func publicFilter(locale shared.Locale) shared.Filter {
	filter := shared.DefaultFilter()
	filter.OrderBy = ""
	filter.PageSize = publicListSize
	filter.Filters[content.FilterLocale] = locale
	filter.Filters[content.FilterPublished] = true
	return filter
}

func listPage[T, D any](
	ctx context.Context,
	filter shared.Filter,
	find func(context.Context, shared.Filter) ([]T, error),
	count func(context.Context, shared.Filter) (int64, error),
	conv func(*T) D,
) (shared.Paginated[D], error) {
	items, err := find(ctx, filter)
	if err != nil {
		return shared.Paginated[D]{}, err
	}
	total, err := count(ctx, filter)
	if err != nil {
		return shared.Paginated[D]{}, err
	}
	return shared.NewPaginated(convert(items, conv), total, filter.Page, filter.PageSize), nil
}

func convert[T, D any](items []T, conv func(*T) D) []D {
	out := make([]D, len(items))
	for i := range items {
		out[i] = conv(&items[i])
	}
	return out
}

func notFound(what string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.WrapDomainError("NOT_FOUND", what+" not found", err)
	}
	return err
}
