package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/content"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// existsBySlug checks the (locale, slug) uniqueness shared by localized content tables
func existsBySlug(ctx context.Context, db *gorm.DB, model any, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error) {
	q := db.WithContext(ctx).Model(model).Where("locale = ? AND slug = ?", locale, slug)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// contentFilter applies the locale and published keys
func contentFilter(q *gorm.DB, filter shared.Filter, searchColumns ...string) *gorm.DB {
	q = search(q, filter.Search, searchColumns...)
	if v, ok := filterValue(filter, content.FilterLocale); ok {
		q = q.Where("locale = ?", v)
	}
	if v, ok := filterValue(filter, content.FilterPublished); ok {
		q = q.Where("published = ?", v)
	}
	return q
}

// contentOrder defaults to the editor-defined order
func contentOrder(q *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy == "" {
		return q.Order("sort_order ASC").Order("created_at ASC").Order("id ASC")
	}
	return order(q, filter, contentSort, "sort_order")
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	result := db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormServiceRepository implements content.ServiceRepository
type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Service, error) {
	var model models.ServiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormServiceRepository) FindBySlug(ctx context.Context, locale shared.Locale, slug string) (*content.Service, error) {
	var model models.ServiceModel
	if err := r.db.WithContext(ctx).Where("locale = ? AND slug = ?", locale, slug).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormServiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.Service, error) {
	q := contentFilter(r.db.WithContext(ctx).Model(&models.ServiceModel{}), filter, "title", "summary", "slug")
	q = paginate(contentOrder(q, filter), filter)

	var rows []models.ServiceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]content.Service, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormServiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := contentFilter(r.db.WithContext(ctx).Model(&models.ServiceModel{}), filter, "title", "summary", "slug").
		Count(&count).Error
	return count, err
}

func (r *GormServiceRepository) LocalesForSlug(ctx context.Context, slug string) ([]shared.Locale, error) {
	var locales []shared.Locale
	err := r.db.WithContext(ctx).Model(&models.ServiceModel{}).
		Where("slug = ? AND published = ?", slug, true).
		Order("locale ASC").
		Pluck("locale", &locales).Error
	return locales, err
}

func (r *GormServiceRepository) ExistsBySlug(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBySlug(ctx, r.db, &models.ServiceModel{}, locale, slug, excludeID)
}

func (r *GormServiceRepository) Save(ctx context.Context, s *content.Service) error {
	return saveVersioned(r.db.WithContext(ctx), models.ServiceModelFromDomain(s), &s.Aggregate)
}

func (r *GormServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.ServiceModel{}, id)
}

// GormPricingRepository implements content.PricingRepository
type GormPricingRepository struct {
	db *gorm.DB
}

func NewGormPricingRepository(db *gorm.DB) *GormPricingRepository {
	return &GormPricingRepository{db: db}
}

func (r *GormPricingRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.PricingPackage, error) {
	var model models.PricingPackageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormPricingRepository) FindBySlug(ctx context.Context, locale shared.Locale, slug string) (*content.PricingPackage, error) {
	var model models.PricingPackageModel
	if err := r.db.WithContext(ctx).Where("locale = ? AND slug = ?", locale, slug).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormPricingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.PricingPackage, error) {
	q := contentFilter(r.db.WithContext(ctx).Model(&models.PricingPackageModel{}), filter, "name", "description")
	q = paginate(contentOrder(q, filter), filter)

	var rows []models.PricingPackageModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]content.PricingPackage, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormPricingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := contentFilter(r.db.WithContext(ctx).Model(&models.PricingPackageModel{}), filter, "name", "description").
		Count(&count).Error
	return count, err
}

func (r *GormPricingRepository) ExistsBySlug(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBySlug(ctx, r.db, &models.PricingPackageModel{}, locale, slug, excludeID)
}

func (r *GormPricingRepository) Save(ctx context.Context, p *content.PricingPackage) error {
	return saveVersioned(r.db.WithContext(ctx), models.PricingPackageModelFromDomain(p), &p.Aggregate)
}

func (r *GormPricingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.PricingPackageModel{}, id)
}

// GormPortfolioRepository implements content.PortfolioRepository
type GormPortfolioRepository struct {
	db *gorm.DB
}

func NewGormPortfolioRepository(db *gorm.DB) *GormPortfolioRepository {
	return &GormPortfolioRepository{db: db}
}

func (r *GormPortfolioRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.PortfolioItem, error) {
	var model models.PortfolioItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormPortfolioRepository) FindBySlug(ctx context.Context, locale shared.Locale, slug string) (*content.PortfolioItem, error) {
	var model models.PortfolioItemModel
	if err := r.db.WithContext(ctx).Where("locale = ? AND slug = ?", locale, slug).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormPortfolioRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.PortfolioItem, error) {
	q := contentFilter(r.db.WithContext(ctx).Model(&models.PortfolioItemModel{}), filter, "title", "client_name", "description")
	q = paginate(contentOrder(q, filter), filter)

	var rows []models.PortfolioItemModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]content.PortfolioItem, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormPortfolioRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := contentFilter(r.db.WithContext(ctx).Model(&models.PortfolioItemModel{}), filter, "title", "client_name", "description").
		Count(&count).Error
	return count, err
}

func (r *GormPortfolioRepository) ExistsBySlug(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBySlug(ctx, r.db, &models.PortfolioItemModel{}, locale, slug, excludeID)
}

func (r *GormPortfolioRepository) Save(ctx context.Context, p *content.PortfolioItem) error {
	return saveVersioned(r.db.WithContext(ctx), models.PortfolioItemModelFromDomain(p), &p.Aggregate)
}

func (r *GormPortfolioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.PortfolioItemModel{}, id)
}

// GormBlockRepository implements content.BlockRepository
type GormBlockRepository struct {
	db *gorm.DB
}

func NewGormBlockRepository(db *gorm.DB) *GormBlockRepository {
	return &GormBlockRepository{db: db}
}

func (r *GormBlockRepository) Find(ctx context.Context, key string, locale shared.Locale) (*content.Block, error) {
	var model models.ContentBlockModel
	if err := r.db.WithContext(ctx).Where("key = ? AND locale = ?", key, locale).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormBlockRepository) FindByPrefix(ctx context.Context, locale shared.Locale, prefix string) ([]content.Block, error) {
	q := r.db.WithContext(ctx).Where("locale = ?", locale)
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}
	var rows []models.ContentBlockModel
	if err := q.Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]content.Block, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Upsert inserts the block or overwrites the value stored under (key, locale)
func (r *GormBlockRepository) Upsert(ctx context.Context, b *content.Block) error {
	model := models.ContentBlockModelFromDomain(b)
	model.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}, {Name: "locale"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(model).Error
}

func (r *GormBlockRepository) Delete(ctx context.Context, key string, locale shared.Locale) error {
	result := r.db.WithContext(ctx).Where("key = ? AND locale = ?", key, locale).Delete(&models.ContentBlockModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ content.ServiceRepository   = (*GormServiceRepository)(nil)
	_ content.PricingRepository   = (*GormPricingRepository)(nil)
	_ content.PortfolioRepository = (*GormPortfolioRepository)(nil)
	_ content.BlockRepository     = (*GormBlockRepository)(nil)
)
