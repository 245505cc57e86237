package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/blog"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPostRepository implements blog.PostRepository using GORM
type GormPostRepository struct {
	db *gorm.DB
}

func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	var model models.PostModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormPostRepository) FindBySlug(ctx context.Context, locale shared.Locale, slug string) (*blog.Post, error) {
	var model models.PostModel
	if err := r.db.WithContext(ctx).Where("locale = ? AND slug = ?", locale, slug).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormPostRepository) FindAll(ctx context.Context, filter shared.Filter) ([]blog.Post, error) {
	q := r.applyFilter(r.db.WithContext(ctx).Model(&models.PostModel{}), filter)
	q = paginate(order(q, filter, postSort, "created_at"), filter)
	return r.find(q)
}

func (r *GormPostRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PostModel{}), filter).Count(&count).Error
	return count, err
}

// FindDue returns scheduled posts that should be live by now, oldest first
func (r *GormPostRepository) FindDue(ctx context.Context, now time.Time) ([]blog.Post, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", blog.StatusScheduled, now.UTC()).
		Order("scheduled_at ASC").Order("id ASC")
	return r.find(q)
}

func (r *GormPostRepository) ExistsBySlug(ctx context.Context, locale shared.Locale, slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBySlug(ctx, r.db, &models.PostModel{}, locale, slug, excludeID)
}

func (r *GormPostRepository) Save(ctx context.Context, p *blog.Post) error {
	return saveVersioned(r.db.WithContext(ctx), models.PostModelFromDomain(p), &p.Aggregate)
}

func (r *GormPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.PostModel{}, id)
}

func (r *GormPostRepository) find(q *gorm.DB) ([]blog.Post, error) {
	var rows []models.PostModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]blog.Post, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormPostRepository) applyFilter(q *gorm.DB, filter shared.Filter) *gorm.DB {
	q = search(q, filter.Search, "title", "excerpt")
	if v, ok := filterValue(filter, blog.FilterStatus); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterValue(filter, blog.FilterLocale); ok {
		q = q.Where("locale = ?", v)
	}
	if v, ok := filterValue(filter, blog.FilterGenerated); ok {
		q = q.Where("generated = ?", v)
	}
	if v, ok := filterValue(filter, blog.FilterTag); ok {
		q = q.Where("tags LIKE ? ESCAPE '\\'", "%"+escapeLike(tagToken(v))+"%")
	}
	return q
}

// tagToken renders a tag the way it appears inside the stored JSON array
func tagToken(v any) string {
	b, err := json.Marshal(fmt.Sprint(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

var _ blog.PostRepository = (*GormPostRepository)(nil)
