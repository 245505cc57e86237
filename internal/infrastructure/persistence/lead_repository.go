package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/lead"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLeadRepository implements lead.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	var model models.LeadModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormLeadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]lead.Lead, error) {
	q := r.applyFilter(r.db.WithContext(ctx).Model(&models.LeadModel{}), filter)
	q = paginate(order(q, filter, leadSort, "created_at"), filter)

	var rows []models.LeadModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]lead.Lead, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormLeadRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.LeadModel{}), filter).Count(&count).Error
	return count, err
}

// CountByStatus groups all leads by status
func (r *GormLeadRepository) CountByStatus(ctx context.Context) (map[lead.Status]int64, error) {
	var rows []struct {
		Status lead.Status
		Total  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.LeadModel{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[lead.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *GormLeadRepository) Save(ctx context.Context, l *lead.Lead) error {
	return saveVersioned(r.db.WithContext(ctx), models.LeadModelFromDomain(l), &l.Aggregate)
}

func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LeadModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormLeadRepository) applyFilter(q *gorm.DB, filter shared.Filter) *gorm.DB {
	q = search(q, filter.Search, "name", "email", "company", "phone")
	for _, key := range []string{"status", "source", "locale"} {
		if v, ok := filterValue(filter, key); ok {
			q = q.Where(key+" = ?", v)
		}
	}
	return q
}

var _ lead.LeadRepository = (*GormLeadRepository)(nil)
