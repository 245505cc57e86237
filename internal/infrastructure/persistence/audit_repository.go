package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/audit"
	"github.com/webstudio/backend/internal/domain/outreach"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.AuditRepository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.WebsiteAudit, error) {
	var model models.WebsiteAuditModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormAuditRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.WebsiteAudit, error) {
	q := r.applyFilter(r.db.WithContext(ctx).Model(&models.WebsiteAuditModel{}), filter)
	q = paginate(order(q, filter, auditSort, "created_at"), filter)

	var rows []models.WebsiteAuditModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]audit.WebsiteAudit, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormAuditRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.WebsiteAuditModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormAuditRepository) Save(ctx context.Context, a *audit.WebsiteAudit) error {
	return saveVersioned(r.db.WithContext(ctx), models.WebsiteAuditModelFromDomain(a), &a.Aggregate)
}

func (r *GormAuditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("audit_id = ?", id).Delete(&models.OutreachMessageModel{}).Error; err != nil {
			return err
		}
		return deleteByID(ctx, tx, &models.WebsiteAuditModel{}, id)
	})
}

func (r *GormAuditRepository) applyFilter(q *gorm.DB, filter shared.Filter) *gorm.DB {
	q = search(q, filter.Search, "domain", "url", "company_name")
	if v, ok := filterValue(filter, audit.FilterStatus); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterValue(filter, audit.FilterGrade); ok {
		q = q.Where("grade = ?", v)
	}
	if v, ok := filterValue(filter, audit.FilterBatch); ok {
		q = q.Where("batch_id = ?", v)
	}
	return q
}

// GormOutreachRepository implements outreach.MessageRepository using GORM
type GormOutreachRepository struct {
	db *gorm.DB
}

func NewGormOutreachRepository(db *gorm.DB) *GormOutreachRepository {
	return &GormOutreachRepository{db: db}
}

func (r *GormOutreachRepository) Save(ctx context.Context, m *outreach.Message) error {
	return r.db.WithContext(ctx).Save(models.OutreachMessageModelFromDomain(m)).Error
}

func (r *GormOutreachRepository) FindByAudit(ctx context.Context, auditID uuid.UUID) ([]outreach.Message, error) {
	var rows []models.OutreachMessageModel
	if err := r.db.WithContext(ctx).
		Where("audit_id = ?", auditID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]outreach.Message, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormOutreachRepository) CountByChannelAndBand(ctx context.Context, channel outreach.Channel, band outreach.Band) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OutreachMessageModel{}).
		Where("channel = ? AND band = ?", channel, band).
		Count(&count).Error
	return count, err
}

var (
	_ audit.AuditRepository      = (*GormAuditRepository)(nil)
	_ outreach.MessageRepository = (*GormOutreachRepository)(nil)
)
