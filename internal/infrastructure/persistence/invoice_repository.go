package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/invoice"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoice.InvoiceRepository using GORM.
// Items are always loaded and replaced together with their invoice.
type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withItems(ctx).Where("number = ?", number).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoice.Invoice, error) {
	q := r.applyFilter(r.withItems(ctx).Model(&models.InvoiceModel{}), filter)
	q = paginate(order(q, filter, invoiceSort, "created_at"), filter)

	var rows []models.InvoiceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]invoice.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).Count(&count).Error
	return count, err
}

// Save writes the invoice header under its version check and replaces the
// items, all in one transaction. A stale invoice fails with
// shared.ErrConcurrencyConflict and leaves the enclosing transaction to roll back.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := writeVersioned(tx, model, inv.StoredVersion()); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", model.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
	if err != nil {
		return err
	}
	inv.MarkStored(model.Version)
	return nil
}

func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormInvoiceRepository) applyFilter(q *gorm.DB, filter shared.Filter) *gorm.DB {
	q = search(q, filter.Search, "client_name", "client_email", "number")
	if v, ok := filterValue(filter, invoice.FilterStatus); ok {
		q = q.Where("status = ?", v)
	}
	if v, ok := filterValue(filter, invoice.FilterCurrency); ok {
		q = q.Where("currency = ?", v)
	}
	if v, ok := filterValue(filter, invoice.FilterFrom); ok {
		q = q.Where("issue_date >= ?", v)
	}
	if v, ok := filterValue(filter, invoice.FilterTo); ok {
		q = q.Where("issue_date <= ?", v)
	}
	if v, ok := filterValue(filter, invoice.FilterOverdueAt); ok {
		if at, isTime := v.(time.Time); isTime {
			v = invoice.OverdueFilterValue(at)
		}
		q = q.Where("status = ? AND due_date < ?", invoice.StatusIssued, v)
	}
	return q
}

var _ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)
