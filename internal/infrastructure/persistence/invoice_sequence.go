package persistence

import (
	"context"
	"fmt"

	"github.com/webstudio/backend/internal/domain/invoice"
	"gorm.io/gorm"
)

// GormInvoiceSequence increments a per-year counter row. The single upsert
// statement takes a row lock, so concurrent issuers never share a number.
type GormInvoiceSequence struct {
	db *gorm.DB
}

func NewGormInvoiceSequence(db *gorm.DB) *GormInvoiceSequence {
	return &GormInvoiceSequence{db: db}
}

const nextSequenceSQL = `INSERT INTO invoice_sequences (year, last_value) VALUES (?, 1)
ON CONFLICT (year) DO UPDATE SET last_value = invoice_sequences.last_value + 1
RETURNING last_value`

func (s *GormInvoiceSequence) Next(ctx context.Context, year int) (int, error) {
	var value int
	if err := s.db.WithContext(ctx).Raw(nextSequenceSQL, year).Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("failed to advance invoice sequence for %d: %w", year, err)
	}
	if value < 1 {
		return 0, fmt.Errorf("invoice sequence for %d returned %d", year, value)
	}
	return value, nil
}

var _ invoice.NumberSequence = (*GormInvoiceSequence)(nil)
