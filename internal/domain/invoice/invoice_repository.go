package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// InvoiceRepository persists invoices with their items
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	// FindAll honours filter.Filters keys "status", "currency", "from", "to" and "overdue_at"
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NumberSequence hands out gap-free yearly invoice numbers
type NumberSequence interface {
	// Next atomically increments and returns the counter for year
	Next(ctx context.Context, year int) (int, error)
}

// Filter keys understood by InvoiceRepository.FindAll
const (
	FilterStatus    = "status"
	FilterCurrency  = "currency"
	FilterFrom      = "from"
	FilterTo        = "to"
	FilterOverdueAt = "overdue_at"
)

// OverdueFilterValue normalizes the reference date for the overdue filter
func OverdueFilterValue(now time.Time) time.Time {
	return dateOnly(now)
}
