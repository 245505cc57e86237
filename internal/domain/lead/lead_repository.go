package lead

import (
	"context"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// LeadRepository persists leads
type LeadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	// FindAll honours filter.Filters keys "status", "source" and "locale"
	FindAll(ctx context.Context, filter shared.Filter) ([]Lead, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	Save(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
}
