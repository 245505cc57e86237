package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Filter keys understood by AuditRepository.FindAll
const (
	FilterStatus = "status"
	FilterGrade  = "grade"
	FilterBatch  = "batch_id"
)

// AuditRepository persists website audits
type AuditRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WebsiteAudit, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]WebsiteAudit, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, a *WebsiteAudit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Fetcher loads a page and extracts its metrics
type Fetcher interface {
	Fetch(ctx context.Context, url string) (PageMetrics, error)
}
