package invoice

import (
	"context"

	"github.com/webstudio/backend/internal/domain/invoice"
)

// TransactionScope runs invoice writes in one database transaction.
// Issuing uses it so a number is never consumed by an invoice that failed to save.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are scoped to the current transaction
type TransactionalRepositories interface {
	InvoiceRepo() invoice.InvoiceRepository
	Sequence() invoice.NumberSequence
}
