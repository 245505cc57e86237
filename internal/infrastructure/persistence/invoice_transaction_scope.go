package persistence

import (
	"context"

	invoiceapp "github.com/webstudio/backend/internal/application/invoice"
	"github.com/webstudio/backend/internal/domain/invoice"
	"gorm.io/gorm"
)

// GormTransactionScope runs invoice writes in one GORM transaction.
// A returned error rolls back every repository call made through it.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos invoiceapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormTransactionalRepositories) InvoiceRepo() invoice.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Sequence returns the number sequence scoped to the current transaction.
func (r *gormTransactionalRepositories) Sequence() invoice.NumberSequence {
	return NewGormInvoiceSequence(r.tx)
}

var (
	_ invoiceapp.TransactionScope          = (*GormTransactionScope)(nil)
	_ invoiceapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
