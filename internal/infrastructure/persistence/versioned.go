package persistence

import (
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type versionedRow interface {
	Versioned() *models.AggregateModel
}

// writeVersioned inserts row when stored is zero. Otherwise it updates the
// row only while the table still holds version stored, and fails with
// shared.ErrConcurrencyConflict when another writer got there first.
// The version written is always above stored.
func writeVersioned[M any, R interface {
	*M
	versionedRow
}](tx *gorm.DB, row R, stored int) error {
	base := row.Versioned()
	base.Version = max(base.Version, stored+1)

	if stored == 0 {
		return tx.Omit(clause.Associations).Create(row).Error
	}

	result := tx.Model(new(M)).
		Where("id = ? AND version = ?", base.ID, stored).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := tx.Model(new(M)).Where("id = ?", base.ID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

// saveVersioned writes row for agg and moves agg to the written version
func saveVersioned[M any, R interface {
	*M
	versionedRow
}](tx *gorm.DB, row R, agg *shared.Aggregate) error {
	if err := writeVersioned[M](tx, row, agg.StoredVersion()); err != nil {
		return err
	}
	agg.MarkStored(row.Versioned().Version)
	return nil
}
