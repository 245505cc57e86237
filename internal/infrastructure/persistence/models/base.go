package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's Entity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain Entity
func (m *BaseModel) ToDomain() shared.Entity {
	return shared.Entity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// FromDomainEntity populates BaseModel from domain Entity
func (m *BaseModel) FromDomainEntity(e shared.Entity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregate populates AggregateModel from domain Aggregate
func (m *AggregateModel) FromDomainAggregate(a shared.Aggregate) {
	m.FromDomainEntity(a.Entity)
	m.Version = a.Version
}

// ToAggregate rebuilds the domain aggregate base without pending events
func (m *AggregateModel) ToAggregate() shared.Aggregate {
	return shared.RestoreAggregate(m.BaseModel.ToDomain(), m.Version)
}

// Versioned exposes the versioned columns of any model embedding AggregateModel
func (m *AggregateModel) Versioned() *AggregateModel {
	return m
}

// StringList stores a []string as a JSON array in a text column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src any) error {
	return scanJSON(src, (*[]string)(l))
}

// Strings returns a non-nil copy
func (l StringList) Strings() []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
