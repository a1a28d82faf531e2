package models

import (
	"time"

	"github.com/carmen/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantAggregateModel carries the persistence columns shared by every
// tenant-scoped aggregate table: identity, audit timestamps, optimistic-lock
// version, owning tenant, and creator.
type TenantAggregateModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	Version   int        `gorm:"not null;default:1"`
}

// FromAggregate copies the shared aggregate fields into the model.
func (m *TenantAggregateModel) FromAggregate(a shared.TenantAggregate) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.CreatedBy = a.CreatedBy
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToAggregate copies the model's shared columns back onto a domain aggregate.
func (m *TenantAggregateModel) ToAggregate(a *shared.TenantAggregate) {
	a.ID = m.ID
	a.TenantID = m.TenantID
	a.CreatedBy = m.CreatedBy
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	a.Version = m.Version
}
