package shared

import (
	"time"

	"github.com/google/uuid"
)

// TenantAggregate carries the fields every persisted aggregate in this
// service shares: identity, audit timestamps, an optimistic-lock version,
// and the owning tenant. A tenant is one hotel business unit; nothing in
// the domain is global, so there is no tenant-less variant.
type TenantAggregate struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	Version   int        `gorm:"not null;default:1"`
}

// NewTenantAggregate mints identity and audit fields for a freshly
// created aggregate.
func NewTenantAggregate(tenantID uuid.UUID) TenantAggregate {
	now := time.Now()
	return TenantAggregate{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Touch records a state change: bumps the optimistic-lock version and
// the update timestamp together.
func (a *TenantAggregate) Touch() {
	a.Version++
	a.UpdatedAt = time.Now()
}

// SetCreatedBy records the user who created the aggregate.
func (a *TenantAggregate) SetCreatedBy(userID uuid.UUID) {
	a.CreatedBy = &userID
}
