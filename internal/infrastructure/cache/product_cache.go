package cache

import (
	"context"

	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/google/uuid"
)

// ProductCache caches resolved product references so the order item
// endpoints do not hit the catalog tables for every row edit.
// A miss is not an error; callers fall through to the repository.
type ProductCache interface {
	Get(ctx context.Context, tenantID, productID uuid.UUID) (*procurement.ProductRef, error)
	Set(ctx context.Context, tenantID uuid.UUID, ref procurement.ProductRef) error
	Invalidate(ctx context.Context, tenantID, productID uuid.UUID) error
	Close() error
}
