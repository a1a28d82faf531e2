package procurement

import (
	"context"

	"github.com/carmen/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines persistence operations for purchase orders
type PurchaseOrderRepository interface {
	Save(ctx context.Context, order *PurchaseOrder) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrder, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// GenerateOrderNumber produces the next sequential order number for the
	// tenant, e.g. PO-2026-00042
	GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
