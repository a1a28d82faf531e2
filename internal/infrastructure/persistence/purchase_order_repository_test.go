package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/carmen/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/carmen/backend/internal/infrastructure/persistence/models"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.PurchaseOrderModel{}, &models.PurchaseOrderItemModel{})
	require.NoError(t, err)

	return db
}

func newPersistedOrder(t *testing.T, tenantID uuid.UUID, orderNumber string) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder(tenantID, orderNumber, uuid.New(), "Siam Food Supply", "USD")
	require.NoError(t, err)
	return order
}

func flourRef() procurement.ProductRef {
	return procurement.ProductRef{
		ID:             uuid.New(),
		Code:           "FLOUR-01",
		Name:           "Bread Flour",
		Unit:           "bag",
		BaseUnit:       "kg",
		ConversionRate: decimal.NewFromInt(25),
	}
}

func TestGormPurchaseOrderRepository_SaveAndFind(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order := newPersistedOrder(t, tenantID, "PO-2026-00001")

	item, err := procurement.NewLineItem(flourRef(),
		decimal.NewFromInt(10), decimal.NewFromInt(5),
		decimal.NewFromInt(2), decimal.NewFromInt(1), false, "")
	require.NoError(t, err)
	require.NoError(t, order.AddLine(item))

	require.NoError(t, repo.Save(ctx, order))

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00001", loaded.OrderNumber)
	assert.Equal(t, "Siam Food Supply", loaded.VendorName)
	assert.Equal(t, procurement.PurchaseOrderStatusDraft, loaded.Status)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, item.ID, loaded.Items[0].ID)
	assert.True(t, loaded.Items[0].SubTotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, loaded.Items[0].BaseQuantity.Equal(decimal.NewFromInt(250)))
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(49)))
	assert.False(t, loaded.Items[0].IsNew)
}

func TestGormPurchaseOrderRepository_SaveDeletesRemovedRows(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order := newPersistedOrder(t, tenantID, "PO-2026-00001")

	first, err := procurement.NewLineItem(flourRef(),
		decimal.NewFromInt(1), decimal.NewFromInt(5),
		decimal.Zero, decimal.Zero, false, "")
	require.NoError(t, err)
	second, err := procurement.NewLineItem(flourRef(),
		decimal.NewFromInt(2), decimal.NewFromInt(8),
		decimal.Zero, decimal.Zero, false, "")
	require.NoError(t, err)

	require.NoError(t, order.AddLine(first))
	require.NoError(t, order.AddLine(second))
	require.NoError(t, repo.Save(ctx, order))

	cs := procurement.ChangeSet{Remove: []procurement.ItemRef{{ID: first.ID}}}
	require.NoError(t, order.ApplyChangeSet(cs))
	require.NoError(t, repo.Save(ctx, order))

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, second.ID, loaded.Items[0].ID)

	var rowCount int64
	require.NoError(t, db.Model(&models.PurchaseOrderItemModel{}).Count(&rowCount).Error)
	assert.Equal(t, int64(1), rowCount)
}

func TestGormPurchaseOrderRepository_TenantIsolation(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	order := newPersistedOrder(t, uuid.New(), "PO-2026-00001")
	require.NoError(t, repo.Save(ctx, order))

	_, err := repo.FindByIDForTenant(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByOrderNumber(ctx, uuid.New(), "PO-2026-00001")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPurchaseOrderRepository_FindByOrderNumber(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order := newPersistedOrder(t, tenantID, "PO-2026-00042")
	require.NoError(t, repo.Save(ctx, order))

	loaded, err := repo.FindByOrderNumber(ctx, tenantID, "PO-2026-00042")
	require.NoError(t, err)
	assert.Equal(t, order.ID, loaded.ID)
}

func TestGormPurchaseOrderRepository_GenerateOrderNumber(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	year := time.Now().Year()

	t.Run("starts at one for an empty tenant", func(t *testing.T) {
		number, err := repo.GenerateOrderNumber(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PO-%d-00001", year), number)
	})

	t.Run("continues from the highest existing number", func(t *testing.T) {
		order := newPersistedOrder(t, tenantID, fmt.Sprintf("PO-%d-00007", year))
		require.NoError(t, repo.Save(ctx, order))

		number, err := repo.GenerateOrderNumber(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PO-%d-00008", year), number)
	})

	t.Run("sequences are independent per tenant", func(t *testing.T) {
		number, err := repo.GenerateOrderNumber(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PO-%d-00001", year), number)
	})
}

func TestGormPurchaseOrderRepository_FindAllForTenant(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for i := 1; i <= 3; i++ {
		order := newPersistedOrder(t, tenantID, fmt.Sprintf("PO-2026-%05d", i))
		require.NoError(t, repo.Save(ctx, order))
	}
	other := newPersistedOrder(t, uuid.New(), "PO-2026-00001")
	require.NoError(t, repo.Save(ctx, other))

	t.Run("lists only the tenant's orders", func(t *testing.T) {
		filter := shared.DefaultFilter()
		orders, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, orders, 3)

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2
		filter.OrderBy = "order_number"
		filter.OrderDir = "asc"

		orders, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "PO-2026-00001", orders[0].OrderNumber)

		filter.Page = 2
		orders, err = repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "PO-2026-00003", orders[0].OrderNumber)
	})

	t.Run("returns items in sequence order", func(t *testing.T) {
		itemTenant := uuid.New()
		withItems := newPersistedOrder(t, itemTenant, "PO-2026-00099")
		ids := make([]uuid.UUID, 0, 3)
		for i := 1; i <= 3; i++ {
			item, err := procurement.NewLineItem(flourRef(),
				decimal.NewFromInt(int64(i)), decimal.NewFromInt(5),
				decimal.Zero, decimal.Zero, false, "")
			require.NoError(t, err)
			require.NoError(t, withItems.AddLine(item))
			ids = append(ids, item.ID)
		}
		require.NoError(t, repo.Save(ctx, withItems))

		// Reverse the stored sequences so storage order and sequence disagree
		for i, id := range ids {
			require.NoError(t, db.Model(&models.PurchaseOrderItemModel{}).
				Where("id = ?", id).
				Update("sequence", 3-i).Error)
		}

		orders, err := repo.FindAllForTenant(ctx, itemTenant, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, orders, 1)
		require.Len(t, orders[0].Items, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{orders[0].Items[0].Sequence, orders[0].Items[1].Sequence, orders[0].Items[2].Sequence})
		assert.Equal(t, ids[2], orders[0].Items[0].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = procurement.PurchaseOrderStatusDraft

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		filter.Filters["status"] = procurement.PurchaseOrderStatusVoided
		count, err = repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
