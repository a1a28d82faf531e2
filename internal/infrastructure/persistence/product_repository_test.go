package persistence

import (
	"context"
	"testing"

	"github.com/carmen/backend/internal/domain/catalog"
	"github.com/carmen/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{})
	require.NoError(t, err)

	return db
}

func newPersistedProduct(t *testing.T, tenantID uuid.UUID, code string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, code, "Bread Flour", "bag", "kg",
		decimal.NewFromInt(25), decimal.NewFromFloat(18.50), decimal.NewFromInt(7))
	require.NoError(t, err)
	return product
}

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	product := newPersistedProduct(t, tenantID, "FLOUR-01")
	require.NoError(t, repo.Save(ctx, product))

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "FLOUR-01", loaded.Code)
	assert.Equal(t, "bag", loaded.Unit)
	assert.True(t, loaded.ConversionRate.Equal(decimal.NewFromInt(25)))
	assert.True(t, loaded.Active)
}

func TestGormProductRepository_FindByCode(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	product := newPersistedProduct(t, tenantID, "FLOUR-01")
	require.NoError(t, repo.Save(ctx, product))

	loaded, err := repo.FindByCode(ctx, tenantID, "FLOUR-01")
	require.NoError(t, err)
	assert.Equal(t, product.ID, loaded.ID)

	_, err = repo.FindByCode(ctx, tenantID, "NO-SUCH-CODE")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByCode(ctx, uuid.New(), "FLOUR-01")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_SavePersistsUpdates(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	product := newPersistedProduct(t, tenantID, "FLOUR-01")
	require.NoError(t, repo.Save(ctx, product))

	require.NoError(t, product.UpdatePrice(decimal.NewFromInt(20)))
	product.Deactivate()
	require.NoError(t, repo.Save(ctx, product))

	loaded, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.True(t, loaded.StandardPrice.Equal(decimal.NewFromInt(20)))
	assert.False(t, loaded.Active)
}

func TestGormProductRepository_FindAllForTenant(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	active := newPersistedProduct(t, tenantID, "FLOUR-01")
	require.NoError(t, repo.Save(ctx, active))

	retired := newPersistedProduct(t, tenantID, "FLOUR-02")
	retired.Deactivate()
	require.NoError(t, repo.Save(ctx, retired))

	other := newPersistedProduct(t, uuid.New(), "FLOUR-01")
	require.NoError(t, repo.Save(ctx, other))

	t.Run("defaults to code order", func(t *testing.T) {
		products, err := repo.FindAllForTenant(ctx, tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "FLOUR-01", products[0].Code)
		assert.Equal(t, "FLOUR-02", products[1].Code)
	})

	t.Run("filters by active", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["active"] = true

		products, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "FLOUR-01", products[0].Code)

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
