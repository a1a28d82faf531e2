package cache

import (
	"context"
	"testing"
	"time"

	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRef(id uuid.UUID) procurement.ProductRef {
	return procurement.ProductRef{
		ID:             id,
		Code:           "FLOUR-01",
		Name:           "Bread Flour",
		Unit:           "bag",
		BaseUnit:       "kg",
		ConversionRate: decimal.NewFromInt(25),
	}
}

func TestInMemoryProductCache_SetAndGet(t *testing.T) {
	c := NewInMemoryProductCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	tenantID := uuid.New()
	productID := uuid.New()

	got, err := c.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.Nil(t, got, "miss before set")

	require.NoError(t, c.Set(ctx, tenantID, testRef(productID)))

	got, err = c.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bread Flour", got.Name)
	assert.True(t, got.ConversionRate.Equal(decimal.NewFromInt(25)))
}

func TestInMemoryProductCache_TenantIsolation(t *testing.T) {
	c := NewInMemoryProductCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()
	productID := uuid.New()

	require.NoError(t, c.Set(ctx, tenantA, testRef(productID)))

	got, err := c.Get(ctx, tenantB, productID)
	require.NoError(t, err)
	assert.Nil(t, got, "other tenant must not see the entry")
}

func TestInMemoryProductCache_Expiry(t *testing.T) {
	c := NewInMemoryProductCache(10 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	tenantID := uuid.New()
	productID := uuid.New()

	require.NoError(t, c.Set(ctx, tenantID, testRef(productID)))

	time.Sleep(30 * time.Millisecond)

	got, err := c.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry behaves like a miss")
}

func TestInMemoryProductCache_Invalidate(t *testing.T) {
	c := NewInMemoryProductCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	tenantID := uuid.New()
	productID := uuid.New()

	require.NoError(t, c.Set(ctx, tenantID, testRef(productID)))
	require.NoError(t, c.Invalidate(ctx, tenantID, productID))

	got, err := c.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, c.Size())
}

func TestInMemoryProductCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryProductCache(time.Minute)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
