package procurement

import (
	"testing"

	"github.com/carmen/backend/internal/domain/shared"
	"github.com/carmen/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	order, err := NewPurchaseOrder(uuid.New(), "PO-2026-00001", uuid.New(), "Siam Fresh Produce", valueobject.USD)
	require.NoError(t, err)
	return order
}

func addTestLine(t *testing.T, order *PurchaseOrder, name string, qty, price float64) LineItem {
	t.Helper()
	ref := ProductRef{
		ID:             uuid.New(),
		Code:           "SKU-" + name,
		Name:           name,
		Unit:           "pcs",
		BaseUnit:       "pcs",
		ConversionRate: decimal.NewFromInt(1),
	}
	item, err := NewLineItem(ref, decimal.NewFromFloat(qty), decimal.NewFromFloat(price), decimal.Zero, decimal.Zero, false, "")
	require.NoError(t, err)
	require.NoError(t, order.AddLine(item))
	return item
}

// ============================================
// Status Tests
// ============================================

func TestPurchaseOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  PurchaseOrderStatus
		isValid bool
	}{
		{PurchaseOrderStatusDraft, true},
		{PurchaseOrderStatusSubmitted, true},
		{PurchaseOrderStatusApproved, true},
		{PurchaseOrderStatusSent, true},
		{PurchaseOrderStatusCompleted, true},
		{PurchaseOrderStatusVoided, true},
		{PurchaseOrderStatus("INVALID"), false},
		{PurchaseOrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestPurchaseOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     PurchaseOrderStatus
		to       PurchaseOrderStatus
		canTrans bool
	}{
		// From DRAFT
		{PurchaseOrderStatusDraft, PurchaseOrderStatusSubmitted, true},
		{PurchaseOrderStatusDraft, PurchaseOrderStatusVoided, true},
		{PurchaseOrderStatusDraft, PurchaseOrderStatusApproved, false},
		{PurchaseOrderStatusDraft, PurchaseOrderStatusCompleted, false},
		// From SUBMITTED
		{PurchaseOrderStatusSubmitted, PurchaseOrderStatusApproved, true},
		{PurchaseOrderStatusSubmitted, PurchaseOrderStatusDraft, true},
		{PurchaseOrderStatusSubmitted, PurchaseOrderStatusVoided, true},
		{PurchaseOrderStatusSubmitted, PurchaseOrderStatusSent, false},
		// From APPROVED
		{PurchaseOrderStatusApproved, PurchaseOrderStatusSent, true},
		{PurchaseOrderStatusApproved, PurchaseOrderStatusVoided, true},
		{PurchaseOrderStatusApproved, PurchaseOrderStatusDraft, false},
		// From SENT
		{PurchaseOrderStatusSent, PurchaseOrderStatusCompleted, true},
		{PurchaseOrderStatusSent, PurchaseOrderStatusVoided, false},
		// Terminal states
		{PurchaseOrderStatusCompleted, PurchaseOrderStatusDraft, false},
		{PurchaseOrderStatusCompleted, PurchaseOrderStatusVoided, false},
		{PurchaseOrderStatusVoided, PurchaseOrderStatusDraft, false},
		{PurchaseOrderStatusVoided, PurchaseOrderStatusSubmitted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Construction Tests
// ============================================

func TestNewPurchaseOrder(t *testing.T) {
	order := createTestOrder(t)

	assert.Equal(t, PurchaseOrderStatusDraft, order.Status)
	assert.Equal(t, valueobject.USD, order.Currency)
	assert.Empty(t, order.Items)
	assert.True(t, order.TotalAmount.IsZero())
	assert.Equal(t, 1, order.Version)
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	tenantID := uuid.New()
	vendorID := uuid.New()

	tests := []struct {
		name        string
		orderNumber string
		vendorID    uuid.UUID
		vendorName  string
		wantCode    string
	}{
		{"empty order number", "", vendorID, "Vendor", "INVALID_ORDER_NUMBER"},
		{"nil vendor", "PO-1", uuid.Nil, "Vendor", "INVALID_VENDOR"},
		{"empty vendor name", "PO-1", vendorID, "", "INVALID_VENDOR_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPurchaseOrder(tenantID, tt.orderNumber, tt.vendorID, tt.vendorName, valueobject.USD)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestNewPurchaseOrder_DefaultsCurrency(t *testing.T) {
	order, err := NewPurchaseOrder(uuid.New(), "PO-1", uuid.New(), "Vendor", "")
	require.NoError(t, err)
	assert.Equal(t, valueobject.DefaultCurrency, order.Currency)
}

// ============================================
// Line and Totals Tests
// ============================================

func TestPurchaseOrder_AddLineRecalculatesTotals(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, "flour", 10, 2.50)
	addTestLine(t, order, "butter", 4, 8.00)

	assert.True(t, order.SubTotal.Equal(dec("57")))
	assert.True(t, order.TotalAmount.Equal(dec("57")))
	assert.Equal(t, 2, order.ItemCount())
	assert.Equal(t, 1, order.Items[0].Sequence)
	assert.Equal(t, 2, order.Items[1].Sequence)
}

func TestNewLineItem_Validation(t *testing.T) {
	ref := ProductRef{ID: uuid.New(), ConversionRate: decimal.NewFromInt(1)}

	_, err := NewLineItem(ProductRef{}, decimal.NewFromInt(1), decimal.Zero, decimal.Zero, decimal.Zero, false, "")
	assert.Error(t, err)

	_, err = NewLineItem(ref, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, false, "")
	assert.Error(t, err)

	_, err = NewLineItem(ref, decimal.NewFromInt(1), decimal.NewFromInt(-1), decimal.Zero, decimal.Zero, false, "")
	assert.Error(t, err)

	item, err := NewLineItem(ref, decimal.NewFromInt(2), decimal.NewFromInt(3), decimal.Zero, decimal.Zero, false, "")
	require.NoError(t, err)
	assert.True(t, item.TotalPrice.Equal(dec("6")))
}

// ============================================
// ApplyChangeSet Tests
// ============================================

func TestPurchaseOrder_ApplyChangeSet_Update(t *testing.T) {
	order := createTestOrder(t)
	line := addTestLine(t, order, "flour", 10, 2.50)

	patch := NewItemPatch()
	patch.Set(FieldQuantity, NumericValue(dec("12")))
	cs := ChangeSet{Update: []ItemUpdate{{ID: line.ID, Fields: patch}}}

	require.NoError(t, order.ApplyChangeSet(cs))

	got := order.GetItem(line.ID)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(dec("12")))
	assert.True(t, got.SubTotal.Equal(dec("30")))
	assert.True(t, order.TotalAmount.Equal(dec("30")))
}

func TestPurchaseOrder_ApplyChangeSet_IgnoresClientDerivedValues(t *testing.T) {
	order := createTestOrder(t)
	line := addTestLine(t, order, "flour", 10, 2.50)

	// A hostile or buggy client sends a fabricated total alongside the edit;
	// the server must recompute it from the inputs.
	patch := NewItemPatch()
	patch.Set(FieldQuantity, NumericValue(dec("2")))
	patch.Set(FieldTotalPrice, NumericValue(dec("9999")))
	cs := ChangeSet{Update: []ItemUpdate{{ID: line.ID, Fields: patch}}}

	require.NoError(t, order.ApplyChangeSet(cs))

	got := order.GetItem(line.ID)
	assert.True(t, got.TotalPrice.Equal(dec("5")))
}

func TestPurchaseOrder_ApplyChangeSet_AddAndRemove(t *testing.T) {
	order := createTestOrder(t)
	keep := addTestLine(t, order, "flour", 10, 2.50)
	drop := addTestLine(t, order, "butter", 4, 8.00)

	newRow, err := NewLineItem(ProductRef{
		ID:             uuid.New(),
		Name:           "Olive Oil",
		Unit:           "btl",
		BaseUnit:       "btl",
		ConversionRate: decimal.NewFromInt(1),
	}, decimal.NewFromInt(6), decimal.NewFromInt(9), decimal.Zero, decimal.Zero, false, "")
	require.NoError(t, err)

	cs := ChangeSet{
		Add:    []LineItem{newRow},
		Remove: []ItemRef{{ID: drop.ID}},
	}
	require.NoError(t, order.ApplyChangeSet(cs))

	assert.Equal(t, 2, order.ItemCount())
	assert.NotNil(t, order.GetItem(keep.ID))
	assert.Nil(t, order.GetItem(drop.ID))
	// 10*2.50 + 6*9
	assert.True(t, order.TotalAmount.Equal(dec("79")))
	// Sequence renumbered to merged positions
	assert.Equal(t, 1, order.Items[0].Sequence)
	assert.Equal(t, 2, order.Items[1].Sequence)
}

func TestPurchaseOrder_ApplyChangeSet_UnknownUpdateID(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, "flour", 10, 2.50)

	patch := NewItemPatch()
	patch.Set(FieldQuantity, NumericValue(dec("1")))
	cs := ChangeSet{Update: []ItemUpdate{{ID: uuid.New(), Fields: patch}}}

	err := order.ApplyChangeSet(cs)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ITEM_NOT_FOUND", domainErr.Code)
}

func TestPurchaseOrder_ApplyChangeSet_UnknownRemoveIsNoOp(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, "flour", 10, 2.50)

	cs := ChangeSet{Remove: []ItemRef{{ID: uuid.New()}}}
	require.NoError(t, order.ApplyChangeSet(cs))
	assert.Equal(t, 1, order.ItemCount())
}

func TestPurchaseOrder_ApplyChangeSet_RejectsUncommittableResult(t *testing.T) {
	order := createTestOrder(t)
	line := addTestLine(t, order, "flour", 10, 2.50)

	patch := NewItemPatch()
	patch.Set(FieldQuantity, NumericValue(decimal.Zero))
	cs := ChangeSet{Update: []ItemUpdate{{ID: line.ID, Fields: patch}}}

	err := order.ApplyChangeSet(cs)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
}

func TestPurchaseOrder_ApplyChangeSet_NonEditableStatus(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, "flour", 10, 2.50)
	require.NoError(t, order.Submit())
	require.NoError(t, order.Approve(uuid.New()))

	cs := ChangeSet{Remove: []ItemRef{{ID: order.Items[0].ID}}}
	err := order.ApplyChangeSet(cs)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestPurchaseOrder_ApplyChangeSet_EmptyIsNoOp(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, "flour", 10, 2.50)
	version := order.Version

	require.NoError(t, order.ApplyChangeSet(ChangeSet{}))
	assert.Equal(t, version, order.Version)
}

// ============================================
// Lifecycle Tests
// ============================================

func TestPurchaseOrder_SubmitRequiresItems(t *testing.T) {
	order := createTestOrder(t)

	err := order.Submit()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_ITEMS", domainErr.Code)
}

func TestPurchaseOrder_FullLifecycle(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, "flour", 10, 2.50)

	require.NoError(t, order.Submit())
	assert.Equal(t, PurchaseOrderStatusSubmitted, order.Status)
	assert.NotNil(t, order.SubmittedAt)

	approver := uuid.New()
	require.NoError(t, order.Approve(approver))
	assert.Equal(t, PurchaseOrderStatusApproved, order.Status)
	require.NotNil(t, order.ApprovedBy)
	assert.Equal(t, approver, *order.ApprovedBy)

	require.NoError(t, order.MarkSent())
	require.NoError(t, order.Complete())
	assert.True(t, order.IsTerminal())

	// Terminal orders reject further transitions
	assert.Error(t, order.Void("late"))
	assert.Error(t, order.Submit())
}

func TestPurchaseOrder_ReturnToDraft(t *testing.T) {
	order := createTestOrder(t)
	addTestLine(t, order, "flour", 10, 2.50)
	require.NoError(t, order.Submit())

	require.NoError(t, order.ReturnToDraft())
	assert.Equal(t, PurchaseOrderStatusDraft, order.Status)
	assert.Nil(t, order.SubmittedAt)
	assert.True(t, order.CanModify())
}

func TestPurchaseOrder_VoidRequiresReason(t *testing.T) {
	order := createTestOrder(t)

	err := order.Void("")
	require.Error(t, err)

	require.NoError(t, order.Void("vendor discontinued"))
	assert.Equal(t, PurchaseOrderStatusVoided, order.Status)
	assert.Equal(t, "vendor discontinued", order.VoidReason)
}

func TestPurchaseOrder_TotalsWithDiscountAndTax(t *testing.T) {
	order := createTestOrder(t)
	ref := ProductRef{ID: uuid.New(), Name: "flour", Unit: "kg", BaseUnit: "kg", ConversionRate: decimal.NewFromInt(1)}
	item, err := NewLineItem(ref, dec("10"), dec("5.00"), dec("5.00"), dec("4.50"), false, "")
	require.NoError(t, err)
	require.NoError(t, order.AddLine(item))

	assert.True(t, order.SubTotal.Equal(dec("50.00")))
	assert.True(t, order.DiscountTotal.Equal(dec("5.00")))
	assert.True(t, order.TaxTotal.Equal(dec("4.50")))
	assert.True(t, order.TotalAmount.Equal(dec("49.50")))
	assert.Equal(t, "49.50 USD", order.TotalAmountMoney().String())
}
