package procurement

import (
	"fmt"
	"time"

	"github.com/carmen/backend/internal/domain/shared"
	"github.com/carmen/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft     PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSubmitted PurchaseOrderStatus = "SUBMITTED"
	PurchaseOrderStatusApproved  PurchaseOrderStatus = "APPROVED"
	PurchaseOrderStatusSent      PurchaseOrderStatus = "SENT"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusVoided    PurchaseOrderStatus = "VOIDED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSubmitted, PurchaseOrderStatusApproved,
		PurchaseOrderStatusSent, PurchaseOrderStatusCompleted, PurchaseOrderStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSubmitted || target == PurchaseOrderStatusVoided
	case PurchaseOrderStatusSubmitted:
		return target == PurchaseOrderStatusApproved || target == PurchaseOrderStatusDraft || target == PurchaseOrderStatusVoided
	case PurchaseOrderStatusApproved:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusVoided
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusCompleted
	case PurchaseOrderStatusCompleted, PurchaseOrderStatusVoided:
		return false // Terminal states
	}
	return false
}

// CanModify returns true if items may still be edited in this status
func (s PurchaseOrderStatus) CanModify() bool {
	return s == PurchaseOrderStatusDraft || s == PurchaseOrderStatusSubmitted
}

// PurchaseOrder represents a purchase order aggregate root for one business
// unit: a vendor order whose rows are edited through the item ledger until
// the order leaves its editable statuses.
type PurchaseOrder struct {
	shared.TenantAggregate
	OrderNumber   string
	VendorID      uuid.UUID
	VendorName    string
	Currency      valueobject.Currency
	DeliveryDate  *time.Time
	Items         []LineItem
	SubTotal      decimal.Decimal // Sum of row subtotals
	DiscountTotal decimal.Decimal // Sum of row discounts
	TaxTotal      decimal.Decimal // Sum of row taxes
	TotalAmount   decimal.Decimal // Sum of row totals
	Status        PurchaseOrderStatus
	Remark        string
	SubmittedAt   *time.Time
	ApprovedAt    *time.Time
	ApprovedBy    *uuid.UUID
	SentAt        *time.Time
	CompletedAt   *time.Time
	VoidedAt      *time.Time
	VoidReason    string
}

// NewPurchaseOrder creates a new draft purchase order
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, vendorID uuid.UUID, vendorName string, currency valueobject.Currency) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	return &PurchaseOrder{
		TenantAggregate: shared.NewTenantAggregate(tenantID),
		OrderNumber:     orderNumber,
		VendorID:        vendorID,
		VendorName:      vendorName,
		Currency:        currency,
		Items:           make([]LineItem, 0),
		SubTotal:        decimal.Zero,
		DiscountTotal:   decimal.Zero,
		TaxTotal:        decimal.Zero,
		TotalAmount:     decimal.Zero,
		Status:          PurchaseOrderStatusDraft,
	}, nil
}

// AddLine appends a row to the order. Only allowed while the order is editable.
func (o *PurchaseOrder) AddLine(item LineItem) error {
	if !o.Status.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-editable order")
	}
	if err := validateLine(&item); err != nil {
		return err
	}
	item.Recalculate()
	item.IsNew = false
	item.Sequence = len(o.Items) + 1
	o.Items = append(o.Items, item)
	o.recalculateTotals()
	o.Touch()
	return nil
}

// ApplyChangeSet applies a three-bucket partial update produced by a ledger
// session. Patches and additions flow through the same reconciler and
// recalculator the editing session used, so derived fields in the stored
// order can never disagree with the arithmetic rules. Derived fields in the
// payload are ignored; the server recomputes them.
func (o *PurchaseOrder) ApplyChangeSet(cs ChangeSet) error {
	if !o.Status.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify items of order in %s status", o.Status))
	}
	if cs.IsEmpty() {
		return nil
	}

	ledger := NewItemLedger(o.Items)

	for _, upd := range cs.Update {
		if !o.hasItem(upd.ID) {
			return shared.NewDomainError("ITEM_NOT_FOUND", fmt.Sprintf("Order item %s not found", upd.ID))
		}
		for _, f := range upd.Fields.Fields() {
			if f.IsDerived() {
				continue
			}
			v, _ := upd.Fields.Get(f)
			var refData *ProductRef
			if f.Kind() == KindReference {
				refData = v.Ref()
			}
			ledger.UpdateItem(upd.ID, f, v, refData)
		}
	}

	// Removal of an already-removed or unknown id is a no-op by design
	for _, ref := range cs.Remove {
		ledger.RemoveItem(ref.ID)
	}

	for _, row := range cs.Add {
		if err := validateLine(&row); err != nil {
			return err
		}
		row.Recalculate()
		ledger.AddItem(row)
	}

	merged := ledger.MergedView()
	for i := range merged {
		if err := validateLine(&merged[i]); err != nil {
			return err
		}
		merged[i].Recalculate()
		merged[i].IsNew = false
	}

	o.Items = merged
	o.recalculateTotals()
	o.Touch()
	return nil
}

// validateLine enforces the committable-row rules on a single row
func validateLine(item *LineItem) error {
	if !item.HasProduct() {
		return shared.NewDomainError("INVALID_PRODUCT", "Row has no product selected")
	}
	if item.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if item.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if item.DiscountAmount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount amount cannot be negative")
	}
	if item.TaxAmount.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax amount cannot be negative")
	}
	return nil
}

// SetRemark sets the order remark
func (o *PurchaseOrder) SetRemark(remark string) {
	o.Remark = remark
	o.Touch()
}

// SetDeliveryDate sets the expected delivery date
func (o *PurchaseOrder) SetDeliveryDate(date time.Time) error {
	if !o.Status.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change delivery date in current status")
	}
	o.DeliveryDate = &date
	o.Touch()
	return nil
}

// Submit moves the order from DRAFT to SUBMITTED.
// Every row must be committable: a product chosen and a positive quantity.
func (o *PurchaseOrder) Submit() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusSubmitted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit order without items")
	}
	for i := range o.Items {
		if err := validateLine(&o.Items[i]); err != nil {
			return err
		}
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusSubmitted
	o.SubmittedAt = &now
	o.Touch()
	return nil
}

// ReturnToDraft sends a submitted order back for editing
func (o *PurchaseOrder) ReturnToDraft() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusDraft) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot return order in %s status to draft", o.Status))
	}
	o.Status = PurchaseOrderStatusDraft
	o.SubmittedAt = nil
	o.Touch()
	return nil
}

// Approve approves a submitted order
func (o *PurchaseOrder) Approve(approverID uuid.UUID) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve order in %s status", o.Status))
	}
	if o.TotalAmount.LessThanOrEqual(decimal.Zero) && !o.hasFOCOnly() {
		return shared.NewDomainError("INVALID_AMOUNT", "Order total must be positive")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusApproved
	o.ApprovedAt = &now
	if approverID != uuid.Nil {
		o.ApprovedBy = &approverID
	}
	o.Touch()
	return nil
}

// MarkSent records that the order has been sent to the vendor
func (o *PurchaseOrder) MarkSent() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusSent
	o.SentAt = &now
	o.Touch()
	return nil
}

// Complete closes out a sent order
func (o *PurchaseOrder) Complete() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusCompleted
	o.CompletedAt = &now
	o.Touch()
	return nil
}

// Void cancels the order with a reason
func (o *PurchaseOrder) Void(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusVoided) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusVoided
	o.VoidedAt = &now
	o.VoidReason = reason
	o.Touch()
	return nil
}

// recalculateTotals recalculates the order totals from the rows
func (o *PurchaseOrder) recalculateTotals() {
	subTotal := decimal.Zero
	discountTotal := decimal.Zero
	taxTotal := decimal.Zero
	total := decimal.Zero
	for i := range o.Items {
		subTotal = subTotal.Add(o.Items[i].SubTotal)
		discountTotal = discountTotal.Add(o.Items[i].DiscountAmount)
		taxTotal = taxTotal.Add(o.Items[i].TaxAmount)
		total = total.Add(o.Items[i].TotalPrice)
	}
	o.SubTotal = subTotal
	o.DiscountTotal = discountTotal
	o.TaxTotal = taxTotal
	o.TotalAmount = total
}

func (o *PurchaseOrder) hasItem(id uuid.UUID) bool {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return true
		}
	}
	return false
}

// hasFOCOnly returns true when every row is free of charge
func (o *PurchaseOrder) hasFOCOnly() bool {
	if len(o.Items) == 0 {
		return false
	}
	for i := range o.Items {
		if !o.Items[i].IsFOC {
			return false
		}
	}
	return true
}

// GetItem returns a row by its id
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *LineItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// ItemCount returns the number of rows in the order
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// IsDraft returns true if the order is in draft status
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// IsTerminal returns true if the order is completed or voided
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status == PurchaseOrderStatusCompleted || o.Status == PurchaseOrderStatusVoided
}

// CanModify returns true if the order items can still be edited
func (o *PurchaseOrder) CanModify() bool {
	return o.Status.CanModify()
}

// TotalAmountMoney returns the order total as Money
func (o *PurchaseOrder) TotalAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.TotalAmount, o.Currency)
	return m
}
