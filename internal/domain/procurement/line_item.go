package procurement

import (
	"github.com/carmen/backend/internal/domain/shared"
	"github.com/carmen/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem represents a single row of a purchase order.
// Derived fields (BaseQuantity, SubTotal, NetAmount, TotalPrice) are always
// kept consistent with the input fields; a row never carries a stale total.
type LineItem struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty"`
	ProductCode    string          `json:"product_code,omitempty"`
	ProductName    string          `json:"product_name,omitempty"`
	Unit           string          `json:"unit,omitempty"`
	BaseUnit       string          `json:"base_unit,omitempty"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	Quantity       decimal.Decimal `json:"quantity"`
	BaseQuantity   decimal.Decimal `json:"base_quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	SubTotal       decimal.Decimal `json:"sub_total"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	IsFOC          bool            `json:"is_foc"`
	Description    string          `json:"description,omitempty"`
	Sequence       int             `json:"sequence"`

	// Provenance is fixed at creation and never migrates
	IsNew bool `json:"-"`
}

// NewDraftLineItem returns the default row template used by "add row":
// a fresh client id, zeroed amounts and a unit conversion rate of 1.
func NewDraftLineItem() LineItem {
	return LineItem{
		ID:             uuid.New(),
		ConversionRate: decimal.NewFromInt(1),
		Quantity:       decimal.Zero,
		BaseQuantity:   decimal.Zero,
		UnitPrice:      decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		SubTotal:       decimal.Zero,
		NetAmount:      decimal.Zero,
		TotalPrice:     decimal.Zero,
		IsNew:          true,
	}
}

// NewLineItem creates a fully-specified row for a chosen product
func NewLineItem(ref ProductRef, quantity, unitPrice, discountAmount, taxAmount decimal.Decimal, isFOC bool, description string) (LineItem, error) {
	if ref.ID == uuid.Nil {
		return LineItem{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return LineItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discountAmount.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount amount cannot be negative")
	}
	if taxAmount.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_TAX", "Tax amount cannot be negative")
	}

	rate := ref.ConversionRate
	if rate.LessThanOrEqual(decimal.Zero) {
		rate = decimal.NewFromInt(1)
	}

	item := LineItem{
		ID:             uuid.New(),
		ProductID:      &ref.ID,
		ProductCode:    ref.Code,
		ProductName:    ref.Name,
		Unit:           ref.Unit,
		BaseUnit:       ref.BaseUnit,
		ConversionRate: rate,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		IsFOC:          isFOC,
		Description:    description,
		IsNew:          true,
	}
	item.Recalculate()
	return item, nil
}

// Recalculate recomputes all derived fields from the input fields
func (i *LineItem) Recalculate() {
	i.BaseQuantity = i.Quantity.Mul(i.ConversionRate)
	i.SubTotal = i.Quantity.Mul(i.UnitPrice)
	i.NetAmount = i.SubTotal.Sub(i.DiscountAmount)
	i.TotalPrice = i.NetAmount.Add(i.TaxAmount)
}

// HasProduct returns true once a product has been chosen for the row.
// A row without a product stays editable but cannot be committed.
func (i *LineItem) HasProduct() bool {
	return i.ProductID != nil && *i.ProductID != uuid.Nil
}

// ProductRef returns the row's product reference, or nil if none is chosen
func (i *LineItem) ProductRef() *ProductRef {
	if !i.HasProduct() {
		return nil
	}
	return &ProductRef{
		ID:             *i.ProductID,
		Code:           i.ProductCode,
		Name:           i.ProductName,
		Unit:           i.Unit,
		BaseUnit:       i.BaseUnit,
		ConversionRate: i.ConversionRate,
	}
}

// Value reads a single field as a FieldValue
func (i *LineItem) Value(f Field) FieldValue {
	switch f {
	case FieldQuantity:
		return NumericValue(i.Quantity)
	case FieldUnitPrice:
		return NumericValue(i.UnitPrice)
	case FieldDiscountAmount:
		return NumericValue(i.DiscountAmount)
	case FieldTaxAmount:
		return NumericValue(i.TaxAmount)
	case FieldBaseQuantity:
		return NumericValue(i.BaseQuantity)
	case FieldSubTotal:
		return NumericValue(i.SubTotal)
	case FieldNetAmount:
		return NumericValue(i.NetAmount)
	case FieldTotalPrice:
		return NumericValue(i.TotalPrice)
	case FieldUnit:
		return TextValue(i.Unit)
	case FieldDescription:
		return TextValue(i.Description)
	case FieldIsFOC:
		return BoolValue(i.IsFOC)
	case FieldProduct:
		if ref := i.ProductRef(); ref != nil {
			return RefValue(*ref)
		}
		return AbsentValue()
	}
	return AbsentValue()
}

// setField writes a single field from a FieldValue
func (i *LineItem) setField(f Field, v FieldValue) {
	switch f {
	case FieldQuantity:
		i.Quantity = v.Decimal()
	case FieldUnitPrice:
		i.UnitPrice = v.Decimal()
	case FieldDiscountAmount:
		i.DiscountAmount = v.Decimal()
	case FieldTaxAmount:
		i.TaxAmount = v.Decimal()
	case FieldBaseQuantity:
		i.BaseQuantity = v.Decimal()
	case FieldSubTotal:
		i.SubTotal = v.Decimal()
	case FieldNetAmount:
		i.NetAmount = v.Decimal()
	case FieldTotalPrice:
		i.TotalPrice = v.Decimal()
	case FieldUnit:
		i.Unit = v.Text()
	case FieldDescription:
		i.Description = v.Text()
	case FieldIsFOC:
		i.IsFOC = v.Bool()
	case FieldProduct:
		ref := v.Ref()
		if ref == nil {
			return
		}
		id := ref.ID
		i.ProductID = &id
		i.ProductCode = ref.Code
		i.ProductName = ref.Name
		if ref.Unit != "" {
			i.Unit = ref.Unit
		}
		if ref.BaseUnit != "" {
			i.BaseUnit = ref.BaseUnit
		}
		if ref.ConversionRate.GreaterThan(decimal.Zero) {
			i.ConversionRate = ref.ConversionRate
		}
	}
}

// TotalPriceMoney returns the row total as Money in the given currency
func (i *LineItem) TotalPriceMoney(currency valueobject.Currency) valueobject.Money {
	m, _ := valueobject.NewMoney(i.TotalPrice, currency)
	return m
}
