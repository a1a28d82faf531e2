package models

import (
	"time"

	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/carmen/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate.
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber   string                          `gorm:"type:varchar(50);not null;uniqueIndex:idx_po_tenant_number,priority:2"`
	VendorID      uuid.UUID                       `gorm:"type:uuid;not null;index"`
	VendorName    string                          `gorm:"type:varchar(200);not null"`
	Currency      valueobject.Currency            `gorm:"type:varchar(3);not null"`
	DeliveryDate  *time.Time                      `gorm:"index"`
	Items         []PurchaseOrderItemModel        `gorm:"foreignKey:OrderID;references:ID"`
	SubTotal      decimal.Decimal                 `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountTotal decimal.Decimal                 `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal      decimal.Decimal                 `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount   decimal.Decimal                 `gorm:"type:decimal(18,4);not null;default:0"`
	Status        procurement.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Remark        string                          `gorm:"type:text"`
	SubmittedAt   *time.Time
	ApprovedAt    *time.Time
	ApprovedBy    *uuid.UUID `gorm:"type:uuid"`
	SentAt        *time.Time
	CompletedAt   *time.Time
	VoidedAt      *time.Time
	VoidReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItemModel is the persistence model for a purchase order row.
// Derived amounts are stored as written by the domain; they are never
// recomputed in the persistence layer.
type PurchaseOrderItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      *uuid.UUID      `gorm:"type:uuid;index"`
	ProductCode    string          `gorm:"type:varchar(50)"`
	ProductName    string          `gorm:"type:varchar(200)"`
	Unit           string          `gorm:"type:varchar(20)"`
	BaseUnit       string          `gorm:"type:varchar(20)"`
	ConversionRate decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BaseQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SubTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsFOC          bool            `gorm:"not null;default:false"`
	Description    string          `gorm:"type:varchar(500)"`
	Sequence       int             `gorm:"not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrder aggregate.
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	items := make([]procurement.LineItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}

	order := &procurement.PurchaseOrder{
		OrderNumber:   m.OrderNumber,
		VendorID:      m.VendorID,
		VendorName:    m.VendorName,
		Currency:      m.Currency,
		DeliveryDate:  m.DeliveryDate,
		Items:         items,
		SubTotal:      m.SubTotal,
		DiscountTotal: m.DiscountTotal,
		TaxTotal:      m.TaxTotal,
		TotalAmount:   m.TotalAmount,
		Status:        m.Status,
		Remark:        m.Remark,
		SubmittedAt:   m.SubmittedAt,
		ApprovedAt:    m.ApprovedAt,
		ApprovedBy:    m.ApprovedBy,
		SentAt:        m.SentAt,
		CompletedAt:   m.CompletedAt,
		VoidedAt:      m.VoidedAt,
		VoidReason:    m.VoidReason,
	}
	m.ToAggregate(&order.TenantAggregate)
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder aggregate.
func (m *PurchaseOrderModel) FromDomain(o *procurement.PurchaseOrder) {
	m.FromAggregate(o.TenantAggregate)
	m.OrderNumber = o.OrderNumber
	m.VendorID = o.VendorID
	m.VendorName = o.VendorName
	m.Currency = o.Currency
	m.DeliveryDate = o.DeliveryDate
	m.SubTotal = o.SubTotal
	m.DiscountTotal = o.DiscountTotal
	m.TaxTotal = o.TaxTotal
	m.TotalAmount = o.TotalAmount
	m.Status = o.Status
	m.Remark = o.Remark
	m.SubmittedAt = o.SubmittedAt
	m.ApprovedAt = o.ApprovedAt
	m.ApprovedBy = o.ApprovedBy
	m.SentAt = o.SentAt
	m.CompletedAt = o.CompletedAt
	m.VoidedAt = o.VoidedAt
	m.VoidReason = o.VoidReason

	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i], o.ID)
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain aggregate.
func PurchaseOrderModelFromDomain(o *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// ToDomain converts the item model to a domain LineItem.
// Rows loaded from storage are base rows, never new ones.
func (m *PurchaseOrderItemModel) ToDomain() procurement.LineItem {
	return procurement.LineItem{
		ID:             m.ID,
		ProductID:      m.ProductID,
		ProductCode:    m.ProductCode,
		ProductName:    m.ProductName,
		Unit:           m.Unit,
		BaseUnit:       m.BaseUnit,
		ConversionRate: m.ConversionRate,
		Quantity:       m.Quantity,
		BaseQuantity:   m.BaseQuantity,
		UnitPrice:      m.UnitPrice,
		DiscountAmount: m.DiscountAmount,
		TaxAmount:      m.TaxAmount,
		SubTotal:       m.SubTotal,
		NetAmount:      m.NetAmount,
		TotalPrice:     m.TotalPrice,
		IsFOC:          m.IsFOC,
		Description:    m.Description,
		Sequence:       m.Sequence,
		IsNew:          false,
	}
}

// FromDomain populates the item model from a domain LineItem.
func (m *PurchaseOrderItemModel) FromDomain(item *procurement.LineItem, orderID uuid.UUID) {
	m.ID = item.ID
	m.OrderID = orderID
	m.ProductID = item.ProductID
	m.ProductCode = item.ProductCode
	m.ProductName = item.ProductName
	m.Unit = item.Unit
	m.BaseUnit = item.BaseUnit
	m.ConversionRate = item.ConversionRate
	m.Quantity = item.Quantity
	m.BaseQuantity = item.BaseQuantity
	m.UnitPrice = item.UnitPrice
	m.DiscountAmount = item.DiscountAmount
	m.TaxAmount = item.TaxAmount
	m.SubTotal = item.SubTotal
	m.NetAmount = item.NetAmount
	m.TotalPrice = item.TotalPrice
	m.IsFOC = item.IsFOC
	m.Description = item.Description
	m.Sequence = item.Sequence
}
