package procurement

import (
	"time"

	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	VendorID     uuid.UUID      `json:"vendor_id" binding:"required"`
	VendorName   string         `json:"vendor_name" binding:"required,min=1,max=200"`
	Currency     string         `json:"currency" binding:"omitempty,len=3"`
	DeliveryDate *time.Time     `json:"delivery_date"`
	Items        []AddItemInput `json:"items"`
	Remark       string         `json:"remark"`
	CreatedBy    *uuid.UUID     `json:"-"`
}

// AddItemInput represents a new row in a create or item-update request.
// Only editable fields are accepted; derived amounts are recomputed on
// the server from these inputs.
type AddItemInput struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	IsFOC          bool            `json:"is_foc"`
	Description    string          `json:"description"`
}

// UpdateItemInput represents a field-level patch against an existing row
type UpdateItemInput struct {
	ID     uuid.UUID            `json:"id" binding:"required"`
	Fields procurement.ItemPatch `json:"fields"`
}

// UpdateOrderItemsRequest carries the three-bucket payload produced by the
// client-side editing session: rows to add, per-field patches against
// persisted rows, and ids of rows to remove.
type UpdateOrderItemsRequest struct {
	Add    []AddItemInput    `json:"add"`
	Update []UpdateItemInput `json:"update"`
	Remove []uuid.UUID       `json:"remove"`
}

// IsEmpty returns true when the request changes nothing
func (r UpdateOrderItemsRequest) IsEmpty() bool {
	return len(r.Add) == 0 && len(r.Update) == 0 && len(r.Remove) == 0
}

// UpdatePurchaseOrderRequest represents a header-level update
type UpdatePurchaseOrderRequest struct {
	DeliveryDate *time.Time `json:"delivery_date"`
	Remark       *string    `json:"remark"`
}

// VoidPurchaseOrderRequest represents a request to void a purchase order
type VoidPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ApprovePurchaseOrderRequest represents a request to approve a purchase order
type ApprovePurchaseOrderRequest struct {
	ApproverID uuid.UUID `json:"approver_id"`
}

// PurchaseOrderListFilter represents filter options for purchase order list
type PurchaseOrderListFilter struct {
	Search    string                           `form:"search"`
	VendorID  *uuid.UUID                       `form:"vendor_id"`
	Status    *procurement.PurchaseOrderStatus `form:"status"`
	StartDate *time.Time                       `form:"start_date"`
	EndDate   *time.Time                       `form:"end_date"`
	Page      int                              `form:"page" binding:"omitempty,min=1"`
	PageSize  int                              `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string                           `form:"order_by"`
	OrderDir  string                           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	OrderNumber   string             `json:"order_number"`
	VendorID      uuid.UUID          `json:"vendor_id"`
	VendorName    string             `json:"vendor_name"`
	Currency      string             `json:"currency"`
	DeliveryDate  *time.Time         `json:"delivery_date,omitempty"`
	Items         []LineItemResponse `json:"items"`
	ItemCount     int                `json:"item_count"`
	SubTotal      decimal.Decimal    `json:"sub_total"`
	DiscountTotal decimal.Decimal    `json:"discount_total"`
	TaxTotal      decimal.Decimal    `json:"tax_total"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Status        string             `json:"status"`
	Remark        string             `json:"remark,omitempty"`
	SubmittedAt   *time.Time         `json:"submitted_at,omitempty"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
	ApprovedBy    *uuid.UUID         `json:"approved_by,omitempty"`
	SentAt        *time.Time         `json:"sent_at,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	VoidedAt      *time.Time         `json:"voided_at,omitempty"`
	VoidReason    string             `json:"void_reason,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int                `json:"version"`
}

// PurchaseOrderListItemResponse represents a purchase order in list responses
type PurchaseOrderListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"order_number"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	VendorName  string          `json:"vendor_name"`
	Currency    string          `json:"currency"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LineItemResponse represents an order row in API responses, including the
// server-computed derived amounts.
type LineItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	Sequence       int             `json:"sequence"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductCode    string          `json:"product_code"`
	ProductName    string          `json:"product_name"`
	Unit           string          `json:"unit"`
	BaseUnit       string          `json:"base_unit"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	Quantity       decimal.Decimal `json:"quantity"`
	BaseQuantity   decimal.Decimal `json:"base_quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SubTotal       decimal.Decimal `json:"sub_total"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	IsFOC          bool            `json:"is_foc"`
	Description    string          `json:"description,omitempty"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response DTO
func ToPurchaseOrderResponse(order *procurement.PurchaseOrder) PurchaseOrderResponse {
	items := make([]LineItemResponse, len(order.Items))
	for i := range order.Items {
		items[i] = ToLineItemResponse(&order.Items[i])
	}

	return PurchaseOrderResponse{
		ID:            order.ID,
		TenantID:      order.TenantID,
		OrderNumber:   order.OrderNumber,
		VendorID:      order.VendorID,
		VendorName:    order.VendorName,
		Currency:      string(order.Currency),
		DeliveryDate:  order.DeliveryDate,
		Items:         items,
		ItemCount:     order.ItemCount(),
		SubTotal:      order.SubTotal,
		DiscountTotal: order.DiscountTotal,
		TaxTotal:      order.TaxTotal,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status.String(),
		Remark:        order.Remark,
		SubmittedAt:   order.SubmittedAt,
		ApprovedAt:    order.ApprovedAt,
		ApprovedBy:    order.ApprovedBy,
		SentAt:        order.SentAt,
		CompletedAt:   order.CompletedAt,
		VoidedAt:      order.VoidedAt,
		VoidReason:    order.VoidReason,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		Version:       order.Version,
	}
}

// ToLineItemResponse converts a domain LineItem to a response DTO
func ToLineItemResponse(item *procurement.LineItem) LineItemResponse {
	var productID uuid.UUID
	if item.ProductID != nil {
		productID = *item.ProductID
	}
	return LineItemResponse{
		ID:             item.ID,
		Sequence:       item.Sequence,
		ProductID:      productID,
		ProductCode:    item.ProductCode,
		ProductName:    item.ProductName,
		Unit:           item.Unit,
		BaseUnit:       item.BaseUnit,
		ConversionRate: item.ConversionRate,
		Quantity:       item.Quantity,
		BaseQuantity:   item.BaseQuantity,
		UnitPrice:      item.UnitPrice,
		SubTotal:       item.SubTotal,
		DiscountAmount: item.DiscountAmount,
		NetAmount:      item.NetAmount,
		TaxAmount:      item.TaxAmount,
		TotalPrice:     item.TotalPrice,
		IsFOC:          item.IsFOC,
		Description:    item.Description,
	}
}

// ToPurchaseOrderListItemResponses converts domain orders to list item DTOs
func ToPurchaseOrderListItemResponses(orders []procurement.PurchaseOrder) []PurchaseOrderListItemResponse {
	responses := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		order := &orders[i]
		responses[i] = PurchaseOrderListItemResponse{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			VendorID:    order.VendorID,
			VendorName:  order.VendorName,
			Currency:    string(order.Currency),
			ItemCount:   order.ItemCount(),
			TotalAmount: order.TotalAmount,
			Status:      order.Status.String(),
			CreatedAt:   order.CreatedAt,
			UpdatedAt:   order.UpdatedAt,
		}
	}
	return responses
}
