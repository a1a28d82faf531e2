package handler

import (
	"context"

	procurementapp "github.com/carmen/backend/internal/application/procurement"
	"github.com/carmen/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler handles purchase order HTTP requests
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *procurementapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *procurementapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// Create handles POST /procurement/purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req procurementapp.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	order, err := h.orderService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID handles GET /procurement/purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByOrderNumber handles GET /procurement/purchase-orders/by-number/:orderNumber
func (h *PurchaseOrderHandler) GetByOrderNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderNumber := c.Param("orderNumber")
	if orderNumber == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	order, err := h.orderService.GetByOrderNumber(c.Request.Context(), tenantID, orderNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List handles GET /procurement/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter procurementapp.PurchaseOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// Update handles PUT /procurement/purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req procurementapp.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateItems handles PATCH /procurement/purchase-orders/:id/items.
// The payload carries three buckets: rows to add, per-field patches
// against existing rows, and ids of rows to remove.
func (h *PurchaseOrderHandler) UpdateItems(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req procurementapp.UpdateOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if req.IsEmpty() {
		h.BadRequest(c, "Item update payload is empty")
		return
	}

	order, err := h.orderService.UpdateItems(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Submit handles POST /procurement/purchase-orders/:id/submit
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.transition(c, h.orderService.Submit)
}

// ReturnToDraft handles POST /procurement/purchase-orders/:id/return-to-draft
func (h *PurchaseOrderHandler) ReturnToDraft(c *gin.Context) {
	h.transition(c, h.orderService.ReturnToDraft)
}

// Approve handles POST /procurement/purchase-orders/:id/approve
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req procurementapp.ApprovePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		middleware.HandleValidationError(c, err)
		return
	}

	approverID := req.ApproverID
	if approverID == uuid.Nil {
		if userID, err := getUserID(c); err == nil {
			approverID = userID
		}
	}
	if approverID == uuid.Nil {
		h.BadRequest(c, "Approver ID is required")
		return
	}

	order, err := h.orderService.Approve(c.Request.Context(), tenantID, orderID, approverID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// MarkSent handles POST /procurement/purchase-orders/:id/send
func (h *PurchaseOrderHandler) MarkSent(c *gin.Context) {
	h.transition(c, h.orderService.MarkSent)
}

// Complete handles POST /procurement/purchase-orders/:id/complete
func (h *PurchaseOrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orderService.Complete)
}

// Void handles POST /procurement/purchase-orders/:id/void
func (h *PurchaseOrderHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req procurementapp.VoidPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.orderService.Void(c.Request.Context(), tenantID, orderID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// transition handles the status-change endpoints that take no body
func (h *PurchaseOrderHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, orderID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := fn(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}
