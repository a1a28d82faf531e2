package procurement

import (
	"context"

	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/carmen/backend/internal/domain/shared"
	"github.com/carmen/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ProductLookup resolves product references for order rows. The catalog
// application service implements it; tests use an in-memory map.
type ProductLookup interface {
	Ref(ctx context.Context, tenantID, productID uuid.UUID) (procurement.ProductRef, error)
}

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo procurement.PurchaseOrderRepository
	products  ProductLookup
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orderRepo procurement.PurchaseOrderRepository, products ProductLookup) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		products:  products,
	}
}

// Create creates a new purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := procurement.NewPurchaseOrder(tenantID, orderNumber, req.VendorID, req.VendorName, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}

	if req.DeliveryDate != nil {
		if err := order.SetDeliveryDate(*req.DeliveryDate); err != nil {
			return nil, err
		}
	}

	for _, input := range req.Items {
		item, err := s.buildLine(ctx, tenantID, input)
		if err != nil {
			return nil, err
		}
		if err := order.AddLine(item); err != nil {
			return nil, err
		}
	}

	if req.Remark != "" {
		order.SetRemark(req.Remark)
	}
	if req.CreatedBy != nil {
		order.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves a purchase order by order number
func (s *PurchaseOrderService) GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves a list of purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.VendorID != nil {
		domainFilter.Filters["vendor_id"] = *filter.VendorID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPurchaseOrderListItemResponses(orders), total, nil
}

// Update updates the header fields of an editable purchase order
func (s *PurchaseOrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Order can only be modified in an editable status")
	}

	if req.DeliveryDate != nil {
		if err := order.SetDeliveryDate(*req.DeliveryDate); err != nil {
			return nil, err
		}
	}
	if req.Remark != nil {
		order.SetRemark(*req.Remark)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// UpdateItems applies the three-bucket item payload to an editable order.
// Adds and product changes are resolved against the catalog, so a row can
// never reference a product the tenant does not have.
func (s *PurchaseOrderService) UpdateItems(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateOrderItemsRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	cs, err := s.buildChangeSet(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	if err := order.ApplyChangeSet(cs); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Submit submits a draft purchase order for approval
func (s *PurchaseOrderService) Submit(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(o *procurement.PurchaseOrder) error {
		return o.Submit()
	})
}

// ReturnToDraft sends a submitted order back for editing
func (s *PurchaseOrderService) ReturnToDraft(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(o *procurement.PurchaseOrder) error {
		return o.ReturnToDraft()
	})
}

// Approve approves a submitted purchase order
func (s *PurchaseOrderService) Approve(ctx context.Context, tenantID, orderID uuid.UUID, approverID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(o *procurement.PurchaseOrder) error {
		return o.Approve(approverID)
	})
}

// MarkSent records that an approved order has been sent to the vendor
func (s *PurchaseOrderService) MarkSent(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(o *procurement.PurchaseOrder) error {
		return o.MarkSent()
	})
}

// Complete closes out a sent purchase order
func (s *PurchaseOrderService) Complete(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(o *procurement.PurchaseOrder) error {
		return o.Complete()
	})
}

// Void cancels a purchase order with a reason
func (s *PurchaseOrderService) Void(ctx context.Context, tenantID, orderID uuid.UUID, reason string) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(o *procurement.PurchaseOrder) error {
		return o.Void(reason)
	})
}

// transition loads an order, applies a state change, and saves it
func (s *PurchaseOrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, fn func(*procurement.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// buildLine resolves an add-input into a full domain row
func (s *PurchaseOrderService) buildLine(ctx context.Context, tenantID uuid.UUID, input AddItemInput) (procurement.LineItem, error) {
	ref, err := s.products.Ref(ctx, tenantID, input.ProductID)
	if err != nil {
		return procurement.LineItem{}, err
	}
	return procurement.NewLineItem(ref, input.Quantity, input.UnitPrice, input.DiscountAmount, input.TaxAmount, input.IsFOC, input.Description)
}

// buildChangeSet converts the wire payload into a domain change set,
// resolving catalog references for added rows and product patches.
func (s *PurchaseOrderService) buildChangeSet(ctx context.Context, tenantID uuid.UUID, req UpdateOrderItemsRequest) (procurement.ChangeSet, error) {
	var cs procurement.ChangeSet

	for _, input := range req.Add {
		item, err := s.buildLine(ctx, tenantID, input)
		if err != nil {
			return procurement.ChangeSet{}, err
		}
		cs.Add = append(cs.Add, item)
	}

	for _, upd := range req.Update {
		patch := upd.Fields
		if v, ok := patch.Get(procurement.FieldProduct); ok {
			ref := v.Ref()
			if ref == nil || ref.ID == uuid.Nil {
				return procurement.ChangeSet{}, shared.NewDomainError("INVALID_PRODUCT", "Product reference is missing an id")
			}
			resolved, err := s.products.Ref(ctx, tenantID, ref.ID)
			if err != nil {
				return procurement.ChangeSet{}, err
			}
			patch.Set(procurement.FieldProduct, procurement.RefValue(resolved))
		}
		cs.Update = append(cs.Update, procurement.ItemUpdate{ID: upd.ID, Fields: patch})
	}

	for _, id := range req.Remove {
		cs.Remove = append(cs.Remove, procurement.ItemRef{ID: id})
	}

	return cs, nil
}
