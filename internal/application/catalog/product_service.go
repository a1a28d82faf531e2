package catalog

import (
	"context"

	"github.com/carmen/backend/internal/domain/catalog"
	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/carmen/backend/internal/domain/shared"
	"github.com/carmen/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles catalog business operations. It also serves as the
// product lookup for order item editing, backed by a read-through cache.
type ProductService struct {
	productRepo catalog.ProductRepository
	cache       cache.ProductCache
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, productCache cache.ProductCache, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		cache:       productCache,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if existing, err := s.productRepo.FindByCode(ctx, tenantID, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this code already exists")
	}

	product, err := catalog.NewProduct(tenantID, req.Code, req.Name, req.Unit, req.BaseUnit, req.ConversionRate, req.StandardPrice, req.TaxRate)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// Update updates a product and invalidates its cached reference
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if req.StandardPrice != nil {
		if err := product.UpdatePrice(*req.StandardPrice); err != nil {
			return nil, err
		}
	}
	if req.Unit != nil || req.ConversionRate != nil {
		unit := product.Unit
		rate := product.ConversionRate
		if req.Unit != nil {
			unit = *req.Unit
		}
		if req.ConversionRate != nil {
			rate = *req.ConversionRate
		}
		if err := product.UpdateConversion(unit, rate); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		if *req.Active {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateRef(ctx, tenantID, productID)

	response := ToProductResponse(product)
	return &response, nil
}

// Ref resolves a product reference for order rows, serving from the cache
// when possible. Inactive products resolve with an error so new rows cannot
// pick them up.
func (s *ProductService) Ref(ctx context.Context, tenantID, productID uuid.UUID) (procurement.ProductRef, error) {
	if s.cache != nil {
		if ref, err := s.cache.Get(ctx, tenantID, productID); err == nil && ref != nil {
			return *ref, nil
		}
	}

	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return procurement.ProductRef{}, err
	}
	if !product.Active {
		return procurement.ProductRef{}, shared.NewDomainError("PRODUCT_INACTIVE", "Product is not available for ordering")
	}

	ref := procurement.ProductRef{
		ID:             product.ID,
		Code:           product.Code,
		Name:           product.Name,
		Unit:           product.Unit,
		BaseUnit:       product.BaseUnit,
		ConversionRate: product.ConversionRate,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, ref); err != nil {
			s.logger.Warn("failed to cache product reference",
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
		}
	}

	return ref, nil
}

func (s *ProductService) invalidateRef(ctx context.Context, tenantID, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID, productID); err != nil {
		s.logger.Warn("failed to invalidate cached product reference",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}
