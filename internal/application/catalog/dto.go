package catalog

import (
	"time"

	"github.com/carmen/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Code           string          `json:"code" binding:"required,min=1,max=50"`
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Unit           string          `json:"unit" binding:"required,min=1,max=20"`
	BaseUnit       string          `json:"base_unit" binding:"omitempty,max=20"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	StandardPrice  decimal.Decimal `json:"standard_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	StandardPrice  *decimal.Decimal `json:"standard_price"`
	Unit           *string          `json:"unit"`
	ConversionRate *decimal.Decimal `json:"conversion_rate"`
	Active         *bool            `json:"active"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	BaseUnit       string          `json:"base_unit"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	StandardPrice  decimal.Decimal `json:"standard_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToProductResponse converts a domain Product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		Code:           p.Code,
		Name:           p.Name,
		Unit:           p.Unit,
		BaseUnit:       p.BaseUnit,
		ConversionRate: p.ConversionRate,
		StandardPrice:  p.StandardPrice,
		TaxRate:        p.TaxRate,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToProductResponses converts domain products to response DTOs
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
