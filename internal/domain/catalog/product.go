package catalog

import (
	"github.com/carmen/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a purchasable product in a business unit's catalog.
// Orders are placed in the ordering unit; inventory is tracked in the base
// unit, converted through ConversionRate.
type Product struct {
	shared.TenantAggregate
	Code           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Unit           string          `gorm:"type:varchar(20);not null"`
	BaseUnit       string          `gorm:"type:varchar(20);not null"`
	ConversionRate decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
	StandardPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"` // percent
	Active         bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(tenantID uuid.UUID, code, name, unit, baseUnit string, conversionRate, standardPrice, taxRate decimal.Decimal) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if baseUnit == "" {
		baseUnit = unit
	}
	if conversionRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CONVERSION_RATE", "Conversion rate must be positive")
	}
	if standardPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Standard price cannot be negative")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	return &Product{
		TenantAggregate: shared.NewTenantAggregate(tenantID),
		Code:            code,
		Name:            name,
		Unit:            unit,
		BaseUnit:        baseUnit,
		ConversionRate:  conversionRate,
		StandardPrice:   standardPrice,
		TaxRate:         taxRate,
		Active:          true,
	}, nil
}

// UpdatePrice sets a new standard price
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Standard price cannot be negative")
	}
	p.StandardPrice = price
	p.Touch()
	return nil
}

// UpdateConversion changes the ordering unit and conversion rate
func (p *Product) UpdateConversion(unit string, rate decimal.Decimal) error {
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_CONVERSION_RATE", "Conversion rate must be positive")
	}
	p.Unit = unit
	p.ConversionRate = rate
	p.Touch()
	return nil
}

// Deactivate removes the product from ordering without deleting it
func (p *Product) Deactivate() {
	p.Active = false
	p.Touch()
}

// Activate makes the product orderable again
func (p *Product) Activate() {
	p.Active = true
	p.Touch()
}
