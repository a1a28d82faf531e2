package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"code":            true,
	"name":            true,
	"unit":            true,
	"base_unit":       true,
	"conversion_rate": true,
	"standard_price":  true,
	"tax_rate":        true,
	"active":          true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"vendor_id":      true,
	"vendor_name":    true,
	"status":         true,
	"sub_total":      true,
	"discount_total": true,
	"tax_total":      true,
	"total_amount":   true,
	"delivery_date":  true,
	"submitted_at":   true,
	"approved_at":    true,
	"completed_at":   true,
}
