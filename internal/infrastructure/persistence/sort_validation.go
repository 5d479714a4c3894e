package persistence

import (
	"strings"

	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
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

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
}

// PartSortFields contains allowed sort fields for parts
var PartSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"internal_part_no": true,
	"name":             true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"po_number":          true,
	"status":             true,
	"total_quantity":     true,
	"delivered_quantity": true,
}

// InventoryItemSortFields contains allowed sort fields for inventory items
var InventoryItemSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"unique_id":  true,
	"status":     true,
	"quantity":   true,
	"lot_id":     true,
	"location":   true,
}

// AuditLogSortFields contains allowed sort fields for audit logs
var AuditLogSortFields = map[string]bool{
	"timestamp": true,
	"action":    true,
	"user_id":   true,
}

// applyPagination orders by a whitelisted column and applies offset/limit
func applyPagination(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	return query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
}

// stringFilter returns the non-empty string value of a filter key
func stringFilter(filter shared.Filter, key string) (string, bool) {
	if filter.Filters == nil {
		return "", false
	}
	switch v := filter.Filters[key].(type) {
	case string:
		return v, v != ""
	case interface{ String() string }:
		s := v.String()
		return s, s != ""
	}
	return "", false
}

// searchPattern builds a case-insensitive LIKE pattern; columns are compared
// through LOWER() so the same SQL runs on PostgreSQL and SQLite
func searchPattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
