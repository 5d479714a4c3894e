package handler

import "github.com/wms/backend/internal/interfaces/http/router"

// Handlers bundles the API handlers served under the versioned prefix
type Handlers struct {
	System        *SystemHandler
	Customer      *CustomerHandler
	Part          *PartHandler
	PurchaseOrder *PurchaseOrderHandler
	Inventory     *InventoryHandler
	Report        *ReportHandler
}

// Routes returns the route groups of every configured handler
func (h Handlers) Routes() []router.RouteRegistrar {
	var groups []router.RouteRegistrar
	if h.System != nil {
		groups = append(groups, SystemRoutes(h.System))
	}
	if h.Customer != nil {
		groups = append(groups, CustomerRoutes(h.Customer))
	}
	if h.Part != nil {
		groups = append(groups, PartRoutes(h.Part))
	}
	if h.PurchaseOrder != nil {
		groups = append(groups, PurchaseOrderRoutes(h.PurchaseOrder))
	}
	if h.Inventory != nil {
		groups = append(groups, ScanRoutes(h.Inventory), ItemRoutes(h.Inventory))
	}
	if h.Report != nil {
		groups = append(groups, ReportRoutes(h.Report), AuditLogRoutes(h.Report))
	}
	return groups
}
