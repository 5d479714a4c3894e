package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
)

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	PONumber      string    `json:"po_number" binding:"required,min=1,max=64"`
	CustomerID    uuid.UUID `json:"customer_id" binding:"required"`
	PartID        uuid.UUID `json:"part_id" binding:"required"`
	TotalQuantity int       `json:"total_quantity" binding:"required,min=1"`
	Remark        string    `json:"remark" binding:"max=500"`
}

// UpdatePurchaseOrderRequest represents a request to update a purchase order.
// Nil fields keep their current value.
type UpdatePurchaseOrderRequest struct {
	PONumber      *string    `json:"po_number" binding:"omitempty,min=1,max=64"`
	CustomerID    *uuid.UUID `json:"customer_id"`
	PartID        *uuid.UUID `json:"part_id"`
	TotalQuantity *int       `json:"total_quantity" binding:"omitempty,min=1"`
	Remark        *string    `json:"remark" binding:"omitempty,max=500"`
}

// CancelPurchaseOrderRequest represents a request to cancel a purchase order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                 uuid.UUID       `json:"id"`
	PONumber           string          `json:"po_number"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	PartID             uuid.UUID       `json:"part_id"`
	TotalQuantity      int             `json:"total_quantity"`
	DeliveredQuantity  int             `json:"delivered_quantity"`
	RemainingQuantity  int             `json:"remaining_quantity"`
	FulfillmentPercent decimal.Decimal `json:"fulfillment_percent"`
	Status             string          `json:"status"`
	Remark             string          `json:"remark"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason       string          `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// PurchaseOrderListFilter represents filter options for the purchase order list
type PurchaseOrderListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=open partial completed cancelled"`
	CustomerID *uuid.UUID `form:"customer_id"`
	PartID     *uuid.UUID `form:"part_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the list filter to a repository filter
func (f PurchaseOrderListFilter) ToFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.CustomerID != nil {
		filter.Filters["customer_id"] = *f.CustomerID
	}
	if f.PartID != nil {
		filter.Filters["part_id"] = *f.PartID
	}
	return filter.Normalize()
}

// PurchaseOrderStatusSummary counts purchase orders per status
type PurchaseOrderStatusSummary struct {
	Open      int64 `json:"open"`
	Partial   int64 `json:"partial"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to PurchaseOrderResponse
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:                 o.ID,
		PONumber:           o.PONumber,
		CustomerID:         o.CustomerID,
		PartID:             o.PartID,
		TotalQuantity:      o.TotalQuantity,
		DeliveredQuantity:  o.DeliveredQuantity,
		RemainingQuantity:  o.RemainingQuantity(),
		FulfillmentPercent: o.FulfillmentPercent(),
		Status:             string(o.Status),
		Remark:             o.Remark,
		CancelledAt:        o.CancelledAt,
		CancelReason:       o.CancelReason,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		Version:            o.Version,
	}
}

// ToPurchaseOrderResponses converts a slice of domain PurchaseOrders
func ToPurchaseOrderResponses(orders []trade.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses
}
