package inventory

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
)

// ==================== Scan DTOs ====================

// ScanInRequest represents a request to register incoming stock
type ScanInRequest struct {
	PartID   uuid.UUID `json:"part_id" binding:"required"`
	POID     uuid.UUID `json:"po_id" binding:"required"`
	Quantity int       `json:"quantity"`
	LotID    string    `json:"lot_id" binding:"max=64"`
	GateID   string    `json:"gate_id" binding:"max=64"`
	Location string    `json:"location" binding:"max=100"`
	Copies   int       `json:"copies"`
	Notes    string    `json:"notes" binding:"max=500"`

	// badQuantity holds the raw JSON of a quantity that is not an integer
	badQuantity string
}

// UnmarshalJSON accepts any JSON value for quantity so that a non-numeric or
// fractional quantity is reported as INVALID_QUANTITY at its place in the
// scan-in checks rather than as a malformed body.
func (r *ScanInRequest) UnmarshalJSON(data []byte) error {
	type plain ScanInRequest
	aux := struct {
		*plain
		Quantity json.RawMessage `json:"quantity"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Quantity, r.badQuantity = 0, ""
	raw := strings.TrimSpace(string(aux.Quantity))
	if raw == "" || raw == "null" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.badQuantity = raw
		return nil
	}
	r.Quantity = n
	return nil
}

// ScanOutRequest represents a request to scan an item out
type ScanOutRequest struct {
	ScanCode string `json:"scan_code" binding:"required"`
	Notes    string `json:"notes" binding:"max=500"`
}

// LabelPayload is one printable label for a scanned-in item
type LabelPayload struct {
	Copy      int    `json:"copy"`
	UniqueID  string `json:"unique_id"`
	QRPayload string `json:"qr_payload"`
	Barcode   string `json:"barcode"`
}

// ScanInResult is returned by ScanIn
type ScanInResult struct {
	Item          ItemResponse          `json:"item"`
	Labels        []LabelPayload        `json:"labels"`
	PurchaseOrder PurchaseOrderSnapshot `json:"purchase_order"`
	Audit         audit.Request         `json:"-"`
}

// ScanOutResult is returned by ScanOut
type ScanOutResult struct {
	Item  ItemResponse  `json:"item"`
	Audit audit.Request `json:"-"`
}

// ScanPreview is the read-only view shown before a scan out is committed
type ScanPreview struct {
	Item       ItemResponse `json:"item"`
	CanScanOut bool         `json:"can_scan_out"`
	Reason     string       `json:"reason,omitempty"`
}

// ==================== Item DTOs ====================

// PartSummary is the part data shown with an item
type PartSummary struct {
	ID             uuid.UUID `json:"id"`
	InternalPartNo string    `json:"internal_part_no"`
	Name           string    `json:"name"`
}

// CustomerSummary is the customer data shown with an item
type CustomerSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
}

// PurchaseOrderSnapshot is the PO ledger state after an operation
type PurchaseOrderSnapshot struct {
	ID                uuid.UUID `json:"id"`
	PONumber          string    `json:"po_number"`
	TotalQuantity     int       `json:"total_quantity"`
	DeliveredQuantity int       `json:"delivered_quantity"`
	RemainingQuantity int       `json:"remaining_quantity"`
	Status            string    `json:"status"`
}

// DeleteRequestResponse is the pending delete request of an item
type DeleteRequestResponse struct {
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	Reason         string    `json:"reason"`
	RequestedAt    time.Time `json:"requested_at"`
	PreviousStatus string    `json:"previous_status"`
}

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID            uuid.UUID              `json:"id"`
	UniqueID      string                 `json:"unique_id"`
	PartID        uuid.UUID              `json:"part_id"`
	POID          uuid.UUID              `json:"po_id"`
	CustomerID    uuid.UUID              `json:"customer_id"`
	Quantity      int                    `json:"quantity"`
	Status        string                 `json:"status"`
	LotID         string                 `json:"lot_id"`
	GateID        string                 `json:"gate_id"`
	Location      string                 `json:"location"`
	QRCodeData    string                 `json:"qr_code_data"`
	Barcode       string                 `json:"barcode"`
	CreatedBy     string                 `json:"created_by"`
	DeleteRequest *DeleteRequestResponse `json:"delete_request,omitempty"`
	Part          *PartSummary           `json:"part,omitempty"`
	Customer      *CustomerSummary       `json:"customer,omitempty"`
	PurchaseOrder *PurchaseOrderSnapshot `json:"purchase_order,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// HistoryEntryResponse represents one history entry
type HistoryEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Action    string    `json:"action"`
	Quantity  int       `json:"quantity"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status"`
	PartID     *uuid.UUID `form:"part_id"`
	POID       *uuid.UUID `form:"po_id"`
	CustomerID *uuid.UUID `form:"customer_id"`
	LotID      string     `form:"lot_id"`
	GateID     string     `form:"gate_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the list filter to a repository filter
func (f ItemListFilter) ToFilter() shared.Filter {
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
	if f.PartID != nil {
		filter.Filters["part_id"] = *f.PartID
	}
	if f.POID != nil {
		filter.Filters["po_id"] = *f.POID
	}
	if f.CustomerID != nil {
		filter.Filters["customer_id"] = *f.CustomerID
	}
	if f.LotID != "" {
		filter.Filters["lot_id"] = f.LotID
	}
	if f.GateID != "" {
		filter.Filters["gate_id"] = f.GateID
	}
	return filter.Normalize()
}

// DeleteRequestInput represents a request to delete an item
type DeleteRequestInput struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// RejectDeleteInput represents the rejection of a delete request
type RejectDeleteInput struct {
	Notes string `json:"notes" binding:"max=500"`
}

// ItemActionResult is returned by single-item lifecycle operations
type ItemActionResult struct {
	Item  ItemResponse  `json:"item"`
	Audit audit.Request `json:"-"`
}

// ApproveDeleteResult is returned when an item is removed
type ApproveDeleteResult struct {
	ItemID   uuid.UUID     `json:"item_id"`
	UniqueID string        `json:"unique_id"`
	Audit    audit.Request `json:"-"`
}

// MarkDamagedRequest represents a bulk damage marking request
type MarkDamagedRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" binding:"required,min=1,max=200"`
	Notes   string      `json:"notes" binding:"max=500"`
}

// DamageOutcome is the per-item result of a bulk damage marking
type DamageOutcome struct {
	ItemID    uuid.UUID `json:"item_id"`
	UniqueID  string    `json:"unique_id,omitempty"`
	Success   bool      `json:"success"`
	ErrorCode string    `json:"error_code,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// MarkDamagedResult is returned by MarkDamaged
type MarkDamagedResult struct {
	Outcomes  []DamageOutcome `json:"outcomes"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Audit     []audit.Request `json:"-"`
}

// ==================== Converters ====================

// ToItemResponse converts a domain item to a response
func ToItemResponse(item *inventory.InventoryItem) ItemResponse {
	resp := ItemResponse{
		ID:         item.ID,
		UniqueID:   item.UniqueID,
		PartID:     item.PartID,
		POID:       item.POID,
		CustomerID: item.CustomerID,
		Quantity:   item.Quantity,
		Status:     item.Status.String(),
		LotID:      item.LotID,
		GateID:     item.GateID,
		Location:   item.Location,
		QRCodeData: item.QRCodeData,
		Barcode:    item.Barcode,
		CreatedBy:  item.CreatedBy,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
	if dr := item.DeleteRequest; dr != nil {
		resp.DeleteRequest = &DeleteRequestResponse{
			UserID:         dr.UserID,
			Username:       dr.Username,
			Reason:         dr.Reason,
			RequestedAt:    dr.RequestedAt,
			PreviousStatus: dr.PreviousStatus.String(),
		}
	}
	return resp
}

// ToItemResponses converts a slice of domain items
func ToItemResponses(items []inventory.InventoryItem) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses
}

// ToHistoryResponses converts history entries
func ToHistoryResponses(entries []inventory.HistoryEntry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = HistoryEntryResponse{
			ID:        e.ID,
			Status:    e.Status.String(),
			Action:    string(e.Action),
			Quantity:  e.Quantity,
			UserID:    e.UserID,
			Username:  e.Username,
			Notes:     e.Notes,
			Timestamp: e.Timestamp,
		}
	}
	return responses
}

// ToPurchaseOrderSnapshot converts a purchase order to its ledger snapshot
func ToPurchaseOrderSnapshot(po *trade.PurchaseOrder) PurchaseOrderSnapshot {
	return PurchaseOrderSnapshot{
		ID:                po.ID,
		PONumber:          po.PONumber,
		TotalQuantity:     po.TotalQuantity,
		DeliveredQuantity: po.DeliveredQuantity,
		RemainingQuantity: po.RemainingQuantity(),
		Status:            po.Status.String(),
	}
}

func toPartSummary(p *catalog.Part) *PartSummary {
	return &PartSummary{ID: p.ID, InternalPartNo: p.InternalPartNo, Name: p.Name}
}

func toCustomerSummary(c *partner.Customer) *CustomerSummary {
	return &CustomerSummary{ID: c.ID, Name: c.Name, Status: string(c.Status)}
}
