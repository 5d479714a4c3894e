package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Action names a recorded operation
type Action string

const (
	ActionScanIn         Action = "SCAN_IN"
	ActionScanOut        Action = "SCAN_OUT"
	ActionDeleteRequest  Action = "DELETE_REQUEST"
	ActionDeleteApprove  Action = "DELETE_APPROVE"
	ActionDeleteReject   Action = "DELETE_REJECT"
	ActionMarkDamaged    Action = "MARK_DAMAGED"
	ActionPOCreate       Action = "PO_CREATE"
	ActionPOUpdate       Action = "PO_UPDATE"
	ActionPOCancel       Action = "PO_CANCEL"
	ActionPODelete       Action = "PO_DELETE"
	ActionCustomerCreate Action = "CUSTOMER_CREATE"
	ActionCustomerUpdate Action = "CUSTOMER_UPDATE"
	ActionCustomerStatus Action = "CUSTOMER_STATUS"
	ActionPartCreate     Action = "PART_CREATE"
	ActionPartUpdate     Action = "PART_UPDATE"
)

// Resource types
const (
	ResourceInventoryItem = "inventory_item"
	ResourcePurchaseOrder = "purchase_order"
	ResourceCustomer      = "customer"
	ResourcePart          = "part"
)

// Request is what a use case hands back to its caller for persistence. The
// use cases never write the audit log themselves.
type Request struct {
	Action       Action
	Details      string
	ResourceType string
	ResourceID   string
}

// Entry is an append-only audit log record
type Entry struct {
	ID           uuid.UUID
	UserID       string
	Username     string
	Action       Action
	Details      string
	ResourceType string
	ResourceID   string
	Timestamp    time.Time
}

// NewEntry stamps a request with the actor and time
func NewEntry(req Request, actor shared.Actor, now time.Time) *Entry {
	return &Entry{
		ID:           uuid.New(),
		UserID:       actor.UserID,
		Username:     actor.Username,
		Action:       req.Action,
		Details:      req.Details,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Timestamp:    now,
	}
}

// Repository persists audit entries. Filters may carry "action",
// "resource_type", "resource_id", "user_id".
type Repository interface {
	Append(ctx context.Context, entries ...*Entry) error
	FindAll(ctx context.Context, filter shared.Filter) ([]Entry, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
