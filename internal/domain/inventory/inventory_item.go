package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// HistoryAction names what caused a history entry. Reports count scan
// actions only, so a rejected delete that restores IN is not a new intake.
type HistoryAction string

const (
	ActionScanIn        HistoryAction = "SCAN_IN"
	ActionScanOut       HistoryAction = "SCAN_OUT"
	ActionDeleteRequest HistoryAction = "DELETE_REQUEST"
	ActionDeleteReject  HistoryAction = "DELETE_REJECT"
	ActionMarkDamaged   HistoryAction = "MARK_DAMAGED"
)

// HistoryEntry records one status change of an item
type HistoryEntry struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	Status    ItemStatus
	Action    HistoryAction
	Quantity  int
	UserID    string
	Username  string
	Notes     string
	Timestamp time.Time
}

// DeleteRequest is the pending removal request attached to an item
type DeleteRequest struct {
	UserID         string
	Username       string
	Reason         string
	RequestedAt    time.Time
	PreviousStatus ItemStatus
}

// InventoryItem is one scanned-in unit of stock (which may carry a quantity)
type InventoryItem struct {
	shared.BaseAggregateRoot
	UniqueID      string
	PartID        uuid.UUID
	POID          uuid.UUID
	CustomerID    uuid.UUID
	Quantity      int
	Status        ItemStatus
	LotID         string
	GateID        string
	Location      string
	QRCodeData    string
	Barcode       string
	CreatedBy     string
	DeleteRequest *DeleteRequest
	History       []HistoryEntry
}

// NewItemParams carries the scan-in data for a new item
type NewItemParams struct {
	PartID     uuid.UUID
	POID       uuid.UUID
	CustomerID uuid.UUID
	Quantity   int
	LotID      string
	GateID     string
	Location   string
	Notes      string
}

// Transition is a validated status change ready to be persisted with a
// compare-and-swap on From
type Transition struct {
	ItemID        uuid.UUID
	From          ItemStatus
	To            ItemStatus
	Entry         HistoryEntry
	DeleteRequest *DeleteRequest
	At            time.Time
}

// NewInventoryItem creates an item in IN status with its initial history entry
func NewInventoryItem(params NewItemParams, codes Codes, actor shared.Actor, now time.Time) (*InventoryItem, error) {
	if params.Quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity,
			fmt.Sprintf("Quantity must be a positive integer, got %d", params.Quantity))
	}
	if params.PartID == uuid.Nil || params.POID == uuid.Nil || params.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item must reference a part, purchase order and customer")
	}
	if codes.UniqueID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item unique id is required")
	}

	item := &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		UniqueID:          codes.UniqueID,
		PartID:            params.PartID,
		POID:              params.POID,
		CustomerID:        params.CustomerID,
		Quantity:          params.Quantity,
		Status:            ItemStatusIn,
		LotID:             strings.TrimSpace(params.LotID),
		GateID:            strings.TrimSpace(params.GateID),
		Location:          strings.TrimSpace(params.Location),
		QRCodeData:        codes.QRPayload,
		Barcode:           codes.Barcode,
		CreatedBy:         actor.UserID,
	}
	item.History = []HistoryEntry{item.newEntry(ItemStatusIn, ActionScanIn, actor, params.Notes, now)}
	return item, nil
}

// ScanOut moves the item from IN to OUT
func (i *InventoryItem) ScanOut(actor shared.Actor, notes string, now time.Time) (*Transition, error) {
	if !i.Status.CanScanOut() {
		return nil, shared.NewDomainError(shared.CodeInvalidScanOutState,
			fmt.Sprintf("Item %s cannot be scanned out: current status is %s", i.UniqueID, i.Status))
	}
	return i.apply(ItemStatusOut, ActionScanOut, actor, notes, nil, now), nil
}

// RequestDelete moves the item to PENDING_DELETE, remembering the status it
// should return to if the request is rejected
func (i *InventoryItem) RequestDelete(actor shared.Actor, reason string, now time.Time) (*Transition, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Delete request reason is required")
	}
	if !i.Status.CanRequestDelete() {
		return nil, i.transitionError(ItemStatusPendingDelete)
	}
	req := &DeleteRequest{
		UserID:         actor.UserID,
		Username:       actor.Username,
		Reason:         reason,
		RequestedAt:    now,
		PreviousStatus: i.Status,
	}
	return i.apply(ItemStatusPendingDelete, ActionDeleteRequest, actor, reason, req, now), nil
}

// RejectDelete restores the status held before the delete request
func (i *InventoryItem) RejectDelete(actor shared.Actor, notes string, now time.Time) (*Transition, error) {
	if i.Status != ItemStatusPendingDelete {
		return nil, shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Item %s has no pending delete request (status %s)", i.UniqueID, i.Status))
	}
	previous := ItemStatusIn
	if i.DeleteRequest != nil && i.DeleteRequest.PreviousStatus.IsValid() {
		previous = i.DeleteRequest.PreviousStatus
	}
	if err := ValidateTransition(i.Status, previous); err != nil {
		return nil, err
	}
	return i.apply(previous, ActionDeleteReject, actor, notes, nil, now), nil
}

// EnsureDeletable checks the item may be physically removed by an approval
func (i *InventoryItem) EnsureDeletable() error {
	if i.Status != ItemStatusPendingDelete {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Item %s has no pending delete request (status %s)", i.UniqueID, i.Status))
	}
	return nil
}

// MarkDamaged moves the item from IN to DAMAGED
func (i *InventoryItem) MarkDamaged(actor shared.Actor, notes string, now time.Time) (*Transition, error) {
	if !i.Status.CanMarkDamaged() {
		return nil, i.transitionError(ItemStatusDamaged)
	}
	return i.apply(ItemStatusDamaged, ActionMarkDamaged, actor, notes, nil, now), nil
}

// HistoryStatuses returns the ordered statuses recorded in History
func (i *InventoryItem) HistoryStatuses() []ItemStatus {
	statuses := make([]ItemStatus, 0, len(i.History))
	for _, h := range i.History {
		statuses = append(statuses, h.Status)
	}
	return statuses
}

func (i *InventoryItem) apply(to ItemStatus, action HistoryAction, actor shared.Actor, notes string, req *DeleteRequest, now time.Time) *Transition {
	t := &Transition{
		ItemID:        i.ID,
		From:          i.Status,
		To:            to,
		Entry:         i.newEntry(to, action, actor, notes, now),
		DeleteRequest: req,
		At:            now,
	}
	i.Status = to
	i.DeleteRequest = req
	i.History = append(i.History, t.Entry)
	i.Touch(now)
	i.IncrementVersion()
	return t
}

func (i *InventoryItem) newEntry(status ItemStatus, action HistoryAction, actor shared.Actor, notes string, now time.Time) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.New(),
		ItemID:    i.ID,
		Status:    status,
		Action:    action,
		Quantity:  i.Quantity,
		UserID:    actor.UserID,
		Username:  actor.Username,
		Notes:     strings.TrimSpace(notes),
		Timestamp: now,
	}
}

func (i *InventoryItem) transitionError(to ItemStatus) error {
	return shared.NewDomainError(shared.CodeInvalidTransition,
		fmt.Sprintf("Item %s cannot change from %s to %s", i.UniqueID, i.Status, to))
}
