package inventory

import (
	"fmt"

	"github.com/wms/backend/internal/domain/shared"
)

// ItemStatus is the lifecycle state of an inventory item
type ItemStatus string

const (
	ItemStatusIn            ItemStatus = "IN"
	ItemStatusOut           ItemStatus = "OUT"
	ItemStatusPendingDelete ItemStatus = "PENDING_DELETE"
	ItemStatusDamaged       ItemStatus = "DAMAGED"
)

// AllItemStatuses lists every status
var AllItemStatuses = []ItemStatus{
	ItemStatusIn,
	ItemStatusOut,
	ItemStatusPendingDelete,
	ItemStatusDamaged,
}

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusIn, ItemStatusOut, ItemStatusPendingDelete, ItemStatusDamaged:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// transitions is the single source of allowed lifecycle moves. Leaving
// PENDING_DELETE is only allowed back to the status the item held when the
// delete was requested; that extra guard lives in InventoryItem.RejectDelete.
var transitions = map[ItemStatus][]ItemStatus{
	ItemStatusIn:            {ItemStatusOut, ItemStatusPendingDelete, ItemStatusDamaged},
	ItemStatusOut:           {ItemStatusPendingDelete},
	ItemStatusDamaged:       {ItemStatusPendingDelete},
	ItemStatusPendingDelete: {ItemStatusIn, ItemStatusOut, ItemStatusDamaged},
}

// CanTransitionTo checks if the status can transition to the target status
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanScanOut returns true if the item may be scanned out. PENDING_DELETE may
// only return to OUT through a rejected delete request.
func (s ItemStatus) CanScanOut() bool {
	return s == ItemStatusIn
}

// CanMarkDamaged returns true if the item may be marked damaged
func (s ItemStatus) CanMarkDamaged() bool {
	return s == ItemStatusIn
}

// CanRequestDelete returns true if a delete request may be submitted
func (s ItemStatus) CanRequestDelete() bool {
	return s.CanTransitionTo(ItemStatusPendingDelete)
}

// ValidateTransition returns InvalidTransition naming both statuses when the
// move is not in the table
func ValidateTransition(from, to ItemStatus) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	return shared.NewDomainError(shared.CodeInvalidTransition,
		fmt.Sprintf("Item status cannot change from %s to %s", from, to))
}

// IsValidHistoryPath reports whether the sequence of statuses recorded in an
// item's history is a walk through the transition table starting at IN
func IsValidHistoryPath(statuses []ItemStatus) bool {
	if len(statuses) == 0 || statuses[0] != ItemStatusIn {
		return false
	}
	for i := 1; i < len(statuses); i++ {
		if !statuses[i-1].CanTransitionTo(statuses[i]) {
			return false
		}
	}
	return true
}
