package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen      PurchaseOrderStatus = "open"
	PurchaseOrderStatusPartial   PurchaseOrderStatus = "partial"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "completed"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// AllPurchaseOrderStatuses lists every status in display order
var AllPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusOpen,
	PurchaseOrderStatusPartial,
	PurchaseOrderStatusCompleted,
	PurchaseOrderStatusCancelled,
}

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusOpen, PurchaseOrderStatusPartial,
		PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// RecomputeStatus derives the status from quantities. Cancelled is a manual
// override and is never replaced.
func RecomputeStatus(delivered, total int, current PurchaseOrderStatus) PurchaseOrderStatus {
	if current == PurchaseOrderStatusCancelled {
		return PurchaseOrderStatusCancelled
	}
	switch {
	case delivered <= 0:
		return PurchaseOrderStatusOpen
	case delivered < total:
		return PurchaseOrderStatusPartial
	default:
		return PurchaseOrderStatusCompleted
	}
}

// PurchaseOrder is the PO ledger record for one part of one customer
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber          string
	PartID            uuid.UUID
	CustomerID        uuid.UUID
	TotalQuantity     int
	DeliveredQuantity int
	Status            PurchaseOrderStatus
	Remark            string
	CancelledAt       *time.Time
	CancelReason      string
}

// NewPurchaseOrder creates a new open purchase order
func NewPurchaseOrder(poNumber string, customerID, partID uuid.UUID, totalQuantity int, now time.Time) (*PurchaseOrder, error) {
	poNumber, err := normalizePONumber(poNumber)
	if err != nil {
		return nil, err
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order must reference a customer")
	}
	if partID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order must reference a part")
	}
	if err := validateTotalQuantity(totalQuantity); err != nil {
		return nil, err
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		PONumber:          poNumber,
		PartID:            partID,
		CustomerID:        customerID,
		TotalQuantity:     totalQuantity,
		Status:            PurchaseOrderStatusOpen,
	}, nil
}

// Update changes number, linkage and total. Delivered quantity is untouched
// and the status is recomputed against the new total.
func (o *PurchaseOrder) Update(poNumber string, customerID, partID uuid.UUID, totalQuantity int, now time.Time) error {
	poNumber, err := normalizePONumber(poNumber)
	if err != nil {
		return err
	}
	if err := validateTotalQuantity(totalQuantity); err != nil {
		return err
	}
	if customerID == uuid.Nil || partID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Purchase order must reference a customer and a part")
	}

	o.PONumber = poNumber
	o.CustomerID = customerID
	o.PartID = partID
	o.TotalQuantity = totalQuantity
	o.Status = RecomputeStatus(o.DeliveredQuantity, o.TotalQuantity, o.Status)
	o.Touch(now)
	o.IncrementVersion()
	return nil
}

// SetRemark sets the remark
func (o *PurchaseOrder) SetRemark(remark string) {
	o.Remark = strings.TrimSpace(remark)
}

// Cancel marks the order cancelled. Completed and already cancelled orders
// cannot be cancelled.
func (o *PurchaseOrder) Cancel(reason string, now time.Time) error {
	switch o.Status {
	case PurchaseOrderStatusCancelled:
		return shared.NewDomainError(shared.CodePOCancelled,
			fmt.Sprintf("Purchase order %s is already cancelled", o.PONumber))
	case PurchaseOrderStatusCompleted:
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot cancel purchase order %s in %s status", o.PONumber, o.Status))
	}
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = strings.TrimSpace(reason)
	o.Touch(now)
	o.IncrementVersion()
	return nil
}

// Credit adds delta to the delivered quantity in memory, applying the same
// rules the repository enforces in SQL.
func (o *PurchaseOrder) Credit(delta int, allowOverDelivery bool) error {
	if delta <= 0 {
		return shared.ErrInvalidQuantity
	}
	if o.IsCancelled() {
		return shared.NewDomainError(shared.CodePOCancelled,
			fmt.Sprintf("Purchase order %s is cancelled", o.PONumber))
	}
	if !allowOverDelivery && o.DeliveredQuantity+delta > o.TotalQuantity {
		return OverDeliveryError(o, delta)
	}
	o.DeliveredQuantity += delta
	o.Status = RecomputeStatus(o.DeliveredQuantity, o.TotalQuantity, o.Status)
	o.IncrementVersion()
	return nil
}

// OverDeliveryError builds the over-delivery error for the order and attempted delta
func OverDeliveryError(o *PurchaseOrder, delta int) error {
	return shared.NewDomainError(shared.CodeOverDelivery,
		fmt.Sprintf("Delivering %d to purchase order %s would exceed its total (%d of %d delivered)",
			delta, o.PONumber, o.DeliveredQuantity, o.TotalQuantity))
}

// RemainingQuantity returns the quantity not yet delivered, never negative
func (o *PurchaseOrder) RemainingQuantity() int {
	if o.DeliveredQuantity >= o.TotalQuantity {
		return 0
	}
	return o.TotalQuantity - o.DeliveredQuantity
}

// OverDeliveredQuantity returns how much was delivered beyond the total
func (o *PurchaseOrder) OverDeliveredQuantity() int {
	if o.DeliveredQuantity <= o.TotalQuantity {
		return 0
	}
	return o.DeliveredQuantity - o.TotalQuantity
}

// FulfillmentPercent returns delivered/total as a percentage rounded to 2dp
func (o *PurchaseOrder) FulfillmentPercent() decimal.Decimal {
	if o.TotalQuantity <= 0 {
		return decimal.Zero
	}
	delivered := decimal.NewFromInt(int64(o.DeliveredQuantity))
	total := decimal.NewFromInt(int64(o.TotalQuantity))
	return delivered.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsCancelled returns true if the order is cancelled
func (o *PurchaseOrder) IsCancelled() bool {
	return o.Status == PurchaseOrderStatusCancelled
}

// IsCompleted returns true if the order is completed
func (o *PurchaseOrder) IsCompleted() bool {
	return o.Status == PurchaseOrderStatusCompleted
}

// Matches reports whether the order is for the given part and customer
func (o *PurchaseOrder) Matches(partID, customerID uuid.UUID) bool {
	return o.PartID == partID && o.CustomerID == customerID
}

func normalizePONumber(poNumber string) (string, error) {
	poNumber = strings.TrimSpace(poNumber)
	if poNumber == "" {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "PO number cannot be empty")
	}
	if len(poNumber) > 64 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "PO number cannot exceed 64 characters")
	}
	return poNumber, nil
}

func validateTotalQuantity(total int) error {
	if total <= 0 {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Total quantity must be a positive integer")
	}
	return nil
}
