package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// DeliveryPolicy controls how ApplyDelivery treats deliveries past the total
type DeliveryPolicy struct {
	AllowOverDelivery bool
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order by ID, returning ErrPONotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds a purchase order by its PO number
	FindByNumber(ctx context.Context, poNumber string) (*PurchaseOrder, error)

	// FindAll lists purchase orders; Filters may carry "status", "customer_id", "part_id"
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// Count counts purchase orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus returns the number of purchase orders per status
	CountByStatus(ctx context.Context) (map[PurchaseOrderStatus]int64, error)

	// ExistsByNumber checks PO number uniqueness, excluding excludeID
	ExistsByNumber(ctx context.Context, poNumber string, excludeID *uuid.UUID) (bool, error)

	// FindLatestForPart returns the most recently created PO for a part, or nil
	FindLatestForPart(ctx context.Context, partID uuid.UUID) (*PurchaseOrder, error)

	// Save creates a new purchase order
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// Delete physically removes a purchase order
	Delete(ctx context.Context, id uuid.UUID) error

	// ApplyDelivery atomically adds delta to the delivered quantity and
	// recomputes the status in the same statement. It returns the updated order.
	ApplyDelivery(ctx context.Context, id uuid.UUID, delta int, policy DeliveryPolicy) (*PurchaseOrder, error)
}
