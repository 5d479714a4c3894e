package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// StockTotals are current counts over all items
type StockTotals struct {
	InStockItems    int64
	InStockQuantity int64
	OutItems        int64
	PendingDelete   int64
	Damaged         int64
}

// InventoryItemRepository defines the interface for inventory item persistence
type InventoryItemRepository interface {
	// FindByID finds an item by ID, returning ErrItemNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByUniqueID finds an item by its unique id
	FindByUniqueID(ctx context.Context, uniqueID string) (*InventoryItem, error)

	// ExistsByUniqueID checks whether a unique id is already taken
	ExistsByUniqueID(ctx context.Context, uniqueID string) (bool, error)

	// FindAll lists items. Filters may carry "status", "part_id", "po_id",
	// "customer_id", "lot_id", "gate_id"; Search matches unique id and location.
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryItem, error)

	// Count counts items matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByPO counts items referencing a purchase order
	CountByPO(ctx context.Context, poID uuid.UUID) (int64, error)

	// Create inserts the item and its initial history entries
	Create(ctx context.Context, item *InventoryItem) error

	// ApplyTransition updates status with a compare-and-swap on t.From and
	// appends t.Entry. When the item is not in t.From it returns
	// InvalidTransition naming the current status, or ErrItemNotFound.
	ApplyTransition(ctx context.Context, t *Transition) error

	// DeleteIfStatus physically removes the item (and its history) only if it
	// is still in the expected status
	DeleteIfStatus(ctx context.Context, id uuid.UUID, expected ItemStatus) error

	// FindHistory returns an item's history oldest first
	FindHistory(ctx context.Context, itemID uuid.UUID) ([]HistoryEntry, error)

	// FindHistoryBetween returns history entries with from <= timestamp < to
	// for the given actions
	FindHistoryBetween(ctx context.Context, from, to time.Time, actions []HistoryAction) ([]HistoryEntry, error)

	// StockTotals aggregates current item counts by status
	StockTotals(ctx context.Context) (StockTotals, error)
}
