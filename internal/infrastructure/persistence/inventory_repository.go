package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByID finds an inventory item by ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeItemNotFound, fmt.Sprintf("Inventory item %s not found", id))
		}
		return nil, shared.WrapStorage("find inventory item", err)
	}
	return model.ToDomain(), nil
}

// FindByUniqueID finds an inventory item by its printed unique id
func (r *GormInventoryItemRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := r.db.WithContext(ctx).First(&model, "unique_id = ?", uniqueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeItemNotFound,
				fmt.Sprintf("No inventory item with code %s", uniqueID))
		}
		return nil, shared.WrapStorage("find inventory item by code", err)
	}
	return model.ToDomain(), nil
}

// ExistsByUniqueID checks whether a unique id is already taken
func (r *GormInventoryItemRepository) ExistsByUniqueID(ctx context.Context, uniqueID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("unique_id = ?", uniqueID).
		Count(&count).Error; err != nil {
		return false, shared.WrapStorage("check item code", err)
	}
	return count > 0, nil
}

// FindAll finds all inventory items matching the filter
func (r *GormInventoryItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, error) {
	var itemModels []models.InventoryItemModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InventoryItemModel{}), filter)
	query = applyPagination(query, filter, InventoryItemSortFields, "created_at")

	if err := query.Find(&itemModels).Error; err != nil {
		return nil, shared.WrapStorage("list inventory items", err)
	}

	items := make([]inventory.InventoryItem, len(itemModels))
	for i, model := range itemModels {
		items[i] = *model.ToDomain()
	}
	return items, nil
}

// Count counts inventory items matching the filter
func (r *GormInventoryItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InventoryItemModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.WrapStorage("count inventory items", err)
	}
	return count, nil
}

// CountByPO counts items referencing a purchase order
func (r *GormInventoryItemRepository) CountByPO(ctx context.Context, poID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("po_id = ?", poID).
		Count(&count).Error; err != nil {
		return 0, shared.WrapStorage("count items for purchase order", err)
	}
	return count, nil
}

// Create inserts the item together with its initial history entries
func (r *GormInventoryItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.InventoryItemModelFromDomain(item)).Error; err != nil {
			if isForeignKeyViolation(err) {
				return shared.NewDomainError(shared.CodeInvalidInput,
					"Inventory item references a part, purchase order or customer that does not exist")
			}
			return storageError("create inventory item", err,
				fmt.Sprintf("Item code %s is already in use", item.UniqueID))
		}
		if len(item.History) == 0 {
			return nil
		}
		history := make([]*models.ItemHistoryModel, len(item.History))
		for i, entry := range item.History {
			history[i] = models.ItemHistoryModelFromDomain(entry)
		}
		if err := tx.Create(&history).Error; err != nil {
			return shared.WrapStorage("create item history", err)
		}
		return nil
	})
}

// ApplyTransition moves the item with a compare-and-swap on its status and
// appends the history entry in the same transaction
func (r *GormInventoryItemRepository) ApplyTransition(ctx context.Context, t *inventory.Transition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.InventoryItemModel
		req.SetDeleteRequest(t.DeleteRequest)

		result := tx.Model(&models.InventoryItemModel{}).
			Where("id = ? AND status = ?", t.ItemID, t.From).
			Updates(map[string]interface{}{
				"status":                 t.To,
				"version":                gorm.Expr("version + 1"),
				"updated_at":             t.At,
				"delete_requested_by":    req.DeleteRequestedBy,
				"delete_requested_name":  req.DeleteRequestedName,
				"delete_reason":          req.DeleteReason,
				"delete_requested_at":    req.DeleteRequestedAt,
				"delete_previous_status": req.DeletePreviousStatus,
			})
		if result.Error != nil {
			return shared.WrapStorage("update item status", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.classifyLostSwap(ctx, tx, t.ItemID, t.From, t.To)
		}

		if err := tx.Create(models.ItemHistoryModelFromDomain(t.Entry)).Error; err != nil {
			return shared.WrapStorage("append item history", err)
		}
		return nil
	})
}

// DeleteIfStatus removes the item and its history, but only while the item
// is still in the expected status
func (r *GormInventoryItemRepository) DeleteIfStatus(ctx context.Context, id uuid.UUID, expected inventory.ItemStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", id, expected).Delete(&models.InventoryItemModel{})
		if result.Error != nil {
			return shared.WrapStorage("delete inventory item", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.classifyLostSwap(ctx, tx, id, expected, "")
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.ItemHistoryModel{}).Error; err != nil {
			return shared.WrapStorage("delete item history", err)
		}
		return nil
	})
}

// classifyLostSwap explains why a status compare-and-swap matched no row
func (r *GormInventoryItemRepository) classifyLostSwap(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected, target inventory.ItemStatus) error {
	var current models.InventoryItemModel
	if err := tx.WithContext(ctx).Select("id", "unique_id", "status").First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewDomainError(shared.CodeItemNotFound, fmt.Sprintf("Inventory item %s not found", id))
		}
		return shared.WrapStorage("reload inventory item", err)
	}
	if target == "" {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Item %s is no longer %s (current status %s)", current.UniqueID, expected, current.Status))
	}
	return shared.NewDomainError(shared.CodeInvalidTransition,
		fmt.Sprintf("Item %s cannot change from %s to %s: current status is %s",
			current.UniqueID, expected, target, current.Status))
}

// FindHistory returns an item's history oldest first
func (r *GormInventoryItemRepository) FindHistory(ctx context.Context, itemID uuid.UUID) ([]inventory.HistoryEntry, error) {
	var rows []models.ItemHistoryModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("timestamp ASC").
		Find(&rows).Error; err != nil {
		return nil, shared.WrapStorage("find item history", err)
	}
	return toHistoryEntries(rows), nil
}

// FindHistoryBetween returns history entries with from <= timestamp < to
func (r *GormInventoryItemRepository) FindHistoryBetween(ctx context.Context, from, to time.Time, actions []inventory.HistoryAction) ([]inventory.HistoryEntry, error) {
	query := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from, to)
	if len(actions) > 0 {
		query = query.Where("action IN ?", actions)
	}

	var rows []models.ItemHistoryModel
	if err := query.Order("timestamp ASC").Find(&rows).Error; err != nil {
		return nil, shared.WrapStorage("find history window", err)
	}
	return toHistoryEntries(rows), nil
}

// StockTotals aggregates current item counts by status
func (r *GormInventoryItemRepository) StockTotals(ctx context.Context) (inventory.StockTotals, error) {
	var rows []struct {
		Status   inventory.ItemStatus
		Items    int64
		Quantity int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Select("status, COUNT(*) AS items, COALESCE(SUM(quantity), 0) AS quantity").
		Group("status").
		Scan(&rows).Error; err != nil {
		return inventory.StockTotals{}, shared.WrapStorage("aggregate stock totals", err)
	}

	var totals inventory.StockTotals
	for _, row := range rows {
		switch row.Status {
		case inventory.ItemStatusIn:
			totals.InStockItems = row.Items
			totals.InStockQuantity = row.Quantity
		case inventory.ItemStatusOut:
			totals.OutItems = row.Items
		case inventory.ItemStatusPendingDelete:
			totals.PendingDelete = row.Items
		case inventory.ItemStatusDamaged:
			totals.Damaged = row.Items
		}
	}
	return totals, nil
}

func (r *GormInventoryItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("LOWER(unique_id) LIKE ? OR LOWER(location) LIKE ? OR LOWER(lot_id) LIKE ?",
			pattern, pattern, pattern)
	}
	for _, column := range []string{"status", "part_id", "po_id", "customer_id", "lot_id", "gate_id"} {
		if v, ok := stringFilter(filter, column); ok {
			query = query.Where(column+" = ?", v)
		}
	}
	return query
}

func toHistoryEntries(rows []models.ItemHistoryModel) []inventory.HistoryEntry {
	entries := make([]inventory.HistoryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries
}

// Ensure GormInventoryItemRepository implements InventoryItemRepository
var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
