package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodePONotFound, fmt.Sprintf("Purchase order %s not found", id))
		}
		return nil, shared.WrapStorage("find purchase order", err)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a purchase order by its PO number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).First(&model, "po_number = ?", poNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodePONotFound, fmt.Sprintf("Purchase order %s not found", poNumber))
		}
		return nil, shared.WrapStorage("find purchase order by number", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter)
	query = applyPagination(query, filter, PurchaseOrderSortFields, "created_at")

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, shared.WrapStorage("list purchase orders", err)
	}

	orders := make([]trade.PurchaseOrder, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.WrapStorage("count purchase orders", err)
	}
	return count, nil
}

// CountByStatus returns the number of purchase orders per status. Statuses
// without orders are present with a zero count.
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[trade.PurchaseOrderStatus]int64, error) {
	var rows []struct {
		Status trade.PurchaseOrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, shared.WrapStorage("count purchase orders by status", err)
	}

	counts := make(map[trade.PurchaseOrderStatus]int64, len(trade.AllPurchaseOrderStatuses))
	for _, s := range trade.AllPurchaseOrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ExistsByNumber checks PO number uniqueness
func (r *GormPurchaseOrderRepository) ExistsByNumber(ctx context.Context, poNumber string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("po_number = ?", poNumber)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, shared.WrapStorage("check po number", err)
	}
	return count > 0, nil
}

// FindLatestForPart returns the most recently created non-cancelled PO for a
// part, or nil
func (r *GormPurchaseOrderRepository) FindLatestForPart(ctx context.Context, partID uuid.UUID) (*trade.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Where("part_id = ? AND status <> ?", partID, string(trade.PurchaseOrderStatusCancelled)).
		Order("created_at DESC").
		Limit(1).
		Find(&orderModels).Error; err != nil {
		return nil, shared.WrapStorage("find latest purchase order for part", err)
	}
	if len(orderModels) == 0 {
		return nil, nil
	}
	return orderModels[0].ToDomain(), nil
}

// Save creates a new purchase order
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(order)
	err := r.db.WithContext(ctx).Create(model).Error
	return storageError("create purchase order", err,
		fmt.Sprintf("Purchase order number %s already exists", order.PONumber))
}

// SaveWithLock updates an existing order with optimistic locking. The
// delivered quantity is never written here; deliveries bump the version, so
// an edit based on a stale read fails instead of overwriting the ledger.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"po_number":      order.PONumber,
			"part_id":        order.PartID,
			"customer_id":    order.CustomerID,
			"total_quantity": order.TotalQuantity,
			"status":         order.Status,
			"remark":         order.Remark,
			"cancelled_at":   order.CancelledAt,
			"cancel_reason":  order.CancelReason,
			"version":        order.Version,
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return storageError("update purchase order", result.Error,
			fmt.Sprintf("Purchase order number %s already exists", order.PONumber))
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, order.ID); err != nil {
			return err
		}
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("Purchase order %s was modified by another user, reload and retry", order.PONumber))
	}
	return nil
}

// Delete physically removes a purchase order. A foreign key violation means
// inventory items still reference it.
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PurchaseOrderModel{}, "id = ?", id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return shared.NewDomainError(shared.CodePOInUse,
				"Purchase order is referenced by inventory items and cannot be deleted")
		}
		return shared.WrapStorage("delete purchase order", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodePONotFound, fmt.Sprintf("Purchase order %s not found", id))
	}
	return nil
}

// deliveryStatusSQL recomputes the status from the post-increment quantity.
// SQL evaluates every right-hand side against the row as it was before the
// UPDATE, hence the repeated "+ ?".
const deliveryStatusSQL = "CASE WHEN delivered_quantity + ? >= total_quantity THEN 'completed' " +
	"WHEN delivered_quantity + ? > 0 THEN 'partial' ELSE 'open' END"

// ApplyDelivery adds delta to delivered_quantity and recomputes the status in
// a single conditional UPDATE, so concurrent scans never lose an increment.
// When the UPDATE matches no row the order is re-read to report why.
func (r *GormPurchaseOrderRepository) ApplyDelivery(ctx context.Context, id uuid.UUID, delta int, policy trade.DeliveryPolicy) (*trade.PurchaseOrder, error) {
	if delta <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity,
			fmt.Sprintf("Delivery quantity must be a positive integer, got %d", delta))
	}

	db := r.db.WithContext(ctx)
	query := db.Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND status <> ?", id, trade.PurchaseOrderStatusCancelled)
	if !policy.AllowOverDelivery {
		query = query.Where("delivered_quantity + ? <= total_quantity", delta)
	}

	result := query.Updates(map[string]interface{}{
		"delivered_quantity": gorm.Expr("delivered_quantity + ?", delta),
		"status":             gorm.Expr(deliveryStatusSQL, delta, delta),
		"version":            gorm.Expr("version + 1"),
		"updated_at":         time.Now(),
	})
	if result.Error != nil {
		return nil, shared.WrapStorage("apply delivery", result.Error)
	}

	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 1 {
		return order, nil
	}

	if order.IsCancelled() {
		return nil, shared.NewDomainError(shared.CodePOCancelled,
			fmt.Sprintf("Purchase order %s is cancelled", order.PONumber))
	}
	return nil, trade.OverDeliveryError(order, delta)
}

func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(po_number) LIKE ?", searchPattern(filter.Search))
	}
	if status, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if customerID, ok := stringFilter(filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if partID, ok := stringFilter(filter, "part_id"); ok {
		query = query.Where("part_id = ?", partID)
	}
	return query
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
