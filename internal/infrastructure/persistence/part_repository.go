package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartRepository implements PartRepository using GORM
type GormPartRepository struct {
	db *gorm.DB
}

// NewGormPartRepository creates a new GormPartRepository
func NewGormPartRepository(db *gorm.DB) *GormPartRepository {
	return &GormPartRepository{db: db}
}

// FindByID finds a part by its ID
func (r *GormPartRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Part, error) {
	var model models.PartModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodePartNotFound, fmt.Sprintf("Part %s not found", id))
		}
		return nil, shared.WrapStorage("find part", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all parts matching the filter
func (r *GormPartRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Part, error) {
	var partModels []models.PartModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.PartModel{}), filter)
	query = applyPagination(query, filter, PartSortFields, "created_at")

	if err := query.Find(&partModels).Error; err != nil {
		return nil, shared.WrapStorage("list parts", err)
	}

	parts := make([]catalog.Part, len(partModels))
	for i, model := range partModels {
		parts[i] = *model.ToDomain()
	}
	return parts, nil
}

// Count counts parts matching the filter
func (r *GormPartRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.PartModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.WrapStorage("count parts", err)
	}
	return count, nil
}

// ExistsByPartNo checks whether the customer already has a part with this number
func (r *GormPartRepository) ExistsByPartNo(ctx context.Context, customerID uuid.UUID, partNo string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PartModel{}).
		Where("customer_id = ? AND internal_part_no = ?", customerID, partNo)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, shared.WrapStorage("check part number", err)
	}
	return count > 0, nil
}

// Save inserts a new part or updates the descriptive fields of an existing
// one with an optimistic version check. The PO number cache is left alone;
// only SetPONumber writes it.
func (r *GormPartRepository) Save(ctx context.Context, part *catalog.Part) error {
	model := models.PartModelFromDomain(part)
	duplicate := fmt.Sprintf("Part %s already exists for this customer", part.InternalPartNo)

	if part.Version <= 1 {
		return storageError("create part", r.db.WithContext(ctx).Create(model).Error, duplicate)
	}

	result := r.db.WithContext(ctx).
		Model(&models.PartModel{}).
		Where("id = ? AND version = ?", part.ID, part.Version-1).
		Updates(map[string]interface{}{
			"name":           model.Name,
			"supplier_info":  model.SupplierInfo,
			"specifications": model.Specifications,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})
	if result.Error != nil {
		return storageError("update part", result.Error, duplicate)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("Part %s was modified by another user, reload and retry", part.InternalPartNo))
	}
	return nil
}

// SetPONumber rewrites the cached PO number without touching the version
func (r *GormPartRepository) SetPONumber(ctx context.Context, partID uuid.UUID, poNumber *string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PartModel{}).
		Where("id = ?", partID).
		Update("po_number", poNumber)
	if result.Error != nil {
		return shared.WrapStorage("update part po number", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodePartNotFound, fmt.Sprintf("Part %s not found", partID))
	}
	return nil
}

func (r *GormPartRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("LOWER(internal_part_no) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	if customerID, ok := stringFilter(filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	return query
}

// Ensure GormPartRepository implements PartRepository
var _ catalog.PartRepository = (*GormPartRepository)(nil)
