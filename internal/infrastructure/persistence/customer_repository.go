package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeCustomerNotFound,
				fmt.Sprintf("Customer %s not found", id))
		}
		return nil, shared.WrapStorage("find customer", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var customerModels []models.CustomerModel
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	query = applyPagination(query, filter, CustomerSortFields, "created_at")

	if err := query.Find(&customerModels).Error; err != nil {
		return nil, shared.WrapStorage("list customers", err)
	}

	customers := make([]partner.Customer, len(customerModels))
	for i, model := range customerModels {
		customers[i] = *model.ToDomain()
	}
	return customers, nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.WrapStorage("count customers", err)
	}
	return count, nil
}

// ExistsByName checks name uniqueness among customers that are not deleted
func (r *GormCustomerRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("LOWER(name) = LOWER(?) AND status <> ?", name, partner.CustomerStatusDeleted)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, shared.WrapStorage("check customer name", err)
	}
	return count > 0, nil
}

// Save inserts a new customer (version 1) or updates an existing one with an
// optimistic version check
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	const duplicate = "A customer with this name already exists"

	if customer.Version <= 1 {
		return storageError("create customer", r.db.WithContext(ctx).Create(model).Error, duplicate)
	}

	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ? AND version = ?", customer.ID, customer.Version-1).
		Updates(map[string]interface{}{
			"name":         model.Name,
			"address":      model.Address,
			"contact_info": model.ContactInfo,
			"status":       model.Status,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return storageError("update customer", result.Error, duplicate)
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("Customer %s was modified by another user, reload and retry", customer.Name))
	}
	return nil
}

func (r *GormCustomerRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := searchPattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_info) LIKE ?", pattern, pattern)
	}
	if status, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	return query
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
