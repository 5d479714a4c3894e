package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by ID, returning ErrCustomerNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindAll lists customers; Filters may carry "status"
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts customers matching the filter (pagination ignored)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByName checks name uniqueness among non-deleted customers, excluding excludeID
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error
}
