package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// PartRepository defines the interface for part persistence
type PartRepository interface {
	// FindByID finds a part by ID, returning ErrPartNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Part, error)

	// FindAll lists parts; Filters may carry "customer_id"
	FindAll(ctx context.Context, filter shared.Filter) ([]Part, error)

	// Count counts parts matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByPartNo checks (customer, internal part number) uniqueness, excluding excludeID
	ExistsByPartNo(ctx context.Context, customerID uuid.UUID, partNo string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a part
	Save(ctx context.Context, part *Part) error

	// SetPONumber rewrites the cached PO number (nil clears it)
	SetPONumber(ctx context.Context, partID uuid.UUID, poNumber *string) error
}
