package inventory

import (
	"context"

	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories a scan
// touches. All repository operations inside Execute are committed or rolled
// back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// Implementations may re-run fn when the database reports a transient
	// conflict, so fn must not have side effects outside the repositories.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	// ItemRepo returns the inventory item repository scoped to the current transaction
	ItemRepo() inventory.InventoryItemRepository
	// PurchaseOrderRepo returns the purchase order repository scoped to the current transaction
	PurchaseOrderRepo() trade.PurchaseOrderRepository
	// PartRepo returns the part repository scoped to the current transaction
	PartRepo() catalog.PartRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	itemRepo inventory.InventoryItemRepository
	poRepo   trade.PurchaseOrderRepository
	partRepo catalog.PartRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	itemRepo inventory.InventoryItemRepository,
	poRepo trade.PurchaseOrderRepository,
	partRepo catalog.PartRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		itemRepo: itemRepo,
		poRepo:   poRepo,
		partRepo: partRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the inventory item repository.
func (s *NoOpTransactionScope) ItemRepo() inventory.InventoryItemRepository {
	return s.itemRepo
}

// PurchaseOrderRepo returns the purchase order repository.
func (s *NoOpTransactionScope) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return s.poRepo
}

// PartRepo returns the part repository.
func (s *NoOpTransactionScope) PartRepo() catalog.PartRepository {
	return s.partRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
