package persistence

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	appinv "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/trade"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RetryConfig bounds how often a transaction is re-run after a serialization
// failure or deadlock
type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the retry settings used when none are configured
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, BaseDelay: 20 * time.Millisecond}
}

// GormTransactionScope implements TransactionScope using GORM transactions.
// PostgreSQL aborts the whole transaction on 40001/40P01, so the retry unit
// is the transaction, never a single statement.
type GormTransactionScope struct {
	db     *gorm.DB
	retry  RetryConfig
	logger *zap.Logger
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, retry RetryConfig, logger *zap.Logger) *GormTransactionScope {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = DefaultRetryConfig().BaseDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormTransactionScope{db: db, retry: retry, logger: logger}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormTransactionalRepositories{tx: tx})
		})
		if err == nil {
			return nil
		}
		if IsTransientConflict(err) {
			s.logger.Warn("Transaction conflict, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.retry.Attempts),
				zap.Error(err),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retry.BaseDelay
	policy.MaxInterval = s.retry.BaseDelay * 10
	policy.MaxElapsedTime = 0

	return backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.retry.Attempts-1)), ctx))
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ItemRepo returns the inventory item repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ItemRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.tx)
}

// PurchaseOrderRepo returns the purchase order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// PartRepo returns the part repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PartRepo() catalog.PartRepository {
	return NewGormPartRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
