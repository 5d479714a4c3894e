// Package testutil provides common test utilities for the warehouse backend:
// testify mocks of the repository contracts, fixed clocks, sqlmock-backed
// GORM handles and gin test helpers.
package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockPartRepository is a mock implementation of PartRepository
type MockPartRepository struct {
	mock.Mock
}

func (m *MockPartRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Part, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Part), args.Error(1)
}

func (m *MockPartRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Part, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Part), args.Error(1)
}

func (m *MockPartRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartRepository) ExistsByPartNo(ctx context.Context, customerID uuid.UUID, partNo string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, customerID, partNo, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartRepository) Save(ctx context.Context, part *catalog.Part) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockPartRepository) SetPONumber(ctx context.Context, partID uuid.UUID, poNumber *string) error {
	args := m.Called(ctx, partID, poNumber)
	return args.Error(0)
}

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, poNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[trade.PurchaseOrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[trade.PurchaseOrderStatus]int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ExistsByNumber(ctx context.Context, poNumber string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, poNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindLatestForPart(ctx context.Context, partID uuid.UUID) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, partID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) ApplyDelivery(ctx context.Context, id uuid.UUID, delta int, policy trade.DeliveryPolicy) (*trade.PurchaseOrder, error) {
	args := m.Called(ctx, id, delta, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PurchaseOrder), args.Error(1)
}

// MockInventoryItemRepository is a mock implementation of InventoryItemRepository
type MockInventoryItemRepository struct {
	mock.Mock
}

func (m *MockInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, uniqueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) ExistsByUniqueID(ctx context.Context, uniqueID string) (bool, error) {
	args := m.Called(ctx, uniqueID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func (m *MockInventoryItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryItemRepository) CountByPO(ctx context.Context, poID uuid.UUID) (int64, error) {
	args := m.Called(ctx, poID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryItemRepository) Create(ctx context.Context, item *inventory.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryItemRepository) ApplyTransition(ctx context.Context, t *inventory.Transition) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockInventoryItemRepository) DeleteIfStatus(ctx context.Context, id uuid.UUID, expected inventory.ItemStatus) error {
	args := m.Called(ctx, id, expected)
	return args.Error(0)
}

func (m *MockInventoryItemRepository) FindHistory(ctx context.Context, itemID uuid.UUID) ([]inventory.HistoryEntry, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.HistoryEntry), args.Error(1)
}

func (m *MockInventoryItemRepository) FindHistoryBetween(ctx context.Context, from, to time.Time, actions []inventory.HistoryAction) ([]inventory.HistoryEntry, error) {
	args := m.Called(ctx, from, to, actions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.HistoryEntry), args.Error(1)
}

func (m *MockInventoryItemRepository) StockTotals(ctx context.Context) (inventory.StockTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(inventory.StockTotals), args.Error(1)
}

// MockIdentifierGenerator is a mock implementation of IdentifierGenerator
type MockIdentifierGenerator struct {
	mock.Mock
}

func (m *MockIdentifierGenerator) Generate(ctx context.Context, input inventory.GenerateInput) (inventory.Codes, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(inventory.Codes), args.Error(1)
}

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entries ...*audit.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockAuditRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

func (m *MockAuditRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// Compile-time interface checks
var (
	_ partner.CustomerRepository        = (*MockCustomerRepository)(nil)
	_ catalog.PartRepository            = (*MockPartRepository)(nil)
	_ trade.PurchaseOrderRepository     = (*MockPurchaseOrderRepository)(nil)
	_ inventory.InventoryItemRepository = (*MockInventoryItemRepository)(nil)
	_ inventory.IdentifierGenerator     = (*MockIdentifierGenerator)(nil)
	_ audit.Repository                  = (*MockAuditRepository)(nil)
)
