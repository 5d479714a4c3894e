package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultMaxLabelCopies bounds the copies of a scan-in label
const DefaultMaxLabelCopies = 50

// DefaultMaxIDAttempts bounds how often scan-in draws a fresh item id after
// the insert lost a race for the one it had
const DefaultMaxIDAttempts = 5

// Options are the configurable inventory policies
type Options struct {
	AllowOverDelivery bool
	MaxLabelCopies    int
	MaxIDAttempts     int
}

// DefaultOptions keeps the permissive over-delivery behaviour
func DefaultOptions() Options {
	return Options{
		AllowOverDelivery: true,
		MaxLabelCopies:    DefaultMaxLabelCopies,
		MaxIDAttempts:     DefaultMaxIDAttempts,
	}
}

// InventoryService handles scan-in, scan-out and the item lifecycle
type InventoryService struct {
	customerRepo partner.CustomerRepository
	partRepo     catalog.PartRepository
	poRepo       trade.PurchaseOrderRepository
	itemRepo     inventory.InventoryItemRepository
	txScope      TransactionScope
	idGenerator  inventory.IdentifierGenerator
	clock        shared.Clock
	logger       *zap.Logger
	opts         Options
	scanMetrics  *telemetry.ScanMetrics
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	customerRepo partner.CustomerRepository,
	partRepo catalog.PartRepository,
	poRepo trade.PurchaseOrderRepository,
	itemRepo inventory.InventoryItemRepository,
	txScope TransactionScope,
	idGenerator inventory.IdentifierGenerator,
	opts Options,
) *InventoryService {
	if opts.MaxLabelCopies <= 0 {
		opts.MaxLabelCopies = DefaultMaxLabelCopies
	}
	if opts.MaxIDAttempts <= 0 {
		opts.MaxIDAttempts = DefaultMaxIDAttempts
	}
	return &InventoryService{
		customerRepo: customerRepo,
		partRepo:     partRepo,
		poRepo:       poRepo,
		itemRepo:     itemRepo,
		txScope:      txScope,
		idGenerator:  idGenerator,
		clock:        shared.SystemClock{},
		logger:       zap.NewNop(),
		opts:         opts,
	}
}

// SetLogger sets the logger
func (s *InventoryService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetClock replaces the wall clock
func (s *InventoryService) SetClock(clock shared.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// SetScanMetrics sets the scan metrics collector
func (s *InventoryService) SetScanMetrics(m *telemetry.ScanMetrics) {
	s.scanMetrics = m
}

// GetItem retrieves an item by ID with its part, customer and PO summaries
func (s *InventoryService) GetItem(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := s.describe(ctx, item)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// LookupByCode resolves a barcode or QR payload to its item
func (s *InventoryService) LookupByCode(ctx context.Context, code string) (*ItemResponse, error) {
	item, err := s.resolveItem(ctx, code)
	if err != nil {
		return nil, err
	}
	resp, err := s.describe(ctx, item)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListItems lists items with filtering and pagination
func (s *InventoryService) ListItems(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	f := filter.ToFilter()
	if status, ok := f.Filters["status"].(string); ok && !inventory.ItemStatus(status).IsValid() {
		return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown item status %q", status))
	}

	items, err := s.itemRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// ListPendingDeletes lists items awaiting a delete decision
func (s *InventoryService) ListPendingDeletes(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	filter.Status = string(inventory.ItemStatusPendingDelete)
	return s.ListItems(ctx, filter)
}

// GetHistory returns an item's history oldest first
func (s *InventoryService) GetHistory(ctx context.Context, id uuid.UUID) ([]HistoryEntryResponse, error) {
	if _, err := s.itemRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.itemRepo.FindHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToHistoryResponses(entries), nil
}

func (s *InventoryService) resolveItem(ctx context.Context, code string) (*inventory.InventoryItem, error) {
	uid, err := inventory.ResolveScanCode(code)
	if err != nil {
		return nil, err
	}
	item, err := s.itemRepo.FindByUniqueID(ctx, uid)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeItemNotFound,
				fmt.Sprintf("No inventory item found for code %s", uid))
		}
		return nil, err
	}
	return item, nil
}

// describe builds the item response with part, customer and PO summaries.
// A missing related record leaves its summary empty.
func (s *InventoryService) describe(ctx context.Context, item *inventory.InventoryItem) (ItemResponse, error) {
	resp := ToItemResponse(item)

	part, err := s.partRepo.FindByID(ctx, item.PartID)
	switch {
	case err == nil:
		resp.Part = toPartSummary(part)
	case !errors.Is(err, shared.ErrNotFound):
		return resp, err
	}

	customer, err := s.customerRepo.FindByID(ctx, item.CustomerID)
	switch {
	case err == nil:
		resp.Customer = toCustomerSummary(customer)
	case !errors.Is(err, shared.ErrNotFound):
		return resp, err
	}

	po, err := s.poRepo.FindByID(ctx, item.POID)
	switch {
	case err == nil:
		snapshot := ToPurchaseOrderSnapshot(po)
		resp.PurchaseOrder = &snapshot
	case !errors.Is(err, shared.ErrNotFound):
		return resp, err
	}

	return resp, nil
}

// describeCommitted is describe for an item whose change is already
// committed. A failed summary lookup cannot undo the change, so it only
// drops the summaries.
func (s *InventoryService) describeCommitted(ctx context.Context, item *inventory.InventoryItem, operation string) ItemResponse {
	resp, err := s.describe(ctx, item)
	if err != nil {
		s.logger.Warn("item summaries unavailable after commit",
			zap.String("operation", operation),
			zap.String("unique_id", item.UniqueID),
			zap.Error(err))
		return ToItemResponse(item)
	}
	return resp
}
