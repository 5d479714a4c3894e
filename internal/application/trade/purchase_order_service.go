package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appinv "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order business operations. Writes
// that touch a part's cached PO number run in the same transaction as the
// PO change.
type PurchaseOrderService struct {
	orderRepo    trade.PurchaseOrderRepository
	partRepo     catalog.PartRepository
	customerRepo partner.CustomerRepository
	txScope      appinv.TransactionScope
	clock        shared.Clock
	logger       *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo trade.PurchaseOrderRepository,
	partRepo catalog.PartRepository,
	customerRepo partner.CustomerRepository,
	txScope appinv.TransactionScope,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:    orderRepo,
		partRepo:     partRepo,
		customerRepo: customerRepo,
		txScope:      txScope,
		clock:        shared.SystemClock{},
		logger:       zap.NewNop(),
	}
}

// SetLogger sets the logger
func (s *PurchaseOrderService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetClock replaces the wall clock
func (s *PurchaseOrderService) SetClock(clock shared.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// Create creates a new open purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if _, err := s.checkLinkage(ctx, req.CustomerID, req.PartID); err != nil {
		return nil, err
	}

	order, err := trade.NewPurchaseOrder(req.PONumber, req.CustomerID, req.PartID, req.TotalQuantity, s.clock.Now())
	if err != nil {
		return nil, err
	}
	order.SetRemark(req.Remark)

	if err := s.ensureUniqueNumber(ctx, order.PONumber, nil); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if err := repos.PurchaseOrderRepo().Save(ctx, order); err != nil {
			return err
		}
		poNumber := order.PONumber
		return repos.PartRepo().SetPONumber(ctx, order.PartID, &poNumber)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("po_number", order.PONumber),
		zap.Int("total_quantity", order.TotalQuantity))

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a purchase order by its PO number
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, poNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByNumber(ctx, poNumber)
	if err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves a list of purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	domainFilter := filter.ToFilter()

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPurchaseOrderResponses(orders), total, nil
}

// Update changes the number, linkage, total or remark of a purchase order.
// A PO that already received stock cannot be moved to another part or
// customer, and a cancelled PO cannot be edited.
func (s *PurchaseOrderService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsCancelled() {
		return nil, shared.NewDomainError(shared.CodePOCancelled,
			fmt.Sprintf("Purchase order %s is cancelled and cannot be edited", order.PONumber))
	}

	poNumber, customerID, partID, total := order.PONumber, order.CustomerID, order.PartID, order.TotalQuantity
	if req.PONumber != nil {
		poNumber = *req.PONumber
	}
	if req.CustomerID != nil {
		customerID = *req.CustomerID
	}
	if req.PartID != nil {
		partID = *req.PartID
	}
	if req.TotalQuantity != nil {
		total = *req.TotalQuantity
	}

	previousPartID := order.PartID
	relinked := customerID != order.CustomerID || partID != order.PartID
	if relinked && order.DeliveredQuantity > 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Purchase order %s already received %d units and cannot change part or customer",
				order.PONumber, order.DeliveredQuantity))
	}
	if relinked {
		if _, err := s.checkLinkage(ctx, customerID, partID); err != nil {
			return nil, err
		}
	}

	renamed := poNumber != order.PONumber
	if err := order.Update(poNumber, customerID, partID, total, s.clock.Now()); err != nil {
		return nil, err
	}
	if req.Remark != nil {
		order.SetRemark(*req.Remark)
	}
	if renamed {
		if err := s.ensureUniqueNumber(ctx, order.PONumber, &order.ID); err != nil {
			return nil, err
		}
	}

	err = s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if err := repos.PurchaseOrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		if !relinked && !renamed {
			return nil
		}
		poNumber := order.PONumber
		if err := repos.PartRepo().SetPONumber(ctx, order.PartID, &poNumber); err != nil {
			return err
		}
		if previousPartID != order.PartID {
			return refreshPartPONumber(ctx, repos, previousPartID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Cancel marks a purchase order cancelled; it stops accepting scan-ins and
// no longer counts as the part's current PO
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(req.Reason, s.clock.Now()); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		if err := repos.PurchaseOrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		return refreshPartPONumber(ctx, repos, order.PartID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order cancelled",
		zap.String("po_number", order.PONumber),
		zap.Int("delivered_quantity", order.DeliveredQuantity))

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Delete removes a purchase order no inventory item refers to and
// recomputes the part's cached PO number from its remaining orders
func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
		count, err := repos.ItemRepo().CountByPO(ctx, order.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.NewDomainError(shared.CodePOInUse,
				fmt.Sprintf("Purchase order %s is referenced by %d inventory items", order.PONumber, count))
		}
		if err := repos.PurchaseOrderRepo().Delete(ctx, order.ID); err != nil {
			return err
		}
		return refreshPartPONumber(ctx, repos, order.PartID)
	})
	if err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetStatusSummary counts purchase orders per status
func (s *PurchaseOrderService) GetStatusSummary(ctx context.Context) (*PurchaseOrderStatusSummary, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := &PurchaseOrderStatusSummary{
		Open:      counts[trade.PurchaseOrderStatusOpen],
		Partial:   counts[trade.PurchaseOrderStatusPartial],
		Completed: counts[trade.PurchaseOrderStatusCompleted],
		Cancelled: counts[trade.PurchaseOrderStatusCancelled],
	}
	summary.Total = summary.Open + summary.Partial + summary.Completed + summary.Cancelled
	return summary, nil
}

// checkLinkage validates that the customer exists and is active and that the
// part exists and belongs to it
func (s *PurchaseOrderService) checkLinkage(ctx context.Context, customerID, partID uuid.UUID) (*catalog.Part, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeCustomerNotFound,
				fmt.Sprintf("Customer %s not found", customerID))
		}
		return nil, err
	}
	if err := customer.EnsureActive(); err != nil {
		return nil, err
	}

	part, err := s.partRepo.FindByID(ctx, partID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodePartNotFound,
				fmt.Sprintf("Part %s not found", partID))
		}
		return nil, err
	}
	if !part.BelongsTo(customer.ID) {
		return nil, shared.NewDomainError(shared.CodePOPartMismatch,
			fmt.Sprintf("Part %s does not belong to customer %s", part.InternalPartNo, customer.Name))
	}
	return part, nil
}

func (s *PurchaseOrderService) ensureUniqueNumber(ctx context.Context, poNumber string, excludeID *uuid.UUID) error {
	exists, err := s.orderRepo.ExistsByNumber(ctx, poNumber, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeDuplicateKey,
			fmt.Sprintf("Purchase order number %s already exists", poNumber))
	}
	return nil
}

// refreshPartPONumber points the part's cache at its latest remaining order,
// or clears it
func refreshPartPONumber(ctx context.Context, repos appinv.TransactionalRepositories, partID uuid.UUID) error {
	latest, err := repos.PurchaseOrderRepo().FindLatestForPart(ctx, partID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	var poNumber *string
	if latest != nil {
		n := latest.PONumber
		poNumber = &n
	}
	return repos.PartRepo().SetPONumber(ctx, partID, poNumber)
}

// AuditRequest describes a purchase order change for the audit log
func AuditRequest(action audit.Action, o *PurchaseOrderResponse) audit.Request {
	return audit.Request{
		Action: action,
		Details: fmt.Sprintf("Purchase order %s (%d/%d delivered, %s)",
			o.PONumber, o.DeliveredQuantity, o.TotalQuantity, o.Status),
		ResourceType: audit.ResourcePurchaseOrder,
		ResourceID:   o.ID.String(),
	}
}
