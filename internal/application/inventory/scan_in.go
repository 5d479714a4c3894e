package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// ScanIn registers incoming stock against a purchase order. Preconditions are
// checked in a fixed order so each failure names exactly one cause. The item,
// the PO credit and the part's PO number cache are written in one transaction.
func (s *InventoryService) ScanIn(ctx context.Context, req ScanInRequest, actor shared.Actor) (*ScanInResult, error) {
	part, po, customer, err := s.checkScanIn(ctx, req)
	if err != nil {
		s.recordRejected(ctx, "scan_in", err)
		return nil, err
	}

	copies := req.Copies
	if copies == 0 {
		copies = 1
	}

	now := s.clock.Now()
	policy := trade.DeliveryPolicy{AllowOverDelivery: s.opts.AllowOverDelivery}
	var (
		item    *inventory.InventoryItem
		codes   inventory.Codes
		updated *trade.PurchaseOrder
	)
	for attempt := 1; ; attempt++ {
		item, codes, updated, err = s.receive(ctx, req, part, po, customer, policy, actor, now)
		if err == nil {
			break
		}
		// another scan-in committed the same id between generation and insert
		if shared.IsCode(err, shared.CodeDuplicateKey) && attempt < s.opts.MaxIDAttempts {
			s.logger.Warn("item id taken at insert, drawing a new one",
				zap.String("unique_id", codes.UniqueID),
				zap.Int("attempt", attempt))
			continue
		}
		if shared.IsCode(err, shared.CodeDuplicateKey) {
			err = shared.NewDomainError(shared.CodeGenerationExhausted,
				fmt.Sprintf("Could not store a free item id after %d attempts", attempt))
		}
		s.recordRejected(ctx, "scan_in", err)
		if !isDomainError(err) {
			s.logger.Error("scan in failed",
				zap.String("part_id", part.ID.String()),
				zap.String("po_id", po.ID.String()),
				zap.Error(err))
		}
		return nil, err
	}

	if updated.DeliveredQuantity > updated.TotalQuantity {
		s.logger.Warn("purchase order over-delivered",
			zap.String("po_number", updated.PONumber),
			zap.Int("delivered_quantity", updated.DeliveredQuantity),
			zap.Int("total_quantity", updated.TotalQuantity))
		if s.scanMetrics != nil {
			s.scanMetrics.RecordOverDelivery(ctx, updated.OverDeliveredQuantity())
		}
	}
	if s.scanMetrics != nil {
		s.scanMetrics.RecordScanIn(ctx, item.Quantity)
	}
	s.logger.Info("item scanned in",
		zap.String("unique_id", item.UniqueID),
		zap.String("po_number", updated.PONumber),
		zap.Int("quantity", item.Quantity),
		zap.String("user_id", actor.UserID))

	snapshot := ToPurchaseOrderSnapshot(updated)
	part.PONumber = &snapshot.PONumber
	resp := ToItemResponse(item)
	resp.Part = toPartSummary(part)
	resp.Customer = toCustomerSummary(customer)
	resp.PurchaseOrder = &snapshot

	return &ScanInResult{
		Item:          resp,
		Labels:        buildLabels(codes, copies),
		PurchaseOrder: snapshot,
		Audit: audit.Request{
			Action: audit.ActionScanIn,
			Details: fmt.Sprintf("Scanned in %s: %d x %s against PO %s (%d/%d delivered)",
				item.UniqueID, item.Quantity, part.InternalPartNo, updated.PONumber,
				updated.DeliveredQuantity, updated.TotalQuantity),
			ResourceType: audit.ResourceInventoryItem,
			ResourceID:   item.ID.String(),
		},
	}, nil
}

// receive draws item codes and writes the item, the PO credit and the
// part's PO number cache in one transaction
func (s *InventoryService) receive(
	ctx context.Context,
	req ScanInRequest,
	part *catalog.Part,
	po *trade.PurchaseOrder,
	customer *partner.Customer,
	policy trade.DeliveryPolicy,
	actor shared.Actor,
	now time.Time,
) (*inventory.InventoryItem, inventory.Codes, *trade.PurchaseOrder, error) {
	codes, err := s.idGenerator.Generate(ctx, inventory.GenerateInput{
		PartNo:   part.InternalPartNo,
		PONumber: po.PONumber,
		At:       now,
	})
	if err != nil {
		return nil, codes, nil, err
	}

	item, err := inventory.NewInventoryItem(inventory.NewItemParams{
		PartID:     part.ID,
		POID:       po.ID,
		CustomerID: customer.ID,
		Quantity:   req.Quantity,
		LotID:      req.LotID,
		GateID:     req.GateID,
		Location:   req.Location,
		Notes:      req.Notes,
	}, codes, actor, now)
	if err != nil {
		return nil, codes, nil, err
	}

	var updated *trade.PurchaseOrder
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ItemRepo().Create(ctx, item); err != nil {
			return err
		}
		credited, err := repos.PurchaseOrderRepo().ApplyDelivery(ctx, po.ID, item.Quantity, policy)
		if err != nil {
			return err
		}
		updated = credited
		poNumber := credited.PONumber
		return repos.PartRepo().SetPONumber(ctx, part.ID, &poNumber)
	})
	if err != nil {
		return nil, codes, nil, err
	}
	return item, codes, updated, nil
}

func (s *InventoryService) checkScanIn(ctx context.Context, req ScanInRequest) (*catalog.Part, *trade.PurchaseOrder, *partner.Customer, error) {
	part, err := s.partRepo.FindByID(ctx, req.PartID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, nil, shared.NewDomainError(shared.CodePartNotFound,
				fmt.Sprintf("Part %s not found", req.PartID))
		}
		return nil, nil, nil, err
	}

	po, err := s.poRepo.FindByID(ctx, req.POID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, nil, shared.NewDomainError(shared.CodePONotFound,
				fmt.Sprintf("Purchase order %s not found", req.POID))
		}
		return nil, nil, nil, err
	}
	if !po.Matches(part.ID, part.CustomerID) {
		return nil, nil, nil, shared.NewDomainError(shared.CodePOPartMismatch,
			fmt.Sprintf("Purchase order %s is not for part %s of this customer", po.PONumber, part.InternalPartNo))
	}

	customer, err := s.customerRepo.FindByID(ctx, part.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, nil, shared.NewDomainError(shared.CodeCustomerNotFound,
				fmt.Sprintf("Customer of part %s not found", part.InternalPartNo))
		}
		return nil, nil, nil, err
	}
	if err := customer.EnsureActive(); err != nil {
		return nil, nil, nil, err
	}

	if po.IsCancelled() {
		return nil, nil, nil, shared.NewDomainError(shared.CodePOCancelled,
			fmt.Sprintf("Purchase order %s is cancelled and cannot receive stock", po.PONumber))
	}

	if req.badQuantity != "" {
		return nil, nil, nil, shared.NewDomainError(shared.CodeInvalidQuantity,
			fmt.Sprintf("Quantity must be a positive integer, got %s", req.badQuantity))
	}
	if req.Quantity <= 0 {
		return nil, nil, nil, shared.NewDomainError(shared.CodeInvalidQuantity,
			fmt.Sprintf("Quantity must be a positive integer, got %d", req.Quantity))
	}
	if req.Copies < 0 || req.Copies > s.opts.MaxLabelCopies {
		return nil, nil, nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Copies must be between 1 and %d", s.opts.MaxLabelCopies))
	}

	if !s.opts.AllowOverDelivery && po.DeliveredQuantity+req.Quantity > po.TotalQuantity {
		return nil, nil, nil, trade.OverDeliveryError(po, req.Quantity)
	}

	return part, po, customer, nil
}

func buildLabels(codes inventory.Codes, copies int) []LabelPayload {
	labels := make([]LabelPayload, copies)
	for i := range labels {
		labels[i] = LabelPayload{
			Copy:      i + 1,
			UniqueID:  codes.UniqueID,
			QRPayload: codes.QRPayload,
			Barcode:   codes.Barcode,
		}
	}
	return labels
}

func isDomainError(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de)
}

func (s *InventoryService) recordRejected(ctx context.Context, operation string, err error) {
	if s.scanMetrics == nil {
		return
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		s.scanMetrics.RecordRejected(ctx, operation, de.Code)
		return
	}
	s.scanMetrics.RecordRejected(ctx, operation, shared.CodeStorage)
}
