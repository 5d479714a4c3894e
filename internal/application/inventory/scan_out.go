package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ScanOut resolves the scanned code and moves the item from IN to OUT.
// The PO delivered quantity is not touched.
func (s *InventoryService) ScanOut(ctx context.Context, req ScanOutRequest, actor shared.Actor) (*ScanOutResult, error) {
	item, err := s.resolveItem(ctx, req.ScanCode)
	if err != nil {
		s.recordRejected(ctx, "scan_out", err)
		return nil, err
	}

	transition, err := item.ScanOut(actor, req.Notes, s.clock.Now())
	if err != nil {
		s.recordRejected(ctx, "scan_out", err)
		s.logger.Warn("scan out rejected",
			zap.String("unique_id", item.UniqueID),
			zap.String("status", item.Status.String()))
		return nil, err
	}
	if err := s.itemRepo.ApplyTransition(ctx, transition); err != nil {
		s.recordRejected(ctx, "scan_out", err)
		if errors.Is(err, shared.ErrInvalidTransition) {
			s.logger.Warn("scan out lost a concurrent update",
				zap.String("unique_id", item.UniqueID), zap.Error(err))
			return nil, shared.NewDomainError(shared.CodeInvalidScanOutState,
				fmt.Sprintf("Item %s cannot be scanned out: %s", item.UniqueID, err.Error()))
		}
		if !isDomainError(err) {
			s.logger.Error("scan out failed", zap.String("unique_id", item.UniqueID), zap.Error(err))
		}
		return nil, err
	}

	if s.scanMetrics != nil {
		s.scanMetrics.RecordScanOut(ctx, item.Quantity)
	}
	s.logger.Info("item scanned out",
		zap.String("unique_id", item.UniqueID),
		zap.String("user_id", actor.UserID))

	return &ScanOutResult{
		Item: s.describeCommitted(ctx, item, "scan_out"),
		Audit: audit.Request{
			Action:       audit.ActionScanOut,
			Details:      fmt.Sprintf("Scanned out %s (%d units)", item.UniqueID, item.Quantity),
			ResourceType: audit.ResourceInventoryItem,
			ResourceID:   item.ID.String(),
		},
	}, nil
}

// PreviewScanOut returns the item summary and whether a scan out would
// succeed, without changing anything
func (s *InventoryService) PreviewScanOut(ctx context.Context, code string) (*ScanPreview, error) {
	item, err := s.resolveItem(ctx, code)
	if err != nil {
		return nil, err
	}
	resp, err := s.describe(ctx, item)
	if err != nil {
		return nil, err
	}

	preview := &ScanPreview{Item: resp, CanScanOut: item.Status.CanScanOut()}
	if !preview.CanScanOut {
		preview.Reason = fmt.Sprintf("Item is %s, only IN items can be scanned out", item.Status)
	}
	return preview, nil
}
