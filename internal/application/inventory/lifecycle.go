package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RequestDelete moves an item to PENDING_DELETE until a manager decides
func (s *InventoryService) RequestDelete(ctx context.Context, id uuid.UUID, input DeleteRequestInput, actor shared.Actor) (*ItemActionResult, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	transition, err := item.RequestDelete(actor, input.Reason, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.ApplyTransition(ctx, transition); err != nil {
		return nil, err
	}
	s.logger.Info("delete requested",
		zap.String("unique_id", item.UniqueID),
		zap.String("previous_status", transition.From.String()),
		zap.String("user_id", actor.UserID))

	return s.actionResult(ctx, item, audit.Request{
		Action:       audit.ActionDeleteRequest,
		Details:      fmt.Sprintf("Requested deletion of %s: %s", item.UniqueID, transition.DeleteRequest.Reason),
		ResourceType: audit.ResourceInventoryItem,
		ResourceID:   item.ID.String(),
	}), nil
}

// RejectDelete restores the status the item had before the request
func (s *InventoryService) RejectDelete(ctx context.Context, id uuid.UUID, input RejectDeleteInput, actor shared.Actor) (*ItemActionResult, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	transition, err := item.RejectDelete(actor, input.Notes, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.ApplyTransition(ctx, transition); err != nil {
		return nil, err
	}
	s.logger.Info("delete request rejected",
		zap.String("unique_id", item.UniqueID),
		zap.String("restored_status", transition.To.String()),
		zap.String("user_id", actor.UserID))

	return s.actionResult(ctx, item, audit.Request{
		Action:       audit.ActionDeleteReject,
		Details:      fmt.Sprintf("Rejected deletion of %s, restored to %s", item.UniqueID, transition.To),
		ResourceType: audit.ResourceInventoryItem,
		ResourceID:   item.ID.String(),
	}), nil
}

// ApproveDelete physically removes a PENDING_DELETE item. The PO delivered
// quantity is not reverted.
func (s *InventoryService) ApproveDelete(ctx context.Context, id uuid.UUID, actor shared.Actor) (*ApproveDeleteResult, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.EnsureDeletable(); err != nil {
		return nil, err
	}
	if err := s.itemRepo.DeleteIfStatus(ctx, item.ID, inventory.ItemStatusPendingDelete); err != nil {
		return nil, err
	}
	s.logger.Info("item deleted",
		zap.String("unique_id", item.UniqueID),
		zap.String("user_id", actor.UserID))

	reason := ""
	if item.DeleteRequest != nil {
		reason = item.DeleteRequest.Reason
	}
	return &ApproveDeleteResult{
		ItemID:   item.ID,
		UniqueID: item.UniqueID,
		Audit: audit.Request{
			Action:       audit.ActionDeleteApprove,
			Details:      fmt.Sprintf("Approved deletion of %s (%d units): %s", item.UniqueID, item.Quantity, reason),
			ResourceType: audit.ResourceInventoryItem,
			ResourceID:   item.ID.String(),
		},
	}, nil
}

// MarkDamaged moves each listed IN item to DAMAGED. Items are handled
// independently; a failure is reported in its outcome and does not undo the
// others.
func (s *InventoryService) MarkDamaged(ctx context.Context, req MarkDamagedRequest, actor shared.Actor) (*MarkDamagedResult, error) {
	if len(req.ItemIDs) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one item id is required")
	}

	result := &MarkDamagedResult{Outcomes: make([]DamageOutcome, 0, len(req.ItemIDs))}
	seen := make(map[uuid.UUID]bool, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		outcome, err := s.markOneDamaged(ctx, id, req.Notes, actor)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			outcome.Success = false
			outcome.ErrorCode = shared.CodeStorage
			outcome.Message = err.Error()
			var de *shared.DomainError
			if errors.As(err, &de) {
				outcome.ErrorCode = de.Code
				outcome.Message = de.Message
			}
			result.Failed++
		} else {
			result.Succeeded++
			result.Audit = append(result.Audit, audit.Request{
				Action:       audit.ActionMarkDamaged,
				Details:      fmt.Sprintf("Marked %s as damaged", outcome.UniqueID),
				ResourceType: audit.ResourceInventoryItem,
				ResourceID:   id.String(),
			})
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}

func (s *InventoryService) markOneDamaged(ctx context.Context, id uuid.UUID, notes string, actor shared.Actor) (DamageOutcome, error) {
	outcome := DamageOutcome{ItemID: id}
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return outcome, err
	}
	outcome.UniqueID = item.UniqueID

	transition, err := item.MarkDamaged(actor, notes, s.clock.Now())
	if err != nil {
		return outcome, err
	}
	if err := s.itemRepo.ApplyTransition(ctx, transition); err != nil {
		return outcome, err
	}
	outcome.Success = true
	return outcome, nil
}

func (s *InventoryService) actionResult(ctx context.Context, item *inventory.InventoryItem, req audit.Request) *ItemActionResult {
	return &ItemActionResult{Item: s.describeCommitted(ctx, item, string(req.Action)), Audit: req}
}
