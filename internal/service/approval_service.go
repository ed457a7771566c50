package service

import (
	"context"
	"errors"
	"fmt"

	"supplydesk/internal/metrics"
	"supplydesk/internal/model"
	"supplydesk/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AdjustmentOutcome names what happened to inventory after a status change.
type AdjustmentOutcome string

const (
	AdjustmentApplied       AdjustmentOutcome = "applied"
	AdjustmentNoMatch       AdjustmentOutcome = "no_match"
	AdjustmentFailed        AdjustmentOutcome = "failed"
	AdjustmentNotApplicable AdjustmentOutcome = "not_applicable"
)

// StockAdjustment reports the best-effort stock decrement that follows an approval.
type StockAdjustment struct {
	Outcome     AdjustmentOutcome `json:"outcome"`
	ItemID      *uuid.UUID        `json:"item_id,omitempty"`
	ItemName    string            `json:"item_name,omitempty"`
	StockBefore int               `json:"stock_before"`
	StockAfter  int               `json:"stock_after"`
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

type ApprovalService interface {
	SetRequestStatus(ctx context.Context, actor, id, status string) (*model.Request, StockAdjustment, error)
}

type approvalService struct {
	requestRepo  repository.RequestRepository
	itemRepo     repository.ItemRepository
	movementRepo repository.StockMovementRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	events       EventPublisher
}

func NewApprovalService(
	requestRepo repository.RequestRepository,
	itemRepo repository.ItemRepository,
	movementRepo repository.StockMovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) ApprovalService {
	return &approvalService{
		requestRepo:  requestRepo,
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		events:       publisherOrNoop(events),
	}
}

// SetRequestStatus moves a pending request to approved or rejected. The status
// change commits on its own; on approval the matching item's stock is then
// decremented in a separate transaction whose failure only shows up in the
// returned StockAdjustment.
func (s *approvalService) SetRequestStatus(ctx context.Context, actor, id, status string) (*model.Request, StockAdjustment, error) {
	if !model.IsValidRequestStatus(status) {
		return nil, StockAdjustment{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, StockAdjustment{}, ErrRequestNotFound
	}

	var req *model.Request
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		req = found

		if !model.CanTransition(req.Status, status) {
			return fmt.Errorf("%w: status is %s", ErrInvalidTransition, req.Status)
		}

		previous := req.Status
		req.Status = status
		if err := s.requestRepo.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		action := model.ActionRejectRequest
		if status == model.RequestStatusApproved {
			action = model.ActionApproveRequest
		}
		return writeAudit(txCtx, s.auditRepo, actor, action, req.ID.String(), req.ItemName, map[string]interface{}{
			"from":     previous,
			"to":       status,
			"quantity": req.Quantity,
		})
	})
	if err != nil {
		return nil, StockAdjustment{}, err
	}

	metrics.StatusTransitions.WithLabelValues(status).Inc()

	adj := StockAdjustment{Outcome: AdjustmentNotApplicable}
	if status == model.RequestStatusApproved {
		adj = s.adjustStock(ctx, actor, req)
	}
	metrics.StockAdjustments.WithLabelValues(string(adj.Outcome)).Inc()

	log.WithFields(log.Fields{
		"request_id": req.ID,
		"status":     req.Status,
		"item_name":  req.ItemName,
		"quantity":   req.Quantity,
		"adjustment": adj.Outcome,
	}).Info("request status changed")

	s.events.Publish(EventRequestStatusChanged, map[string]interface{}{
		"request":    req,
		"adjustment": adj,
	})
	return req, adj, nil
}

// adjustStock decrements the first item whose name contains the requested
// item name, flooring at zero. Errors are logged and reported as
// AdjustmentFailed; they never undo the status change.
func (s *approvalService) adjustStock(ctx context.Context, actor string, req *model.Request) StockAdjustment {
	adj := StockAdjustment{Outcome: AdjustmentNoMatch}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		match, err := s.itemRepo.FindFirstByNameContains(txCtx, req.ItemName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to look up item: %w", err)
		}

		item, err := s.itemRepo.FindByIDForUpdate(txCtx, match.ID)
		if err != nil {
			return fmt.Errorf("failed to lock item: %w", err)
		}

		after, err := s.itemRepo.DecrementStock(txCtx, item.ID, req.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		requestID := req.ID
		movement := &model.StockMovement{
			ItemID:          item.ID,
			RequestID:       &requestID,
			MovementType:    model.MovementRequestApproved,
			QuantityChanged: after - item.Stock,
			StockAfter:      after,
		}
		if err := s.movementRepo.Create(txCtx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		if err := writeAudit(txCtx, s.auditRepo, actor, model.ActionAdjustStock, item.ID.String(), item.Name, map[string]interface{}{
			"request_id":   req.ID,
			"requested":    req.Quantity,
			"stock_before": item.Stock,
			"stock_after":  after,
		}); err != nil {
			return err
		}

		adj = StockAdjustment{
			Outcome:     AdjustmentApplied,
			ItemID:      &item.ID,
			ItemName:    item.Name,
			StockBefore: item.Stock,
			StockAfter:  after,
		}
		return nil
	})
	if err != nil {
		log.WithFields(log.Fields{
			"request_id": req.ID,
			"item_name":  req.ItemName,
		}).WithError(err).Error("stock adjustment after approval failed")
		return StockAdjustment{Outcome: AdjustmentFailed}
	}

	if adj.Outcome == AdjustmentApplied {
		metrics.SetItemStock(adj.ItemID.String(), adj.StockAfter)
		s.events.Publish(EventItemUpdated, map[string]interface{}{
			"id":    adj.ItemID,
			"name":  adj.ItemName,
			"stock": adj.StockAfter,
		})
	}
	return adj
}
