package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"supplydesk/internal/metrics"
	"supplydesk/internal/model"
	"supplydesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestLine is one requested item within a submission.
type RequestLine struct {
	Name     string `json:"name" binding:"required,max=255"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"required"`
}

// SubmitRequestInput is an employee's multi-item supply request.
type SubmitRequestInput struct {
	EmployeeName string        `json:"employeeName" binding:"required,max=255"`
	Department   string        `json:"department" binding:"required,max=255"`
	Items        []RequestLine `json:"items" binding:"required,min=1,dive"`
}

type RequestService interface {
	SubmitRequest(ctx context.Context, in SubmitRequestInput) ([]model.Request, error)
	ListRequests(ctx context.Context, status string) ([]model.Request, error)
	GetRequest(ctx context.Context, id string) (*model.Request, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	events      EventPublisher
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		events:      publisherOrNoop(events),
	}
}

// SubmitRequest stores one pending request per line item. The batch is
// all-or-nothing: a failed insert rolls back every row.
func (s *requestService) SubmitRequest(ctx context.Context, in SubmitRequestInput) ([]model.Request, error) {
	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	employee := strings.TrimSpace(in.EmployeeName)
	department := strings.TrimSpace(in.Department)

	requests := make([]model.Request, 0, len(in.Items))
	for _, line := range in.Items {
		requests = append(requests, model.Request{
			EmployeeName: employee,
			Department:   department,
			ItemName:     strings.TrimSpace(line.Name),
			Quantity:     line.Quantity,
			Reason:       strings.TrimSpace(line.Reason),
			Status:       model.RequestStatusPending,
		})
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range requests {
			req := &requests[i]
			if err := s.requestRepo.Create(txCtx, req); err != nil {
				return fmt.Errorf("failed to create request for %q: %w", req.ItemName, err)
			}
			if err := writeAudit(txCtx, s.auditRepo, employee, model.ActionSubmitRequest, req.ID.String(), req.ItemName, map[string]interface{}{
				"department": department,
				"quantity":   req.Quantity,
				"reason":     req.Reason,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SupplyRequestsSubmitted.Add(float64(len(requests)))
	s.events.Publish(EventRequestSubmitted, requests)
	return requests, nil
}

// ListRequests returns requests newest first. An empty status lists all.
func (s *requestService) ListRequests(ctx context.Context, status string) ([]model.Request, error) {
	if status != "" && !model.IsValidRequestStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	requests, err := s.requestRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

func (s *requestService) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrRequestNotFound
	}

	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return req, nil
}

func validateSubmission(in SubmitRequestInput) error {
	if strings.TrimSpace(in.EmployeeName) == "" {
		return fmt.Errorf("%w: employee name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Department) == "" {
		return fmt.Errorf("%w: department is required", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	for i, line := range in.Items {
		if strings.TrimSpace(line.Name) == "" {
			return fmt.Errorf("%w: item %d: name is required", ErrInvalidInput, i+1)
		}
		if strings.TrimSpace(line.Reason) == "" {
			return fmt.Errorf("%w: item %d: reason is required", ErrInvalidInput, i+1)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("%w: item %d: quantity must be at least 1", ErrInvalidInput, i+1)
		}
	}
	return nil
}
