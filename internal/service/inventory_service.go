package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"supplydesk/internal/metrics"
	"supplydesk/internal/model"
	"supplydesk/internal/repository"
	"supplydesk/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemInput is the create/update payload. Quantity maps onto the stored stock.
type ItemInput struct {
	Name     string           `json:"name" binding:"required,max=255"`
	Category string           `json:"category" binding:"max=100"`
	Quantity *int             `json:"quantity" binding:"required,min=0"`
	Unit     string           `json:"unit" binding:"max=20"`
	Price    *decimal.Decimal `json:"price" swaggertype:"number"`
	Supplier string           `json:"supplier" binding:"max=255"`
}

type InventoryService interface {
	ListItems(ctx context.Context, search string) ([]model.Item, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	CreateItem(ctx context.Context, actor string, in ItemInput) (*model.Item, error)
	UpdateItem(ctx context.Context, actor, id string, in ItemInput) (*model.Item, error)
	DeleteItem(ctx context.Context, actor, id string) (*model.Item, error)
	ListMovements(ctx context.Context, id string, p pagination.Params) ([]model.StockMovement, int64, error)
}

type inventoryService struct {
	itemRepo     repository.ItemRepository
	movementRepo repository.StockMovementRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	events       EventPublisher
}

func NewInventoryService(
	itemRepo repository.ItemRepository,
	movementRepo repository.StockMovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) InventoryService {
	return &inventoryService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		events:       publisherOrNoop(events),
	}
}

func (s *inventoryService) ListItems(ctx context.Context, search string) ([]model.Item, error) {
	items, err := s.itemRepo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (s *inventoryService) GetItem(ctx context.Context, id string) (*model.Item, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, mapItemErr(err)
	}
	return item, nil
}

func (s *inventoryService) CreateItem(ctx context.Context, actor string, in ItemInput) (*model.Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	item := model.Item{}
	applyItemInput(&item, in)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Create(txCtx, &item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}

		movement := &model.StockMovement{
			ItemID:          item.ID,
			MovementType:    model.MovementInitial,
			QuantityChanged: item.Stock,
			StockAfter:      item.Stock,
		}
		if err := s.movementRepo.Create(txCtx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateItem, item.ID.String(), item.Name, in)
	})
	if err != nil {
		return nil, err
	}

	metrics.SetItemStock(item.ID.String(), item.Stock)
	s.events.Publish(EventItemCreated, item)
	return &item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, actor, id string, in ItemInput) (*model.Item, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrItemNotFound
	}
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	var item *model.Item
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.itemRepo.FindByIDForUpdate(txCtx, itemID)
		if err != nil {
			return mapItemErr(err)
		}
		item = found

		before := item.Stock
		applyItemInput(item, in)

		if err := s.itemRepo.Update(txCtx, item); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}

		if delta := item.Stock - before; delta != 0 {
			movement := &model.StockMovement{
				ItemID:          item.ID,
				MovementType:    model.MovementAdjust,
				QuantityChanged: delta,
				StockAfter:      item.Stock,
			}
			if err := s.movementRepo.Create(txCtx, movement); err != nil {
				return fmt.Errorf("failed to record stock movement: %w", err)
			}
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateItem, item.ID.String(), item.Name, map[string]interface{}{
			"input":          in,
			"previous_stock": before,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.SetItemStock(item.ID.String(), item.Stock)
	s.events.Publish(EventItemUpdated, item)
	return item, nil
}

// DeleteItem soft-deletes the item and returns its last state.
func (s *inventoryService) DeleteItem(ctx context.Context, actor, id string) (*model.Item, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	var item *model.Item
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.itemRepo.FindByIDForUpdate(txCtx, itemID)
		if err != nil {
			return mapItemErr(err)
		}
		item = found

		if err := s.itemRepo.Delete(txCtx, item.ID); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionDeleteItem, item.ID.String(), item.Name, map[string]interface{}{
			"stock": item.Stock,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ForgetItem(item.ID.String())
	s.events.Publish(EventItemDeleted, map[string]interface{}{"id": item.ID, "name": item.Name})
	return item, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, id string, p pagination.Params) ([]model.StockMovement, int64, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	movements, total, err := s.movementRepo.ListByItem(ctx, item.ID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock movements: %w", err)
	}
	return movements, total, nil
}

func validateItemInput(in ItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Quantity == nil {
		return fmt.Errorf("%w: quantity is required", ErrInvalidInput)
	}
	if *in.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

// applyItemInput copies the payload onto item, remapping quantity to stock.
// An omitted price keeps the current one.
func applyItemInput(item *model.Item, in ItemInput) {
	item.Name = strings.TrimSpace(in.Name)
	item.Category = strings.TrimSpace(in.Category)
	item.Stock = *in.Quantity
	item.Unit = strings.TrimSpace(in.Unit)
	if item.Unit == "" {
		item.Unit = model.DefaultUnit
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	item.Supplier = strings.TrimSpace(in.Supplier)
}

func mapItemErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return fmt.Errorf("failed to load item: %w", err)
}
