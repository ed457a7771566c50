package repository

import (
	"context"

	"supplydesk/internal/model"
	"supplydesk/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	ListByItem(ctx context.Context, itemID uuid.UUID, p pagination.Params) ([]model.StockMovement, int64, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(ctx context.Context, movement *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *stockMovementRepository) ListByItem(ctx context.Context, itemID uuid.UUID, p pagination.Params) ([]model.StockMovement, int64, error) {
	movements := []model.StockMovement{}
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.StockMovement{}).Where("item_id = ?", itemID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}
