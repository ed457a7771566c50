package repository

import (
	"context"
	"fmt"

	"supplydesk/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryTotals holds whole-inventory aggregates over live items.
// LowStock counts items strictly below the threshold passed to GetInventoryTotals.
type InventoryTotals struct {
	Items      int64
	Stock      int64
	Categories int64
	LowStock   int64
	TotalValue decimal.Decimal
}

type StatisticsRepository interface {
	GetInventoryTotals(ctx context.Context, lowStockThreshold int) (InventoryTotals, error)
	CountRequestsByStatus(ctx context.Context) ([]model.StatusCount, error)
	GetTopRequestedItems(ctx context.Context, limit int) ([]model.RequestedRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) GetInventoryTotals(ctx context.Context, lowStockThreshold int) (InventoryTotals, error) {
	var totals InventoryTotals
	if err := GetDB(ctx, r.db).Model(&model.Item{}).
		Select(`COUNT(*) AS items,
			COALESCE(SUM(stock), 0) AS stock,
			COUNT(DISTINCT NULLIF(category, '')) AS categories,
			COUNT(CASE WHEN stock < ? THEN 1 END) AS low_stock,
			COALESCE(SUM(stock * price), 0) AS total_value`, lowStockThreshold).
		Scan(&totals).Error; err != nil {
		return InventoryTotals{}, fmt.Errorf("failed to query inventory totals: %w", err)
	}
	return totals, nil
}

func (r *statisticsRepository) CountRequestsByStatus(ctx context.Context) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	if err := GetDB(ctx, r.db).Model(&model.Request{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}
	return counts, nil
}

func (r *statisticsRepository) GetTopRequestedItems(ctx context.Context, limit int) ([]model.RequestedRanking, error) {
	rankings := []model.RequestedRanking{}
	if err := GetDB(ctx, r.db).Model(&model.Request{}).
		Select("item_name, SUM(quantity) AS total_quantity, COUNT(*) AS request_count").
		Group("item_name").
		Order("total_quantity DESC, item_name ASC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top requested items: %w", err)
	}
	return rankings, nil
}
