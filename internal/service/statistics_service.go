package service

import (
	"context"
	"fmt"

	"supplydesk/internal/model"
	"supplydesk/internal/repository"
)

const (
	dashboardLowStockLimit = 10
	dashboardTopRequested  = 5
)

type StatisticsService interface {
	GetDashboard(ctx context.Context) (*model.DashboardSummary, error)
}

type statisticsService struct {
	statsRepo         repository.StatisticsRepository
	itemRepo          repository.ItemRepository
	lowStockThreshold int
}

func NewStatisticsService(statsRepo repository.StatisticsRepository, itemRepo repository.ItemRepository, lowStockThreshold int) StatisticsService {
	return &statisticsService{
		statsRepo:         statsRepo,
		itemRepo:          itemRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

// GetDashboard collects inventory totals, low stock items and request figures.
func (s *statisticsService) GetDashboard(ctx context.Context) (*model.DashboardSummary, error) {
	totals, err := s.statsRepo.GetInventoryTotals(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.itemRepo.ListLowStock(ctx, s.lowStockThreshold, dashboardLowStockLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}

	counts, err := s.statsRepo.CountRequestsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := map[string]int64{
		model.RequestStatusPending:  0,
		model.RequestStatusApproved: 0,
		model.RequestStatusRejected: 0,
	}
	for _, c := range counts {
		byStatus[c.Status] = c.Count
	}

	top, err := s.statsRepo.GetTopRequestedItems(ctx, dashboardTopRequested)
	if err != nil {
		return nil, err
	}

	return &model.DashboardSummary{
		TotalItems:        totals.Items,
		TotalStock:        totals.Stock,
		Categories:        totals.Categories,
		TotalValue:        totals.TotalValue,
		LowStockThreshold: s.lowStockThreshold,
		LowStockCount:     int(totals.LowStock),
		LowStockItems:     lowStock,
		RequestsByStatus:  byStatus,
		TopRequestedItems: top,
	}, nil
}
