package model

import "github.com/shopspring/decimal"

// DashboardSummary aggregates inventory and request figures for the admin dashboard
type DashboardSummary struct {
	TotalItems        int64              `json:"total_items"`
	TotalStock        int64              `json:"total_stock"`
	Categories        int64              `json:"categories"`
	TotalValue        decimal.Decimal    `json:"total_value" swaggertype:"number"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	LowStockCount     int                `json:"low_stock_count"`
	LowStockItems     []Item             `json:"low_stock_items"`
	RequestsByStatus  map[string]int64   `json:"requests_by_status"`
	TopRequestedItems []RequestedRanking `json:"top_requested_items"`
}

// RequestedRanking ranks requested item names by accumulated quantity
type RequestedRanking struct {
	ItemName      string `json:"item_name"`
	TotalQuantity int64  `json:"total_quantity"`
	RequestCount  int64  `json:"request_count"`
}

// StatusCount is one row of a GROUP BY status query
type StatusCount struct {
	Status string
	Count  int64
}
