package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// SupplyRequestsSubmitted counts request rows created by employee submissions
	SupplyRequestsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "supply_requests_submitted_total",
			Help: "Total number of supply request line items submitted",
		},
	)

	// StatusTransitions counts request decisions by resulting status
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supply_request_status_transitions_total",
			Help: "Total number of request status transitions",
		},
		[]string{"status"},
	)

	// StockAdjustments counts best-effort stock adjustments by outcome
	StockAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_adjustments_total",
			Help: "Stock adjustments triggered by request approval, by outcome",
		},
		[]string{"outcome"},
	)

	// ItemStock tracks the current stock level per item
	ItemStock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_item_stock",
			Help: "Current stock level per inventory item",
		},
		[]string{"item_id"},
	)
)

// SetItemStock records the latest known stock for an item.
func SetItemStock(itemID string, stock int) {
	ItemStock.WithLabelValues(itemID).Set(float64(stock))
}

// ForgetItem drops the stock gauge of a deleted item.
func ForgetItem(itemID string) {
	ItemStock.DeleteLabelValues(itemID)
}

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
