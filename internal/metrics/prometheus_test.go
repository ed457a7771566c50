package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatal(err)
	}
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}

func series(c prometheus.Collector) int {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	n := 0
	for range ch {
		n++
	}
	return n
}

func TestPrometheusMiddlewareLabelsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.GET("/api/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := value(t, RequestsTotal.WithLabelValues("GET", "/api/items/:id", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := value(t, RequestsTotal.WithLabelValues("GET", "/api/items/:id", "200")); got != before+1 {
		t.Errorf("expected route counter to grow by 1, got %v -> %v", before, got)
	}
	if got := value(t, RequestsTotal.WithLabelValues("GET", "unmatched", "404")); got < 1 {
		t.Errorf("expected unmatched request to be counted, got %v", got)
	}
}

func TestItemStockGauge(t *testing.T) {
	SetItemStock("item-1", 42)
	if got := value(t, ItemStock.WithLabelValues("item-1")); got != 42 {
		t.Errorf("expected 42, got %v", got)
	}
	ForgetItem("item-1")
	if n := series(ItemStock); n != 0 {
		t.Errorf("expected gauge series removed, %d remain", n)
	}
}
