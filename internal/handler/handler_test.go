package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"supplydesk/internal/database"
	"supplydesk/internal/middleware"
	"supplydesk/internal/model"
	"supplydesk/internal/repository"
	"supplydesk/internal/service"
	"supplydesk/internal/session"
	"supplydesk/pkg/pagination"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "letmein"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := database.NewTestDB(t)
	txManager := repository.NewTransactionManager(db)
	itemRepo := repository.NewItemRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	authService := service.NewAuthService(session.NewMemoryStore(time.Hour), []byte("test-secret"), string(hash))
	requireAdmin := middleware.RequireAdmin(authService)

	r := gin.New()
	api := r.Group("/api")
	NewAuthHandler(authService).RegisterRoutes(api, requireAdmin)
	NewInventoryHandler(service.NewInventoryService(itemRepo, movementRepo, auditRepo, txManager, nil)).RegisterRoutes(api, requireAdmin)
	NewRequestHandler(
		service.NewRequestService(requestRepo, auditRepo, txManager, nil),
		service.NewApprovalService(requestRepo, itemRepo, movementRepo, auditRepo, txManager, nil),
	).RegisterRoutes(api, requireAdmin)
	NewAuditHandler(service.NewAuditService(auditRepo)).RegisterRoutes(api, requireAdmin)
	NewStatisticsHandler(service.NewStatisticsService(statsRepo, itemRepo, 20)).RegisterRoutes(api, requireAdmin)
	return r
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) login() {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/auth/login", map[string]string{"password": testPassword})
	if w.Code != http.StatusOK {
		c.t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.LoginResult
	decode(c.t, w, &res)
	c.token = res.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %s: %v", w.Body.String(), err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, w, &body)
	return body["error"]
}

func TestAdminRoutesRequireSession(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	for _, rt := range []struct{ method, path string }{
		{http.MethodPost, "/api/items"},
		{http.MethodPut, "/api/items/x"},
		{http.MethodDelete, "/api/items/x"},
		{http.MethodGet, "/api/items/x/movements"},
		{http.MethodGet, "/api/requests"},
		{http.MethodGet, "/api/requests/x"},
		{http.MethodPatch, "/api/requests/x"},
		{http.MethodPost, "/api/auth/logout-all"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/audit-logs"},
	} {
		w := c.do(rt.method, rt.path, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", rt.method, rt.path, w.Code)
		}
	}

	if w := c.do(http.MethodGet, "/api/items", nil); w.Code != http.StatusOK {
		t.Errorf("public item listing: expected 200, got %d", w.Code)
	}
}

func TestLoginFailure(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	w := c.do(http.MethodPost, "/api/auth/login", map[string]string{"password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Invalid password" {
		t.Errorf("unexpected error %q", msg)
	}

	w = c.do(http.MethodPost, "/api/auth/login", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", w.Code)
	}
}

func TestSessionAndLogout(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	var status SessionResponse
	decode(t, c.do(http.MethodGet, "/api/auth/session", nil), &status)
	if status.Authenticated {
		t.Fatal("expected anonymous session")
	}

	c.login()
	decode(t, c.do(http.MethodGet, "/api/auth/session", nil), &status)
	if !status.Authenticated || status.ExpiresAt == nil {
		t.Fatalf("expected authenticated session, got %+v", status)
	}

	if w := c.do(http.MethodPost, "/api/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if w := c.do(http.MethodGet, "/api/dashboard", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected revoked token to be rejected, got %d", w.Code)
	}
}

func TestItemLifecycle(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}
	c.login()

	w := c.do(http.MethodPost, "/api/items", map[string]interface{}{
		"name": "Stapler", "category": "Desk", "quantity": 8,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var item model.Item
	decode(t, w, &item)
	if item.Stock != 8 || item.Unit != "pcs" {
		t.Errorf("unexpected created item %+v", item)
	}

	w = c.do(http.MethodPut, "/api/items/"+item.ID.String(), map[string]interface{}{
		"name": "Stapler", "category": "Desk", "quantity": 5, "unit": "box", "price": "12.50",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &item)
	if item.Stock != 5 || item.Unit != "box" || item.Price.String() != "12.5" {
		t.Errorf("unexpected updated item %+v", item)
	}

	w = c.do(http.MethodGet, "/api/items/"+item.ID.String()+"/movements", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("movements: expected 200, got %d", w.Code)
	}
	var page struct {
		Data  []model.StockMovement `json:"data"`
		Total int64                 `json:"total"`
	}
	decode(t, w, &page)
	if page.Total != 2 {
		t.Errorf("expected 2 movements, got %d", page.Total)
	}

	w = c.do(http.MethodDelete, "/api/items/"+item.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	var deleted struct {
		Message string     `json:"message"`
		Item    model.Item `json:"item"`
	}
	decode(t, w, &deleted)
	if deleted.Message == "" || deleted.Item.ID != item.ID {
		t.Errorf("unexpected delete body %+v", deleted)
	}

	w = c.do(http.MethodGet, "/api/items/"+item.ID.String(), nil)
	if w.Code != http.StatusNotFound || errorMessage(t, w) != "Item not found" {
		t.Errorf("expected 404 Item not found, got %d %s", w.Code, w.Body.String())
	}
}

func TestItemErrors(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}
	c.login()

	valid := map[string]interface{}{"name": "Pen", "quantity": 1}
	for _, path := range []string{"/api/items/not-a-uuid", "/api/items/5f0c6f3e-2a55-4a8f-9d55-8f8cf1d4b001"} {
		if w := c.do(http.MethodPut, path, valid); w.Code != http.StatusNotFound {
			t.Errorf("PUT %s: expected 404, got %d", path, w.Code)
		}
		if w := c.do(http.MethodDelete, path, nil); w.Code != http.StatusNotFound {
			t.Errorf("DELETE %s: expected 404, got %d", path, w.Code)
		}
	}

	for name, body := range map[string]interface{}{
		"negative quantity": map[string]interface{}{"name": "Pen", "quantity": -3},
		"missing quantity":  map[string]interface{}{"name": "Pen"},
		"missing name":      map[string]interface{}{"quantity": 3},
	} {
		w := c.do(http.MethodPost, "/api/items", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
		if errorMessage(t, w) == "" {
			t.Errorf("%s: expected error message", name)
		}
	}

	w := c.do(http.MethodPost, "/api/items", map[string]interface{}{"name": "Pen", "quantity": 0})
	if w.Code != http.StatusCreated {
		t.Errorf("zero quantity: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequestApprovalFlow(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	anon := &client{t: t, router: c.router}
	w := anon.do(http.MethodPost, "/api/requests", map[string]interface{}{
		"employeeName": "Dana",
		"department":   "Finance",
		"items": []map[string]interface{}{
			{"name": "paper", "quantity": 3, "reason": "printing"},
			{"name": "laminator", "quantity": 1, "reason": "badges"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var submitted []model.Request
	decode(t, w, &submitted)
	if len(submitted) != 2 || submitted[0].Status != model.RequestStatusPending {
		t.Fatalf("unexpected submission %+v", submitted)
	}

	c.login()
	w = c.do(http.MethodPost, "/api/items", map[string]interface{}{"name": "Paper A4", "quantity": 10, "unit": "rim"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: %d", w.Code)
	}
	var paper model.Item
	decode(t, w, &paper)

	w = c.do(http.MethodPatch, "/api/requests/"+submitted[0].ID.String(), map[string]string{"status": "approved"})
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(StockAdjustmentHeader); got != "applied" {
		t.Errorf("expected applied adjustment, got %q", got)
	}
	var approved model.Request
	decode(t, w, &approved)
	if approved.Status != model.RequestStatusApproved {
		t.Errorf("expected approved, got %s", approved.Status)
	}

	decode(t, c.do(http.MethodGet, "/api/items/"+paper.ID.String(), nil), &paper)
	if paper.Stock != 7 {
		t.Errorf("expected stock 7, got %d", paper.Stock)
	}

	w = c.do(http.MethodPatch, "/api/requests/"+submitted[0].ID.String(), map[string]string{"status": "rejected"})
	if w.Code != http.StatusConflict {
		t.Errorf("re-decide: expected 409, got %d", w.Code)
	}

	w = c.do(http.MethodPatch, "/api/requests/"+submitted[1].ID.String(), map[string]string{"status": "approved"})
	if w.Code != http.StatusOK || w.Header().Get(StockAdjustmentHeader) != "no_match" {
		t.Errorf("expected 200 with no_match, got %d %q", w.Code, w.Header().Get(StockAdjustmentHeader))
	}

	w = c.do(http.MethodPatch, "/api/requests/"+submitted[1].ID.String(), map[string]string{"status": "shipped"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid status: expected 400, got %d", w.Code)
	}
	w = c.do(http.MethodPatch, "/api/requests/not-a-uuid", map[string]string{"status": "approved"})
	if w.Code != http.StatusNotFound || errorMessage(t, w) != "Request not found" {
		t.Errorf("expected 404 Request not found, got %d", w.Code)
	}

	var listed []model.Request
	decode(t, c.do(http.MethodGet, "/api/requests?status=approved", nil), &listed)
	if len(listed) != 2 {
		t.Errorf("expected 2 approved requests, got %d", len(listed))
	}
	if w := c.do(http.MethodGet, "/api/requests?status=bogus", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bogus filter, got %d", w.Code)
	}
}

func TestSubmitRequestValidation(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}

	for name, body := range map[string]interface{}{
		"no items":      map[string]interface{}{"employeeName": "Dana", "department": "Finance", "items": []interface{}{}},
		"no department": map[string]interface{}{"employeeName": "Dana", "items": []map[string]interface{}{{"name": "Pen", "quantity": 1, "reason": "x"}}},
		"zero quantity": map[string]interface{}{"employeeName": "Dana", "department": "Finance", "items": []map[string]interface{}{{"name": "Pen", "quantity": 0, "reason": "x"}}},
		"no reason":     map[string]interface{}{"employeeName": "Dana", "department": "Finance", "items": []map[string]interface{}{{"name": "Pen", "quantity": 1}}},
	} {
		if w := c.do(http.MethodPost, "/api/requests", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestDashboardAndAuditLogs(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}
	c.login()

	c.do(http.MethodPost, "/api/items", map[string]interface{}{"name": "Toner", "category": "Printer", "quantity": 3, "price": 40})

	w := c.do(http.MethodGet, "/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", w.Code)
	}
	var summary model.DashboardSummary
	decode(t, w, &summary)
	if summary.TotalItems != 1 || summary.LowStockCount != 1 || summary.TotalValue.String() != "120" {
		t.Errorf("unexpected summary %+v", summary)
	}

	w = c.do(http.MethodGet, "/api/audit-logs?page=1&limit=5", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("audit logs: expected 200, got %d", w.Code)
	}
	var page struct {
		Data  []service.AuditLogResponse `json:"data"`
		Total int64                      `json:"total"`
		Limit int                        `json:"limit"`
	}
	decode(t, w, &page)
	if page.Total != 1 || page.Limit != 5 || page.Data[0].Action != model.ActionCreateItem {
		t.Errorf("unexpected audit page %+v", page)
	}
}

func TestGetRequestByID(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}
	c.login()

	w := c.do(http.MethodPost, "/api/requests", map[string]interface{}{
		"employeeName": "Dana",
		"department":   "Finance",
		"items":        []map[string]interface{}{{"name": "Stapler", "quantity": 1, "reason": "broken"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", w.Code)
	}
	var submitted []model.Request
	decode(t, w, &submitted)

	w = c.do(http.MethodGet, "/api/requests/"+submitted[0].ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var got model.Request
	decode(t, w, &got)
	if got.ID != submitted[0].ID || got.ItemName != "Stapler" {
		t.Errorf("unexpected request %+v", got)
	}

	for _, id := range []string{"00000000-0000-0000-0000-000000000000", "not-a-uuid"} {
		w = c.do(http.MethodGet, "/api/requests/"+id, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", id, w.Code)
		}
		if msg := errorMessage(t, w); msg != "Request not found" {
			t.Errorf("%s: unexpected error %q", id, msg)
		}
	}
}

func TestLogoutAllRevokesEveryToken(t *testing.T) {
	router := newTestRouter(t)
	first := &client{t: t, router: router}
	second := &client{t: t, router: router}
	first.login()
	second.login()

	w := first.do(http.MethodPost, "/api/auth/logout-all", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout-all: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res LogoutAllResponse
	decode(t, w, &res)
	if res.Revoked != 2 {
		t.Errorf("expected 2 revoked sessions, got %d", res.Revoked)
	}

	for name, c := range map[string]*client{"first": first, "second": second} {
		if w := c.do(http.MethodGet, "/api/dashboard", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("%s token: expected 401 after logout-all, got %d", name, w.Code)
		}
	}
}

func TestAuditLogsHugePage(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t)}
	c.login()

	c.do(http.MethodPost, "/api/items", map[string]interface{}{"name": "Toner", "quantity": 3})

	w := c.do(http.MethodGet, "/api/audit-logs?page=9223372036854775807&limit=100", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var page struct {
		Data  []service.AuditLogResponse `json:"data"`
		Total int64                      `json:"total"`
		Page  int                        `json:"page"`
	}
	decode(t, w, &page)
	if page.Page != pagination.MaxPage {
		t.Errorf("expected page capped at %d, got %d", pagination.MaxPage, page.Page)
	}
	if page.Total != 1 || len(page.Data) != 0 {
		t.Errorf("expected an empty page past the end, got %d rows of %d", len(page.Data), page.Total)
	}
}
