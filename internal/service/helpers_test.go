package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"supplydesk/internal/database"
	"supplydesk/internal/model"
	"supplydesk/internal/repository"

	"gorm.io/gorm"
)

type recordedEvent struct {
	Name string
	Data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Name: event, Data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

type testEnv struct {
	db           *gorm.DB
	items        repository.ItemRepository
	requests     repository.RequestRepository
	movements    repository.StockMovementRepository
	audits       repository.AuditRepository
	stats        repository.StatisticsRepository
	tx           repository.TransactionManager
	events       *recordingPublisher
	inventory    InventoryService
	intake       RequestService
	approvals    ApprovalService
	auditService AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := database.NewTestDB(t)

	env := &testEnv{
		db:        db,
		items:     repository.NewItemRepository(db),
		requests:  repository.NewRequestRepository(db),
		movements: repository.NewStockMovementRepository(db),
		audits:    repository.NewAuditRepository(db),
		stats:     repository.NewStatisticsRepository(db),
		tx:        repository.NewTransactionManager(db),
		events:    &recordingPublisher{},
	}
	env.inventory = NewInventoryService(env.items, env.movements, env.audits, env.tx, env.events)
	env.intake = NewRequestService(env.requests, env.audits, env.tx, env.events)
	env.approvals = NewApprovalService(env.requests, env.items, env.movements, env.audits, env.tx, env.events)
	env.auditService = NewAuditService(env.audits)
	return env
}

var seedTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func (e *testEnv) seedItem(t *testing.T, name string, stock int, age int) *model.Item {
	t.Helper()
	item := &model.Item{
		Name:      name,
		Category:  "Office",
		Stock:     stock,
		Unit:      model.DefaultUnit,
		CreatedAt: seedTime.Add(time.Duration(age) * time.Minute),
	}
	if err := e.items.Create(context.Background(), item); err != nil {
		t.Fatalf("seeding item: %v", err)
	}
	return item
}

func (e *testEnv) seedRequest(t *testing.T, itemName string, quantity int) *model.Request {
	t.Helper()
	req := &model.Request{
		EmployeeName: "Dana",
		Department:   "Finance",
		ItemName:     itemName,
		Quantity:     quantity,
		Reason:       "restock",
		Status:       model.RequestStatusPending,
	}
	if err := e.requests.Create(context.Background(), req); err != nil {
		t.Fatalf("seeding request: %v", err)
	}
	return req
}

func (e *testEnv) stockOf(t *testing.T, item *model.Item) int {
	t.Helper()
	stored, err := e.items.FindByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("reloading item: %v", err)
	}
	return stored.Stock
}

func intPtr(n int) *int { return &n }
