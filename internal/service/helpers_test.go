package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"repairpos/internal/infra"
	"repairpos/internal/model"
	"repairpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Fixture ──────────────────────────────────────────────────────────────────

// stepClock returns a strictly increasing instant on every call so timeline
// ordering is deterministic.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock(start time.Time) *stepClock { return &stepClock{cur: start} }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Minute)
	return c.cur
}

type publishedEvent struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	saleRepo  repository.SaleRepository
	jobRepo   repository.ServiceJobRepository
	users     repository.UserRepository
	customers repository.CustomerRepository

	ledger StockLedger
	sales  SaleService
	jobs   ServiceJobService
	parts  PartUsageService
	events *recordingPublisher
	clock  *stepClock
	loc    *time.Location

	clerk    model.User
	tech     model.User
	customer model.Customer
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	f := &fixture{
		db:        db,
		products:  repository.NewProductRepository(db),
		movements: repository.NewStockMovementRepository(db),
		saleRepo:  repository.NewSaleRepository(db),
		jobRepo:   repository.NewServiceJobRepository(db),
		users:     repository.NewUserRepository(db),
		customers: repository.NewCustomerRepository(db),
		events:    &recordingPublisher{},
		clock:     newStepClock(time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)),
		loc:       loc,
	}
	ids := NewIdentifierGenerator(DefaultMaxAttempts, nil)
	f.ledger = NewStockLedger(f.products, f.movements)
	f.sales = NewSaleService(f.saleRepo, f.products, f.users, f.customers, f.ledger, ids, f.events, loc, f.clock.Now)
	f.jobs = NewServiceJobService(f.jobRepo, f.users, f.customers, ids, f.events, loc, f.clock.Now)
	f.parts = NewPartUsageService(f.jobRepo, f.users, f.ledger, f.clock.Now)

	ctx := context.Background()
	f.clerk = model.User{Username: "clerk", FirstName: "Somchai", LastName: "Dee", Role: "sales"}
	require.NoError(t, f.users.Create(ctx, &f.clerk))
	f.tech = model.User{Username: "tech", FirstName: "Anan", LastName: "Chai", Role: "technician"}
	require.NoError(t, f.users.Create(ctx, &f.tech))
	f.customer = model.Customer{Name: "Walk-in"}
	require.NoError(t, f.customers.Create(ctx, &f.customer))
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int) model.Product {
	t.Helper()
	p := model.Product{Name: name, Price: decimal.RequireFromString(price), StockQuantity: stock}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	n, err := f.ledger.Available(context.Background(), id)
	require.NoError(t, err)
	return n
}

func (f *fixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}
