package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-pharma-store/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newInventoryFixture(t *testing.T) (*memStore, *fakeDispatcher, InventoryService) {
	t.Helper()
	store := newMemStore()
	disp := &fakeDispatcher{}
	svc := NewInventoryService(&memProducts{store}, &memUsers{store}, disp)
	return store, disp, svc
}

func validProduct(sku string) *model.Product {
	return &model.Product{
		SKU:      sku,
		Name:     "Cetirizine 10mg",
		Category: model.CategoryCoughCold,
		Price:    decimal.NewFromFloat(6.5),
		Stock:    40,
	}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	store, _, svc := newInventoryFixture(t)

	p := validProduct("CTZ-10")
	if err := svc.CreateProduct(ctx, p, "admin"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("expected an id to be assigned")
	}
	if got := store.stockOf(p.ID); got != 40 {
		t.Fatalf("expected stock 40, got %d", got)
	}
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newInventoryFixture(t)

	if err := svc.CreateProduct(ctx, validProduct("CTZ-10"), "admin"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.CreateProduct(ctx, validProduct("CTZ-10"), "admin"); !errors.Is(err, ErrSKUExists) {
		t.Fatalf("expected ErrSKUExists, got %v", err)
	}
}

func TestCreateProductRejectsBadCategory(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newInventoryFixture(t)

	p := validProduct("CTZ-10")
	p.Category = "candy"
	if err := svc.CreateProduct(ctx, p, "admin"); err == nil {
		t.Fatal("expected a validation error for an unknown category")
	}
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	store, _, svc := newInventoryFixture(t)
	product := store.addProduct("Gauze", 3, 20)

	updated, err := svc.Adjust(ctx, product.ID, -5, "admin")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.Stock != 15 {
		t.Fatalf("expected stock 15, got %d", updated.Stock)
	}

	if _, err := svc.Adjust(ctx, product.ID, -100, "admin"); !errors.Is(err, ErrNegativeStock) {
		t.Fatalf("expected ErrNegativeStock, got %v", err)
	}
	if got := store.stockOf(product.ID); got != 15 {
		t.Fatalf("rejected adjustment must not touch stock, got %d", got)
	}

	if _, err := svc.Adjust(ctx, product.ID, 0, "admin"); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for zero delta, got %v", err)
	}
	if _, err := svc.Adjust(ctx, uuid.New(), 1, "admin"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestRestock(t *testing.T) {
	ctx := context.Background()
	store, _, svc := newInventoryFixture(t)
	product := store.addProduct("Plasters", 2, 5)

	updated, err := svc.Restock(ctx, product.ID, 30, "admin")
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if updated.Stock != 35 {
		t.Fatalf("expected stock 35, got %d", updated.Stock)
	}

	if _, err := svc.Restock(ctx, product.ID, -3, "admin"); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("restock must reject non-positive quantities, got %v", err)
	}
}

func TestLowStockList(t *testing.T) {
	ctx := context.Background()
	store, _, svc := newInventoryFixture(t)
	low := store.addProduct("Saline", 1, 3)
	store.addProduct("Thermometer", 12, 50)

	products, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(products) != 1 || products[0].ID != low.ID {
		t.Fatalf("expected only the low product, got %d", len(products))
	}
}

func TestNearingExpiry(t *testing.T) {
	ctx := context.Background()
	store, _, svc := newInventoryFixture(t)

	soon := store.addProduct("Insulin", 45, 10)
	soonAt := time.Now().Add(5 * 24 * time.Hour)
	soon.ExpiresAt = &soonAt

	far := store.addProduct("Syrup", 7, 10)
	farAt := time.Now().Add(90 * 24 * time.Hour)
	far.ExpiresAt = &farAt

	store.addProduct("Cotton", 2, 10)

	products, err := svc.NearingExpiry(ctx)
	if err != nil {
		t.Fatalf("nearing expiry: %v", err)
	}
	if len(products) != 1 || products[0].ID != soon.ID {
		t.Fatalf("expected only the soon-to-expire product, got %d", len(products))
	}
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	store, _, svc := newInventoryFixture(t)
	store.addProduct("Saline", 2, 3)
	store.addProduct("Thermometer", 10, 50)

	stats, err := svc.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalProducts != 2 {
		t.Fatalf("expected 2 products, got %d", stats.TotalProducts)
	}
	if stats.LowStockCount != 1 {
		t.Fatalf("expected 1 low-stock product, got %d", stats.LowStockCount)
	}
	// 2*3 + 10*50 = 506
	if !stats.TotalValuation.Equal(decimal.NewFromInt(506)) {
		t.Fatalf("expected valuation 506, got %s", stats.TotalValuation)
	}
}

func TestAdjustAlertsAdminsBelowThreshold(t *testing.T) {
	ctx := context.Background()
	store, disp, svc := newInventoryFixture(t)
	store.addUser(model.RoleAdmin, "admin-token")
	product := store.addProduct("Saline", 1, 12)

	if _, err := svc.Adjust(ctx, product.ID, -5, "admin"); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		disp.mu.Lock()
		n := len(disp.sent)
		disp.mu.Unlock()
		if n == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected one low-stock alert, got %d", n)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
