package service

import (
	"context"
	"errors"
	"testing"

	"go-pharma-store/internal/model"

	"github.com/google/uuid"
)

func newOrderFixture(t *testing.T) (*memStore, OrderService) {
	t.Helper()
	store := newMemStore()
	return store, NewOrderService(&memOrders{store}, &memUsers{store}, &fakeDispatcher{})
}

func seedOrder(t *testing.T, store *memStore, shopperID uuid.UUID, status model.CheckoutStatus) *model.Order {
	t.Helper()
	order := &model.Order{
		ShopperID:      shopperID,
		PaymentMethod:  model.PaymentCash,
		CheckoutStatus: status,
	}
	if err := (&memOrders{store}).Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestConfirmOrder(t *testing.T) {
	ctx := context.Background()
	store, svc := newOrderFixture(t)
	shopper := store.addUser(model.RoleShopper, "shopper-token")
	order := seedOrder(t, store, shopper.ID, model.StatusProcessing)

	confirmed, err := svc.Confirm(ctx, order.ID, "admin")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.CheckoutStatus != model.StatusConfirmed {
		t.Fatalf("expected Confirmed, got %s", confirmed.CheckoutStatus)
	}

	// Confirmed is terminal; a second confirm has no awaiting transition.
	if _, err := svc.Confirm(ctx, order.ID, "admin"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on re-confirm, got %v", err)
	}
}

func TestConfirmRejectsAwaitingPayment(t *testing.T) {
	ctx := context.Background()
	store, svc := newOrderFixture(t)
	shopper := store.addUser(model.RoleShopper, "")
	order := seedOrder(t, store, shopper.ID, model.StatusAwaitingPayment)

	if _, err := svc.Confirm(ctx, order.ID, "admin"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("an unpaid order must not be confirmable, got %v", err)
	}
}

func TestConfirmUnknownOrder(t *testing.T) {
	ctx := context.Background()
	_, svc := newOrderFixture(t)

	if _, err := svc.Confirm(ctx, uuid.New(), "admin"); !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected a rejection for an unknown order, got %v", err)
	}
}

func TestOrderHistory(t *testing.T) {
	ctx := context.Background()
	store, svc := newOrderFixture(t)
	alice := store.addUser(model.RoleShopper, "")
	bob := store.addUser(model.RoleShopper, "")
	seedOrder(t, store, alice.ID, model.StatusProcessing)
	seedOrder(t, store, alice.ID, model.StatusConfirmed)
	seedOrder(t, store, bob.ID, model.StatusProcessing)

	orders, err := svc.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders for alice, got %d", len(orders))
	}
}

func TestListByStatus(t *testing.T) {
	ctx := context.Background()
	store, svc := newOrderFixture(t)
	shopper := store.addUser(model.RoleShopper, "")
	seedOrder(t, store, shopper.ID, model.StatusProcessing)
	seedOrder(t, store, shopper.ID, model.StatusAwaitingPayment)

	orders, err := svc.ListByStatus(ctx, model.StatusProcessing)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 processing order, got %d", len(orders))
	}
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	store, svc := newOrderFixture(t)
	shopper := store.addUser(model.RoleShopper, "")
	order := seedOrder(t, store, shopper.ID, model.StatusProcessing)

	got, err := svc.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("wrong order returned")
	}

	if _, err := svc.Get(ctx, uuid.New()); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
