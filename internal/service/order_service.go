package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-pharma-store/internal/model"
	"go-pharma-store/internal/notification"
	"go-pharma-store/internal/repository"

	"github.com/google/uuid"
)

type OrderService interface {
	History(ctx context.Context, shopperID uuid.UUID) ([]model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByStatus(ctx context.Context, status model.CheckoutStatus) ([]model.Order, error)
	Confirm(ctx context.Context, orderID uuid.UUID, adminID string) (*model.Order, error)
}

type orderService struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	dispatcher notification.Dispatcher
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, dispatcher notification.Dispatcher) OrderService {
	return &orderService{orders: orders, users: users, dispatcher: dispatcher}
}

func (s *orderService) History(ctx context.Context, shopperID uuid.UUID) ([]model.Order, error) {
	return s.orders.FindByShopper(ctx, shopperID)
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListByStatus(ctx context.Context, status model.CheckoutStatus) ([]model.Order, error) {
	return s.orders.FindByStatus(ctx, status)
}

// Confirm is the one post-creation transition an admin can drive:
// processing -> Confirmed, one-way. Anything else is rejected.
func (s *orderService) Confirm(ctx context.Context, orderID uuid.UUID, adminID string) (*model.Order, error) {
	err := s.orders.UpdateStatus(ctx, orderID, model.StatusProcessing, model.StatusConfirmed)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, ErrInvalidTransition
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrOrderNotFound
		default:
			return nil, err
		}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	go s.notifyConfirmed(order)
	return order, nil
}

func (s *orderService) notifyConfirmed(order *model.Order) {
	shopper, err := s.users.FindByID(context.Background(), order.ShopperID)
	if err != nil || shopper.DeviceToken == "" {
		if err != nil {
			log.Printf("failed to resolve shopper for confirmation notice: %v", err)
		}
		return
	}
	notification.Send(s.dispatcher, []string{shopper.DeviceToken}, notification.Message{
		Title:    "Order confirmed",
		Body:     fmt.Sprintf("Your order for %s has been confirmed", order.Total.StringFixed(2)),
		Metadata: map[string]string{"order_id": order.ID.String()},
	})
}
