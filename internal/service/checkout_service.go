package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-pharma-store/internal/model"
	"go-pharma-store/internal/notification"
	"go-pharma-store/internal/payment"
	"go-pharma-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MinEwalletTotal is the smallest order the e-wallet provider accepts.
var MinEwalletTotal = decimal.NewFromInt(30)

type CheckoutService interface {
	CashCheckout(ctx context.Context, shopperID uuid.UUID, voucherCode string) (*model.Order, error)
	BeginEwalletCheckout(ctx context.Context, shopperID uuid.UUID, voucherCode string) (*payment.Session, error)
	CompleteEwalletCheckout(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
}

type checkoutService struct {
	carts      repository.CartRepository
	products   repository.ProductRepository
	orders     repository.OrderRepository
	users      repository.UserRepository
	tx         repository.TxManager
	pricing    *PricingEngine
	gateway    payment.Gateway
	dispatcher notification.Dispatcher
}

func NewCheckoutService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	tx repository.TxManager,
	pricing *PricingEngine,
	gateway payment.Gateway,
	dispatcher notification.Dispatcher,
) CheckoutService {
	return &checkoutService{
		carts:      carts,
		products:   products,
		orders:     orders,
		users:      users,
		tx:         tx,
		pricing:    pricing,
		gateway:    gateway,
		dispatcher: dispatcher,
	}
}

// CashCheckout converts the shopper's cart into a processing order in one
// database transaction: every line's stock is decremented (all-or-nothing),
// the order snapshot is written, and the cart is cleared. Notifications go
// out after commit and never roll the order back.
func (s *checkoutService) CashCheckout(ctx context.Context, shopperID uuid.UUID, voucherCode string) (*model.Order, error) {
	lines, err := s.carts.FindLines(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	quote := s.pricing.Quote(lines, voucherCode)
	order := s.buildOrder(shopperID, model.PaymentCash, model.StatusProcessing, lines, quote, voucherCode)

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.reserveStock(ctx, order); err != nil {
			return err
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		return s.carts.Clear(ctx, shopperID)
	})
	if err != nil {
		return nil, err
	}

	go s.notifyOrderPlaced(order)
	return order, nil
}

// BeginEwalletCheckout freezes the cart into an awaiting_payment order and
// asks the payment collaborator for a hosted session. No stock is reserved
// yet: that happens in CompleteEwalletCheckout when the shopper returns. An
// order that never receives its callback stays awaiting_payment with no
// stock decrement, which is what a reconciliation job looks for.
func (s *checkoutService) BeginEwalletCheckout(ctx context.Context, shopperID uuid.UUID, voucherCode string) (*payment.Session, error) {
	lines, err := s.carts.FindLines(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	quote := s.pricing.Quote(lines, voucherCode)
	if quote.Total.LessThan(MinEwalletTotal) {
		return nil, ErrBelowMinimum
	}

	order := s.buildOrder(shopperID, model.PaymentEwallet, model.StatusAwaitingPayment, lines, quote, voucherCode)
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	return s.gateway.CreateSession(ctx, order)
}

// CompleteEwalletCheckout is the callback entry point and may be invoked any
// number of times for the same order (back-navigation, redelivery). The
// order row is locked and the transition is guarded on awaiting_payment, so
// only the first invocation decrements stock; replays see a finalized order
// and return it unchanged.
func (s *checkoutService) CompleteEwalletCheckout(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	var (
		final     *model.Order
		committed bool
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.PaymentMethod != model.PaymentEwallet {
			return ErrInvalidTransition
		}
		if order.CheckoutStatus != model.StatusAwaitingPayment {
			// Replayed callback: already committed, nothing to do.
			final = order
			return nil
		}

		if err := s.reserveStock(ctx, order); err != nil {
			return err
		}
		if err := s.carts.Clear(ctx, order.ShopperID); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(ctx, order.ID, model.StatusAwaitingPayment, model.StatusProcessing); err != nil {
			return err
		}
		order.CheckoutStatus = model.StatusProcessing
		final = order
		committed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if committed {
		go s.notifyOrderPlaced(final)
	}
	return final, nil
}

// reserveStock decrements stock for every item via conditional writes. The
// first item that cannot be covered aborts the surrounding transaction, so
// partial decrements never commit.
func (s *checkoutService) reserveStock(ctx context.Context, order *model.Order) error {
	for i := range order.Items {
		item := &order.Items[i]
		err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity, order.ShopperID.String())
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return &InsufficientStockError{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					Requested:   item.Quantity,
				}
			}
			return err
		}
	}
	return nil
}

// buildOrder freezes cart lines and pricing into an immutable order snapshot.
// The id is assigned here so payment sessions can reference it before the
// record exists.
func (s *checkoutService) buildOrder(shopperID uuid.UUID, method model.PaymentMethod, status model.CheckoutStatus, lines []model.CartLine, quote Quote, voucherCode string) *model.Order {
	order := &model.Order{
		ShopperID:      shopperID,
		PaymentMethod:  method,
		Subtotal:       quote.Subtotal,
		Discount:       quote.Discount,
		Tax:            quote.Tax,
		Total:          quote.Total,
		CheckoutStatus: status,
	}
	order.ID = uuid.New()
	order.CreatedBy = shopperID.String()
	order.UpdatedBy = shopperID.String()
	if quote.VoucherApplied {
		order.VoucherCode = voucherCode
	}

	order.Items = make([]model.OrderItem, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		name := ""
		if line.Product != nil {
			name = line.Product.Name
		}
		order.Items = append(order.Items, model.OrderItem{
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Dosage:      line.Dosage,
		})
	}
	return order
}

// notifyOrderPlaced tells the shopper and every admin recipient about the new
// order. Best-effort: failures are logged, never surfaced.
func (s *checkoutService) notifyOrderPlaced(order *model.Order) {
	ctx := context.Background()

	if shopper, err := s.users.FindByID(ctx, order.ShopperID); err == nil && shopper.DeviceToken != "" {
		notification.Send(s.dispatcher, []string{shopper.DeviceToken}, notification.Message{
			Title: "Order placed",
			Body:  fmt.Sprintf("Your order is being processed. Total: %s", order.Total.StringFixed(2)),
		})
	}

	tokens, err := s.users.AdminDeviceTokens(ctx)
	if err != nil {
		log.Printf("failed to resolve admin recipients: %v", err)
		return
	}
	notification.Send(s.dispatcher, tokens, notification.Message{
		Title:    "New order",
		Body:     fmt.Sprintf("A new %s order came in for %s", order.PaymentMethod, order.Total.StringFixed(2)),
		Metadata: map[string]string{"order_id": order.ID.String()},
	})
}
