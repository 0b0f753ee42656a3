package payment

import (
	"context"
	"fmt"
	"os"

	"go-pharma-store/internal/model"

	"github.com/google/uuid"
)

// Session is the reference handed back to the client: it redirects the
// shopper to the provider's hosted payment page and comes back through the
// callback endpoint keyed by the order id.
type Session struct {
	SessionID   uuid.UUID `json:"session_id"`
	OrderID     uuid.UUID `json:"order_id"`
	RedirectURL string    `json:"redirect_url"`
}

// Gateway is the external e-wallet collaborator. The wire protocol behind it
// is the provider's business; we only hand over the frozen order snapshot and
// receive a hosted-flow redirect.
type Gateway interface {
	CreateSession(ctx context.Context, order *model.Order) (*Session, error)
}

type hostedGateway struct {
	baseURL     string
	callbackURL string
}

// NewHostedGateway builds a Gateway pointing at the provider's hosted
// checkout. EWALLET_BASE_URL and EWALLET_CALLBACK_URL configure the provider
// endpoint and where the shopper lands after paying.
func NewHostedGateway() Gateway {
	base := os.Getenv("EWALLET_BASE_URL")
	if base == "" {
		base = "https://pay.example.com/checkout"
	}
	callback := os.Getenv("EWALLET_CALLBACK_URL")
	if callback == "" {
		callback = "http://localhost:3000/api/v1/checkout/ewallet/callback"
	}
	return &hostedGateway{baseURL: base, callbackURL: callback}
}

func (g *hostedGateway) CreateSession(ctx context.Context, order *model.Order) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sessionID := uuid.New()
	redirect := fmt.Sprintf("%s?session=%s&amount=%s&return_to=%s?order_id=%s",
		g.baseURL, sessionID, order.Total.StringFixed(2), g.callbackURL, order.ID)
	return &Session{
		SessionID:   sessionID,
		OrderID:     order.ID,
		RedirectURL: redirect,
	}, nil
}
