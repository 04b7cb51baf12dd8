package application

import (
	"context"

	cart "github.com/dmehra2102/storefront/internal/cart/domain"
	"github.com/dmehra2102/storefront/internal/order/domain"
)

type OrderRepository interface {
	SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, headers map[string]string, traceparent string) error
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByCustomer(ctx context.Context, customer string) ([]domain.Order, error)
	ListAll(ctx context.Context, limit int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type ProfileRepository interface {
	UpsertProfile(ctx context.Context, p domain.Profile) error
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
}

// Carts is the session cart as seen from checkout. Settle removes the ordered lines and keeps
// anything added to the cart since it was read.
type Carts interface {
	Cart(ctx context.Context, sessionID string) (*cart.Cart, error)
	Settle(ctx context.Context, sessionID string, ordered []cart.Line) error
	Policy() cart.Policy
}
