package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/cart/domain"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
)

// UpdateFunc receives the stored lines and returns the lines to store. When write is false nothing is
// stored; an empty result deletes the cart.
type UpdateFunc func(lines []domain.Line) (next []domain.Line, write bool, err error)

// CartStore persists cart snapshots per session. Load on an unknown session returns no lines and no
// error. Update runs fn as an atomic read-modify-write of one session and may call fn more than once.
type CartStore interface {
	Load(ctx context.Context, sessionID string) ([]domain.Line, error)
	Update(ctx context.Context, sessionID string, fn UpdateFunc) error
	Delete(ctx context.Context, sessionID string) error
}

type ProductReader interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}
