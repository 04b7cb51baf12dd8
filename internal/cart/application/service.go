package application

import (
	"context"
	"fmt"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

var ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", domain.MaxQuantity)

type View struct {
	Items     []domain.Line `json:"items"`
	ItemCount int           `json:"item_count"`
	Totals    domain.Totals `json:"totals"`
}

type Service struct {
	store    CartStore
	products ProductReader
	policy   domain.Policy
}

func NewService(store CartStore, products ProductReader, policy domain.Policy) *Service {
	return &Service{store: store, products: products, policy: policy}
}

func (s *Service) Policy() domain.Policy { return s.policy }

// Cart loads the session's cart. Callers that only read should prefer Get.
func (s *Service) Cart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return domain.Restore(lines), nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (View, error) {
	c, err := s.Cart(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.view(c), nil
}

// Add snapshots the product from the catalog, so the price stored in the cart is the catalog's price.
func (s *Service) Add(ctx context.Context, sessionID, productID string, quantity int) (View, error) {
	if quantity <= 0 || quantity > domain.MaxQuantity {
		return View{}, ErrInvalidQuantity
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return View{}, err
	}
	return s.mutate(ctx, sessionID, func(c *domain.Cart) (bool, error) {
		if c.Quantity(p.ID) > domain.MaxQuantity-quantity {
			return false, ErrInvalidQuantity
		}
		return c.AddItem(p, quantity), nil
	})
}

func (s *Service) Update(ctx context.Context, sessionID, productID string, quantity int) (View, error) {
	if quantity <= 0 || quantity > domain.MaxQuantity {
		return View{}, ErrInvalidQuantity
	}
	return s.mutate(ctx, sessionID, func(c *domain.Cart) (bool, error) {
		return c.UpdateQuantity(productID, quantity), nil
	})
}

func (s *Service) Remove(ctx context.Context, sessionID, productID string) (View, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) (bool, error) {
		return c.RemoveItem(productID), nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Settle takes checked-out lines out of the session cart. Units added after the checkout snapshot
// was taken stay in the cart.
func (s *Service) Settle(ctx context.Context, sessionID string, ordered []domain.Line) error {
	_, err := s.mutate(ctx, sessionID, func(c *domain.Cart) (bool, error) {
		changed := false
		for _, l := range ordered {
			have := c.Quantity(l.Product.ID)
			switch {
			case have == 0:
			case have <= l.Quantity:
				changed = c.RemoveItem(l.Product.ID) || changed
			default:
				changed = c.UpdateQuantity(l.Product.ID, have-l.Quantity) || changed
			}
		}
		return changed, nil
	})
	return err
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*domain.Cart) (bool, error)) (View, error) {
	var c *domain.Cart
	err := s.store.Update(ctx, sessionID, func(lines []domain.Line) ([]domain.Line, bool, error) {
		c = domain.Restore(lines)
		changed, err := fn(c)
		if err != nil || !changed {
			return nil, false, err
		}
		return c.Items(), true, nil
	})
	if err != nil {
		return View{}, fmt.Errorf("update cart: %w", err)
	}
	return s.view(c), nil
}

func (s *Service) view(c *domain.Cart) View {
	items := c.Items()
	return View{
		Items:     items,
		ItemCount: c.ItemCount(),
		Totals:    domain.ComputeTotals(items, s.policy),
	}
}

// UserSession is the cart key of a signed-in shopper.
func UserSession(userID string) string { return "user:" + userID }

func GuestSession(id string) string { return "guest:" + id }
