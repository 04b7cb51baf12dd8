package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	cart "github.com/dmehra2102/storefront/internal/cart/domain"
	"github.com/dmehra2102/storefront/internal/order/domain"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidStatus  = errors.New("invalid order status")
	ErrProfileMissing = errors.New("profile not found")
)

type Service struct {
	log      *slog.Logger
	repo     OrderRepository
	profiles ProfileRepository
	carts    Carts
}

func NewService(log *slog.Logger, repo OrderRepository, profiles ProfileRepository, carts Carts) *Service {
	return &Service{log: log, repo: repo, profiles: profiles, carts: carts}
}

// PlaceOrder turns the customer's cart into an order. The ordered lines leave the cart only once the
// order and its OrderPlaced event are stored. Profile and cart failures after that point are only logged.
func (s *Service) PlaceOrder(ctx context.Context, customer string, c domain.Checkout, headers map[string]string, traceparent string) (domain.Order, error) {
	if err := c.Validate(); err != nil {
		return domain.Order{}, err
	}

	session := cartapp.UserSession(customer)
	sc, err := s.carts.Cart(ctx, session)
	if err != nil {
		return domain.Order{}, err
	}
	if sc.IsEmpty() {
		return domain.Order{}, ErrEmptyCart
	}

	lines := sc.Items()
	totals := cart.ComputeTotals(lines, s.carts.Policy())
	o := domain.NewOrder(uuid.NewString(), customer, lines, totals, c)

	event := domain.OrderPlaced{
		OrderID:       o.ID,
		Customer:      o.Customer,
		Total:         o.Total,
		Currency:      o.Currency,
		PaymentMethod: o.PaymentMethod,
		Items:         o.Items,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.SaveWithOutbox(ctx, o, domain.EventOrderPlaced, payload, headers, traceparent); err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}

	if err := s.profiles.UpsertProfile(ctx, c.Profile(customer)); err != nil {
		s.log.Warn("profile upsert failed", "customer", customer, "err", err)
	}
	if err := s.carts.Settle(ctx, session, lines); err != nil {
		s.log.Error("cart settle after checkout failed", "order_id", o.ID, "err", err)
	}

	s.log.Info("order placed", "order_id", o.ID, "customer", customer, "total", o.Total.String())
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, customer string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customer)
}

// GetOrder hides other customers' orders behind ErrOrderNotFound.
func (s *Service) GetOrder(ctx context.Context, customer, id string) (domain.Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Customer != customer {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	return s.profiles.GetProfile(ctx, userID)
}

func (s *Service) ListAllOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListAll(ctx, limit)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.log.Info("order status updated", "order_id", id, "status", status)
	return nil
}
