package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dmehra2102/storefront/internal/catalog/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.Product, error) {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.List(ctx, f)
}

// Get is also the lookup used when a product is added to a cart.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	p.ID = uuid.NewString()
	if err := s.repo.Save(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, p domain.Product) (domain.Product, error) {
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	if err := s.repo.Save(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
