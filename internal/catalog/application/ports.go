package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/catalog/domain"
)

type ProductRepository interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Save(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id string) error
}
