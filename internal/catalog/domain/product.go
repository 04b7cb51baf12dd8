package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("invalid product")

// MaxPrice is the first price the products.price NUMERIC(12,2) column cannot hold.
var MaxPrice = decimal.New(1, 10)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	IsNew       bool            `json:"is_new"`
	IsSale      bool            `json:"is_sale"`
}

// Validate is applied to admin writes. Products read back from the catalog are trusted.
func (p Product) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(p.Category) == "" {
		errs = append(errs, errors.New("category is required"))
	}
	switch {
	case p.Price.IsNegative():
		errs = append(errs, errors.New("price must not be negative"))
	case p.Price.GreaterThanOrEqual(MaxPrice):
		errs = append(errs, errors.New("price is too large"))
	case !p.Price.Equal(p.Price.Round(2)):
		errs = append(errs, errors.New("price must have at most 2 decimal places"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidProduct}, errs...)...)
	}
	return nil
}

type Filter struct {
	Category string
	Search   string
}
