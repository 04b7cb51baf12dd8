package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Policy holds the pricing rules applied at checkout. It is configuration, not a constant: each
// deployment injects its own.
type Policy struct {
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	FlatShippingCost      decimal.Decimal `json:"flat_shipping_cost"`
	TaxRate               decimal.Decimal `json:"tax_rate"`
	Currency              string          `json:"currency"`
}

func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(1000),
		FlatShippingCost:      decimal.NewFromInt(100),
		TaxRate:               decimal.RequireFromString("0.18"),
		Currency:              "INR",
	}
}

func (p Policy) Validate() error {
	switch {
	case p.FreeShippingThreshold.IsNegative():
		return errors.New("free shipping threshold must not be negative")
	case p.FlatShippingCost.IsNegative():
		return errors.New("flat shipping cost must not be negative")
	case p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(1)):
		return errors.New("tax rate must be between 0 and 1")
	}
	return nil
}

type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
}

// ComputeTotals derives the order totals from the given lines. An empty cart costs nothing,
// shipping included. Free shipping starts at the threshold itself.
func ComputeTotals(lines []Line, policy Policy) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	shipping := decimal.Zero
	if len(lines) > 0 && subtotal.LessThan(policy.FreeShippingThreshold) {
		shipping = policy.FlatShippingCost
	}

	tax := subtotal.Mul(policy.TaxRate).Round(2)

	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal.Add(shipping).Add(tax),
		Currency:     policy.Currency,
	}
}
