package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestComputeTotals(t *testing.T) {
	policy := Policy{
		FreeShippingThreshold: dec("1000"),
		FlatShippingCost:      dec("100"),
		TaxRate:               dec("0.18"),
		Currency:              "INR",
	}

	cases := []struct {
		name                            string
		lines                           []Line
		subtotal, shipping, tax, total string
	}{
		{
			name:     "empty cart is free",
			subtotal: "0", shipping: "0", tax: "0", total: "0",
		},
		{
			name:     "at threshold ships free",
			lines:    []Line{{Product: product("p1", 500), Quantity: 2}},
			subtotal: "1000", shipping: "0", tax: "180", total: "1180",
		},
		{
			name:     "below threshold pays flat rate",
			lines:    []Line{{Product: product("p1", 300), Quantity: 1}},
			subtotal: "300", shipping: "100", tax: "54", total: "454",
		},
		{
			name: "several lines above threshold",
			lines: []Line{
				{Product: product("p1", 700), Quantity: 1},
				{Product: product("p2", 150), Quantity: 3},
			},
			subtotal: "1150", shipping: "0", tax: "207", total: "1357",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(tc.lines, policy)
			assertDecimal(t, tc.subtotal, got.Subtotal, "subtotal")
			assertDecimal(t, tc.shipping, got.ShippingCost, "shipping")
			assertDecimal(t, tc.tax, got.Tax, "tax")
			assertDecimal(t, tc.total, got.Total, "total")
			assert.Equal(t, "INR", got.Currency)
		})
	}
}

func TestComputeTotalsRoundsTax(t *testing.T) {
	policy := Policy{FreeShippingThreshold: dec("100"), FlatShippingCost: dec("10"), TaxRate: dec("0.08")}
	lines := []Line{{Product: product("p1", 0), Quantity: 1}}
	lines[0].Product.Price = dec("19.99")

	got := ComputeTotals(lines, policy)
	assertDecimal(t, "1.6", got.Tax, "tax")
	assertDecimal(t, "31.59", got.Total, "total")
}

func TestComputeTotalsDoesNotMutateInput(t *testing.T) {
	lines := []Line{{Product: product("p1", 300), Quantity: 2}}
	_ = ComputeTotals(lines, DefaultPolicy())
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.TaxRate = dec("1.5")
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.FlatShippingCost = dec("-1")
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.FreeShippingThreshold = dec("-1")
	assert.Error(t, p.Validate())
}
