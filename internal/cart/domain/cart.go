package domain

import (
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
)

// MaxQuantity caps the units of one product in a cart.
const MaxQuantity = 9999

type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart keeps one line per product ID in insertion order. Quantities stay within 1..MaxQuantity.
// A Cart belongs to a single session and is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Restore rebuilds a cart from persisted lines. Lines that break the invariants are dropped and
// duplicate products are merged.
func Restore(lines []Line) *Cart {
	c := New()
	for _, l := range lines {
		c.AddItem(l.Product, l.Quantity)
	}
	return c
}

// AddItem merges quantity into an existing line or appends a new one. A non-positive quantity, a
// merged quantity above MaxQuantity or a negatively priced product leaves the cart untouched.
func (c *Cart) AddItem(p catalog.Product, quantity int) bool {
	if quantity <= 0 || quantity > MaxQuantity || p.ID == "" || p.Price.IsNegative() {
		return false
	}
	if i := c.index(p.ID); i >= 0 {
		if c.lines[i].Quantity > MaxQuantity-quantity {
			return false
		}
		c.lines[i].Quantity += quantity
		return true
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: quantity})
	return true
}

func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	if quantity <= 0 || quantity > MaxQuantity {
		return false
	}
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = quantity
	return true
}

func (c *Cart) RemoveItem(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Items returns a copy so callers cannot break the invariants through the slice.
func (c *Cart) Items() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Quantity reports the units of productID in the cart, 0 when it has no line.
func (c *Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
