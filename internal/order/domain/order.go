package domain

import (
	"time"

	"github.com/shopspring/decimal"

	cart "github.com/dmehra2102/storefront/internal/cart/domain"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentUPI  PaymentMethod = "upi"
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentUPI || m == PaymentCOD || m == PaymentCard
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Order struct {
	ID               string          `json:"id"`
	Customer         string          `json:"customer"`
	Items            []OrderItem     `json:"items,omitempty"`
	ItemCount        int             `json:"item_count"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
	Status           OrderStatus     `json:"status"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	UPITransactionID string          `json:"upi_transaction_id,omitempty"`
	ShippingAddress  Address         `json:"shipping_address"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// NewOrder freezes the cart lines and the totals computed for them. Totals are taken as given so the
// order records exactly what the shopper was shown.
func NewOrder(id, customer string, lines []cart.Line, totals cart.Totals, c Checkout) Order {
	items := make([]OrderItem, 0, len(lines))
	count := 0
	for _, l := range lines {
		items = append(items, OrderItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
		count += l.Quantity
	}
	now := time.Now().UTC()
	o := Order{
		ID:              id,
		Customer:        customer,
		Items:           items,
		ItemCount:       count,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Currency:        totals.Currency,
		Status:          StatusProcessing,
		PaymentMethod:   c.PaymentMethod,
		PaymentStatus:   PaymentPending,
		ShippingAddress: c.Address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if c.PaymentMethod == PaymentUPI {
		o.UPITransactionID = c.UPIID
	}
	return o
}
