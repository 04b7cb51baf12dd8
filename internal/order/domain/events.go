package domain

import "github.com/shopspring/decimal"

const EventOrderPlaced = "OrderPlaced"

type OrderPlaced struct {
	OrderID       string          `json:"order_id"`
	Customer      string          `json:"customer"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Items         []OrderItem     `json:"items"`
}
