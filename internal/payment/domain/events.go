package domain

import "github.com/shopspring/decimal"

const EventPaymentRecorded = "PaymentRecorded"

type PaymentRecorded struct {
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	Status  Status          `json:"status"`
	Reason  string          `json:"reason,omitempty"`
}
