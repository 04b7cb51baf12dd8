package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Payment struct {
	OrderID   string
	Amount    decimal.Decimal
	Currency  string
	Method    string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusFor maps a payment method to the status recorded at order time: cash on delivery stays
// pending, prepaid methods are recorded as completed.
func StatusFor(method string) (Status, bool) {
	switch method {
	case "cod":
		return StatusPending, true
	case "upi", "card":
		return StatusCompleted, true
	}
	return StatusFailed, false
}
