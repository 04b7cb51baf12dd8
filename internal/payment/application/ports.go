package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/payment/domain"
)

// PaymentRepository records the payment, mirrors its status onto the order and queues the event,
// all in one transaction.
type PaymentRepository interface {
	SaveWithOutbox(ctx context.Context, p domain.Payment, eventType string, payload []byte, headers map[string]string, traceparent string) error
}
