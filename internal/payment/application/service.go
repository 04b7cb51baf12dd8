package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmehra2102/storefront/internal/payment/domain"
	orderdom "github.com/dmehra2102/storefront/internal/order/domain"
)

type Service struct {
	repo PaymentRepository
}

func NewService(repo PaymentRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Process(ctx context.Context, placed orderdom.OrderPlaced, headers map[string]string, traceparent string) (domain.Payment, error) {
	now := time.Now().UTC()
	p := domain.Payment{
		OrderID:   placed.OrderID,
		Amount:    placed.Total,
		Currency:  placed.Currency,
		Method:    string(placed.PaymentMethod),
		CreatedAt: now,
		UpdatedAt: now,
	}

	event := domain.PaymentRecorded{OrderID: p.OrderID, Amount: p.Amount, Method: p.Method}
	status, ok := domain.StatusFor(p.Method)
	p.Status = status
	event.Status = status
	if !ok {
		event.Reason = "unsupported payment method"
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Payment{}, err
	}
	if err := s.repo.SaveWithOutbox(ctx, p, domain.EventPaymentRecorded, payload, headers, traceparent); err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}
