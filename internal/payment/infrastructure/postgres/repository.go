package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/storefront/internal/payment/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SaveWithOutbox(ctx context.Context, p domain.Payment, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO payments (order_id, amount, currency, method, status, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (order_id) DO UPDATE SET amount=$2, currency=$3, method=$4, status=$5, updated_at=$7`,
		p.OrderID, p.Amount, p.Currency, p.Method, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET payment_status=$2, updated_at=$3 WHERE id=$1`, p.OrderID, p.Status, p.UpdatedAt)
	if err != nil {
		return err
	}

	if headers == nil {
		headers = map[string]string{}
	}
	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status) VALUES ($1,$2,$3,$4,$5,$6,'pending')`, "payment",
		p.OrderID, eventType, payload, headers, traceparent)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
