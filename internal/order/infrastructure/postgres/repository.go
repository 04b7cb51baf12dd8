package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/storefront/internal/order/application"
	"github.com/dmehra2102/storefront/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// SaveWithOutbox writes the order, its items and the outbox row in one transaction.
func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, customer, subtotal, shipping_cost, tax, total, currency, status,
				payment_method, payment_status, upi_transaction_id, street, city, state, postal_code, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		o.ID, o.Customer, o.Subtotal, o.ShippingCost, o.Tax, o.Total, o.Currency, o.Status,
		o.PaymentMethod, o.PaymentStatus, o.UPITransactionID,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.State, o.ShippingAddress.PostalCode,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, product_id, name, quantity, price)
            VALUES ($1,$2,$3,$4,$5)`,
			o.ID, item.ProductID, item.Name, item.Quantity, item.Price)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	if headers == nil {
		headers = map[string]string{}
	}
	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status) VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", o.ID, eventType, payload, headers, traceparent)
	if err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}
	return tx.Commit(ctx)
}

const orderColumns = `o.id, o.customer, o.subtotal, o.shipping_cost, o.tax, o.total, o.currency, o.status,
	o.payment_method, o.payment_status, o.upi_transaction_id, o.street, o.city, o.state, o.postal_code,
	o.created_at, o.updated_at,
	(SELECT COALESCE(SUM(quantity), 0) FROM order_items i WHERE i.order_id = o.id)`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.Customer, &o.Subtotal, &o.ShippingCost, &o.Tax, &o.Total, &o.Currency, &o.Status,
		&o.PaymentMethod, &o.PaymentStatus, &o.UPITransactionID,
		&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.State, &o.ShippingAddress.PostalCode,
		&o.CreatedAt, &o.UpdatedAt, &o.ItemCount)
	return o, err
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, application.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}

	rows, err := r.pool.Query(ctx, `SELECT product_id, name, quantity, price FROM order_items WHERE order_id=$1 ORDER BY product_id`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func (r *Repository) ListByCustomer(ctx context.Context, customer string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.customer=$1 ORDER BY o.created_at DESC`, customer)
}

func (r *Repository) ListAll(ctx context.Context, limit int) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders o ORDER BY o.created_at DESC LIMIT $1`, limit)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	ct, err := r.pool.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return application.ErrOrderNotFound
	}
	return nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_profiles (user_id, full_name, phone, street, city, state, postal_code, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
		ON CONFLICT (user_id) DO UPDATE SET full_name=$2, phone=$3, street=$4, city=$5, state=$6, postal_code=$7, updated_at=now()`,
		p.UserID, p.FullName, p.Phone, p.Address.Street, p.Address.City, p.Address.State, p.Address.PostalCode)
	return err
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	p := domain.Profile{UserID: userID}
	err := r.pool.QueryRow(ctx, `SELECT full_name, phone, street, city, state, postal_code FROM user_profiles WHERE user_id=$1`, userID).
		Scan(&p.FullName, &p.Phone, &p.Address.Street, &p.Address.City, &p.Address.State, &p.Address.PostalCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, application.ErrProfileMissing
	}
	return p, err
}
