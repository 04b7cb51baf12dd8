package auth

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDirectory answers admin membership from the admin_users table.
type PostgresDirectory struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewPostgresDirectory(log *slog.Logger, pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{log: log, pool: pool}
}

func (d *PostgresDirectory) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := d.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admin_users WHERE user_id=$1)`, userID).Scan(&ok)
	return ok, err
}
