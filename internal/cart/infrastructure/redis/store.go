package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront/internal/cart/application"
	"github.com/dmehra2102/storefront/internal/cart/domain"
)

// ErrContended is returned when a session's cart kept changing underneath Update.
var ErrContended = errors.New("cart changed concurrently")

const maxUpdateAttempts = 8

// Store keeps each session's cart as one JSON value. Every write refreshes the TTL, so abandoned
// carts expire on their own.
type Store struct {
	log *slog.Logger
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewStore(log *slog.Logger, rdb redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{log: log, rdb: rdb, ttl: ttl}
}

func (s *Store) Key(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) Load(ctx context.Context, sessionID string) ([]domain.Line, error) {
	return s.load(ctx, s.rdb, sessionID)
}

func (s *Store) load(ctx context.Context, g getter, sessionID string) ([]domain.Line, error) {
	raw, err := g.Get(ctx, s.Key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []domain.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		// unreadable snapshot reads as an empty cart
		s.log.Warn("discarding unreadable cart", "session_id", sessionID, "err", err)
		return nil, nil
	}
	return lines, nil
}

// Update watches the session key, so a write from another request between the read and the write
// aborts the transaction and fn runs again on fresh lines.
func (s *Store) Update(ctx context.Context, sessionID string, fn application.UpdateFunc) error {
	key := s.Key(sessionID)
	txf := func(tx *redis.Tx) error {
		lines, err := s.load(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		next, write, err := fn(lines)
		if err != nil || !write {
			return err
		}
		var raw []byte
		if len(next) > 0 {
			if raw, err = json.Marshal(next); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if raw == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		})
		return err
	}

	for range maxUpdateAttempts {
		err := s.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		s.log.Debug("cart update raced, retrying", "session_id", sessionID)
	}
	return ErrContended
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, s.Key(sessionID)).Err()
}
