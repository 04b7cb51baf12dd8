package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	orderdom "github.com/dmehra2102/storefront/internal/order/domain"
	"github.com/dmehra2102/storefront/internal/payment/domain"
	"github.com/dmehra2102/storefront/pkg/outbox"
)

type memDedup map[string]bool

func (m memDedup) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("%s:%d:%d", topic, partition, offset)
}
func (m memDedup) Seen(_ context.Context, key string) (bool, error) {
	if m[key] {
		return true, nil
	}
	m[key] = true
	return false, nil
}
func (m memDedup) Forget(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type stubProcessor struct {
	calls    []orderdom.OrderPlaced
	err      error
	failures int
	recorded map[string]int
}

func (s *stubProcessor) Process(_ context.Context, ev orderdom.OrderPlaced, _ map[string]string, _ string) (domain.Payment, error) {
	s.calls = append(s.calls, ev)
	if s.failures > 0 {
		s.failures--
		return domain.Payment{}, errors.New("db down")
	}
	if s.err != nil {
		return domain.Payment{}, s.err
	}
	if s.recorded == nil {
		s.recorded = map[string]int{}
	}
	s.recorded[ev.OrderID]++
	return domain.Payment{OrderID: ev.OrderID, Status: domain.StatusCompleted}, nil
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func newTestConsumer(p Processor, d Deduper) *Consumer {
	return &Consumer{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		svc:    p,
		idem:   d,
		tracer: noop.NewTracerProvider().Tracer("test"),
	}
}

func placedMessage(t *testing.T, offset int64, eventType string) kafka.Message {
	t.Helper()
	return orderMessage(t, "o1", offset, eventType)
}

func orderMessage(t *testing.T, orderID string, offset int64, eventType string) kafka.Message {
	t.Helper()
	body, err := json.Marshal(orderdom.OrderPlaced{OrderID: orderID, Total: decimal.NewFromInt(100), PaymentMethod: orderdom.PaymentUPI})
	require.NoError(t, err)
	return kafka.Message{
		Topic:   "order.events",
		Offset:  offset,
		Value:   body,
		Headers: []kafka.Header{{Key: outbox.HeaderEventType, Value: []byte(eventType)}},
	}
}

func TestHandleProcessesOnce(t *testing.T) {
	proc := &stubProcessor{}
	c := newTestConsumer(proc, memDedup{})
	msg := placedMessage(t, 7, orderdom.EventOrderPlaced)

	assert.True(t, c.Handle(context.Background(), msg))
	assert.True(t, c.Handle(context.Background(), msg))
	require.Len(t, proc.calls, 1)
	assert.Equal(t, "o1", proc.calls[0].OrderID)
}

func TestHandleSkipsOtherEvents(t *testing.T) {
	proc := &stubProcessor{}
	c := newTestConsumer(proc, memDedup{})

	assert.True(t, c.Handle(context.Background(), placedMessage(t, 1, "PaymentRecorded")))
	assert.Empty(t, proc.calls)
}

func TestHandleReleasesKeyOnFailure(t *testing.T) {
	proc := &stubProcessor{err: errors.New("db down")}
	dedup := memDedup{}
	c := newTestConsumer(proc, dedup)
	msg := placedMessage(t, 3, orderdom.EventOrderPlaced)

	assert.False(t, c.Handle(context.Background(), msg))
	assert.Empty(t, dedup)

	proc.err = nil
	assert.True(t, c.Handle(context.Background(), msg))
	assert.Len(t, proc.calls, 2)
}

func TestHandleCommitsPoisonMessages(t *testing.T) {
	proc := &stubProcessor{}
	c := newTestConsumer(proc, memDedup{})
	msg := placedMessage(t, 9, orderdom.EventOrderPlaced)
	msg.Value = []byte("{not json")

	assert.True(t, c.Handle(context.Background(), msg))
	assert.Empty(t, proc.calls)
}

func TestRunRetriesFailedMessageBeforeMovingOn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	proc := &stubProcessor{failures: 1}
	c := newTestConsumer(proc, memDedup{})
	c.backoff = time.Millisecond
	reader := &fakeReader{
		msgs: []kafka.Message{
			orderMessage(t, "o1", 3, orderdom.EventOrderPlaced),
			orderMessage(t, "o2", 4, orderdom.EventOrderPlaced),
		},
		cancel: cancel,
	}
	c.reader = reader

	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, map[string]int{"o1": 1, "o2": 1}, proc.recorded)
	assert.Len(t, proc.calls, 3)
	assert.Equal(t, []int64{3, 4}, reader.committed)
}

func TestRunStopsRetryingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	proc := &stubProcessor{err: errors.New("db down")}
	c := newTestConsumer(proc, memDedup{})
	c.backoff = time.Millisecond
	reader := &fakeReader{msgs: []kafka.Message{orderMessage(t, "o1", 5, orderdom.EventOrderPlaced)}, cancel: cancel}
	c.reader = reader

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reader.committed)
	assert.NotEmpty(t, proc.calls)
}
