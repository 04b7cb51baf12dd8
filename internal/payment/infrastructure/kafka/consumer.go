package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	orderdom "github.com/dmehra2102/storefront/internal/order/domain"
	"github.com/dmehra2102/storefront/internal/payment/domain"
	"github.com/dmehra2102/storefront/pkg/outbox"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

type Processor interface {
	Process(ctx context.Context, placed orderdom.OrderPlaced, headers map[string]string, traceparent string) (domain.Payment, error)
}

type Deduper interface {
	Key(topic string, partition int, offset int64) string
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// Reader is the part of a kafka.Reader the consumer drives.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const maxBackoff = 10 * time.Second

type Consumer struct {
	log     *slog.Logger
	reader  Reader
	svc     Processor
	idem    Deduper
	tracer  trace.Tracer
	backoff time.Duration
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, svc Processor, idem Deduper) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:     log,
		reader:  r,
		svc:     svc,
		idem:    idem,
		tracer:  otel.Tracer("payment-consumer"),
		backoff: 200 * time.Millisecond,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		if err := c.deliver(ctx, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

// deliver retries msg with growing pauses until Handle accepts it. The reader is not advanced past a
// message that has not been handled, so no later commit can skip it.
func (c *Consumer) deliver(ctx context.Context, msg kafka.Message) error {
	wait := c.backoff
	for !c.Handle(ctx, msg) {
		c.log.Warn("message not handled, retrying", "partition", msg.Partition, "offset", msg.Offset, "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, maxBackoff)
	}
	return nil
}

// Handle processes one message and reports whether its offset may be committed. A failed payment
// write releases the idempotency key so the retry is processed again.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) bool {
	if t := headerValue(msg.Headers, outbox.HeaderEventType); t != orderdom.EventOrderPlaced {
		return true
	}

	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed", "err", err)
		return false
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return true
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderPlaced")
	defer span.End()

	var event orderdom.OrderPlaced
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Error("unmarshal failed", "err", err)
		return true
	}
	span.SetAttributes(attribute.String("order.id", event.OrderID))

	headers := map[string]string{"source": "payment-service"}
	traceparent := headerValue(msg.Headers, tracing.TraceparentHeader)

	p, err := c.svc.Process(msgCtx, event, headers, traceparent)
	if err != nil {
		c.log.Error("payment process failed", "order_id", event.OrderID, "err", err)
		if err := c.idem.Forget(ctx, key); err != nil {
			c.log.Error("idempotency release failed", "key", key, "err", err)
		}
		return false
	}
	c.log.Info("payment recorded", "order_id", event.OrderID, "status", p.Status)
	return true
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}
