package outbox

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewWriter builds the producer the relay publishes through. Messages are hashed by key, so every
// event of one aggregate stays ordered on one partition.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           20 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}
