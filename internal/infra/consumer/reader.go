package consumer

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -destination=mock/mock_reader.go -package=mock_consumer github.com/RoyceAzure/lab/storefront/internal/infra/consumer Reader

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaReader consumer group 模式，手動 commit
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,

		Dialer: &kafka.Dialer{
			Timeout:   10 * time.Second,
			DualStack: true,
			KeepAlive: 30 * time.Second,
		},

		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Printf("kafka reader error: "+msg, args...)
		}),

		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 5 * time.Second,
	})
}

var _ Reader = (*kafka.Reader)(nil)
