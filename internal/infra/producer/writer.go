package producer

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -destination=mock/mock_writer.go -package=mock_producer github.com/RoyceAzure/lab/storefront/internal/infra/producer Writer

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter 同步寫入，以 message key 做 hash 分區
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Printf("kafka producer error: "+msg, args...)
		}),
	}
}

var _ Writer = (*kafka.Writer)(nil)
