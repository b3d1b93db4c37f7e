package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/segmentio/kafka-go"
)

const EventTypeHeader = "event_type"

var ErrNilEvent = errors.New("event is nil")

// OrderEventProducer 發布訂單事件
// topic: 由 writer 建立時設置
// key: order id
type OrderEventProducer struct {
	writer Writer
}

func NewOrderEventProducer(writer Writer) *OrderEventProducer {
	if writer == nil {
		panic("OrderEventProducer dependency writer is nil")
	}
	return &OrderEventProducer{writer: writer}
}

func (p *OrderEventProducer) Publish(ctx context.Context, evt evt_model.Event) error {
	msg, err := p.convertToMessage(evt)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event %s: %w", evt.Type(), evt.GetID(), err)
	}
	return nil
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

func (p *OrderEventProducer) convertToMessage(evt evt_model.Event) (kafka.Message, error) {
	if evt == nil {
		return kafka.Message{}, ErrNilEvent
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(evt.GetAggregateID()),
		Value: value,
		Headers: []kafka.Header{
			{
				Key:   EventTypeHeader,
				Value: []byte(evt.Type()),
			},
		},
	}, nil
}
