package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	event_handler "github.com/RoyceAzure/lab/storefront/internal/handler/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var (
	ErrConsumerClosed     = errors.New("consumer closed")
	ErrConsumerRunning    = errors.New("consumer already running")
	ErrUnknownEventFormat = errors.New("unknown event format")
)

type IBaseConsumer interface {
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// OrderEventConsumer
// topic: order-events
// 分區: order id
// 讀取 -> 轉換 -> handler -> commit，無法解析的訊息記錄後直接 commit
type OrderEventConsumer struct {
	reader    Reader
	handler   event_handler.Handler
	logger    *zerolog.Logger
	running   atomic.Bool
	closeOnce sync.Once
	closeChan chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewOrderEventConsumer(reader Reader, orderEventHandler event_handler.Handler, logger *zerolog.Logger) *OrderEventConsumer {
	if reader == nil || orderEventHandler == nil {
		panic("OrderEventConsumer dependency is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OrderEventConsumer{
		reader:    reader,
		handler:   orderEventHandler,
		logger:    logger,
		closeChan: make(chan struct{}),
	}
}

func (c *OrderEventConsumer) checkIsClosed() bool {
	select {
	case <-c.closeChan:
		return true
	default:
		return false
	}
}

func (c *OrderEventConsumer) Start(ctx context.Context) error {
	if c.checkIsClosed() {
		return ErrConsumerClosed
	}
	if !c.running.CompareAndSwap(false, true) {
		return ErrConsumerRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(loopCtx)
	return nil
}

func (c *OrderEventConsumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error().Err(err).Msg("failed to fetch order event")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// 已取出的訊息不受停止影響，處理完並 commit 才離開，避免重啟後重複扣庫存
		msgCtx := context.WithoutCancel(ctx)
		c.process(msgCtx, msg)

		if err := c.reader.CommitMessages(msgCtx, msg); err != nil {
			c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("failed to commit order event")
		}
	}
}

func (c *OrderEventConsumer) process(ctx context.Context, msg kafka.Message) {
	evt, err := c.transformData(msg)
	if err != nil {
		c.logger.Error().Err(err).
			Str("key", string(msg.Key)).
			Int64("offset", msg.Offset).
			Msg("skip undecodable order event")
		return
	}

	if err := c.handler.HandleEvent(ctx, evt); err != nil {
		c.logger.Error().Err(err).
			Str("event_type", string(evt.Type())).
			Str("event_id", evt.GetID()).
			Msg("failed to handle order event")
	}
}

func (c *OrderEventConsumer) transformData(msg kafka.Message) (evt_model.Event, error) {
	var eventType evt_model.EventType
	for _, header := range msg.Headers {
		if header.Key == producer.EventTypeHeader {
			eventType = evt_model.EventType(header.Value)
			break
		}
	}

	var evt evt_model.Event
	switch eventType {
	case evt_model.OrderPlacedEventName:
		e := &evt_model.OrderPlacedEvent{}
		if err := json.Unmarshal(msg.Value, e); err != nil {
			return nil, err
		}
		evt = e
	case evt_model.OrderStatusChangedEventName:
		e := &evt_model.OrderStatusChangedEvent{}
		if err := json.Unmarshal(msg.Value, e); err != nil {
			return nil, err
		}
		evt = e
	default:
		return nil, ErrUnknownEventFormat
	}
	return evt, nil
}

// Stop 停止讀取並等待處理中的訊息完成
func (c *OrderEventConsumer) Stop(timeout time.Duration) error {
	var stopErr error
	c.closeOnce.Do(func() {
		close(c.closeChan)
		if c.cancel != nil {
			c.cancel()
		}

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(timeout):
			stopErr = context.DeadlineExceeded
		}

		if err := c.reader.Close(); err != nil {
			stopErr = errors.Join(stopErr, err)
		}
	})
	return stopErr
}

var _ IBaseConsumer = (*OrderEventConsumer)(nil)
