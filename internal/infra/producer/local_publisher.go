package producer

import (
	"context"
	"sync"
	"time"

	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	event_handler "github.com/RoyceAzure/lab/storefront/internal/handler/event"
	"github.com/rs/zerolog"
)

// LocalPublisher 不經過 kafka，直接在 process 內非同步交給 handler
// 事件處理與發布者的 request context 脫鉤
type LocalPublisher struct {
	handler event_handler.Handler
	logger  *zerolog.Logger
	// mu 讓 closed 判斷與 wg.Add 對 Close 而言不可分割
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

func NewLocalPublisher(handler event_handler.Handler, logger *zerolog.Logger) *LocalPublisher {
	if handler == nil {
		panic("LocalPublisher dependency handler is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &LocalPublisher{handler: handler, logger: logger}
}

func (p *LocalPublisher) Publish(ctx context.Context, evt evt_model.Event) error {
	if evt == nil {
		return ErrNilEvent
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn().Str("event_type", string(evt.Type())).Str("event_id", evt.GetID()).Msg("publisher closed, event dropped")
		return nil
	}
	p.wg.Add(1)
	p.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer p.wg.Done()
		if err := p.handler.HandleEvent(detached, evt); err != nil {
			p.logger.Error().Err(err).
				Str("event_type", string(evt.Type())).
				Str("event_id", evt.GetID()).
				Msg("failed to handle event")
		}
	}()
	return nil
}

// Close 停止接收新事件，等待處理中的事件完成或逾時
func (p *LocalPublisher) Close(timeout time.Duration) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
