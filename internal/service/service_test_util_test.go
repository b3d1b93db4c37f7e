package service

import (
	"context"
	"errors"
	"sync"

	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
)

// recordingPublisher 記錄發布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []evt_model.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt evt_model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Events() []evt_model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]evt_model.Event, len(p.events))
	copy(out, p.events)
	return out
}

var errBroker = errors.New("broker unavailable")
