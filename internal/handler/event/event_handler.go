package handler

import (
	"context"
	"errors"

	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
)

type HandlerError error

var (
	ErrHandlerNotFound    HandlerError = errors.New("handler not found")
	errUnknownEventFormat HandlerError = errors.New("unknown event format")
)

type HandlerFunc func(ctx context.Context, evt evt_model.Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt evt_model.Event) error {
	return f(ctx, evt)
}

type Handler interface {
	HandleEvent(ctx context.Context, evt evt_model.Event) error
}

type HandlerDispatcher struct {
	handlers map[evt_model.EventType]Handler
}

func NewHandlerDispatcher(handlers map[evt_model.EventType]Handler) *HandlerDispatcher {
	return &HandlerDispatcher{handlers: handlers}
}

func (d *HandlerDispatcher) HandleEvent(ctx context.Context, evt evt_model.Event) error {
	if evt == nil {
		return errUnknownEventFormat
	}
	handler, ok := d.handlers[evt.Type()]
	if !ok {
		return ErrHandlerNotFound
	}
	return handler.HandleEvent(ctx, evt)
}

// NewOrderEventHandlerDispatcher 訂單事件 -> 處理函式
func NewOrderEventHandlerDispatcher(orderEventHandler *OrderEventHandler) Handler {
	return NewHandlerDispatcher(map[evt_model.EventType]Handler{
		evt_model.OrderPlacedEventName:        HandlerFunc(orderEventHandler.HandleOrderPlaced),
		evt_model.OrderStatusChangedEventName: HandlerFunc(orderEventHandler.HandleOrderStatusChanged),
	})
}
