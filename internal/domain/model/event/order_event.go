package model

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

// OrderPlacedEvent 結帳完成後發布，由庫存回寫 worker 消費
// Items 為訂單項目快照
type OrderPlacedEvent struct {
	BaseEvent
	OrderID   string           `json:"order_id"`
	UserEmail string           `json:"user_email"`
	Items     []model.CartItem `json:"items"`
	Total     decimal.Decimal  `json:"total"`
}

func NewOrderPlacedEvent(order model.Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseEvent: *NewBaseEvent(order.ID, OrderPlacedEventName),
		OrderID:   order.ID,
		UserEmail: order.UserEmail,
		Items:     model.CloneCartItems(order.Items),
		Total:     order.Total,
	}
}

func (e *OrderPlacedEvent) Type() EventType {
	return OrderPlacedEventName
}

type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    string            `json:"order_id"`
	FromStatus model.OrderStatus `json:"from_status"`
	ToStatus   model.OrderStatus `json:"to_status"`
}

func NewOrderStatusChangedEvent(orderID string, from, to model.OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent:  *NewBaseEvent(orderID, OrderStatusChangedEventName),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
	}
}

func (e *OrderStatusChangedEvent) Type() EventType {
	return OrderStatusChangedEventName
}
