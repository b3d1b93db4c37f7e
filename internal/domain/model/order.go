package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
)

var orderStatuses = []OrderStatus{OrderStatusPending, OrderStatusShipped, OrderStatusDelivered}

// ParseOrderStatus 只接受三種已知狀態
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range orderStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, s)
}

func (s OrderStatus) Valid() bool {
	_, err := ParseOrderStatus(string(s))
	return err == nil
}

// CanTransitionTo 任何狀態之間皆可互相轉換，Delivered 不強制為終態
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s.Valid() && next.Valid()
}

// CartItem 購物車項目
// Name/Price/ImageURL/Variant 皆為加入時的快照，不隨商品異動
type CartItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Variant   ColorVariant    `json:"variant"`
	ImageURL  string          `json:"imageUrl"`
	ImageHint string          `json:"imageHint"`
}

func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

func CloneCartItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}

// Order 結帳後的訂單
// Items 為購物車項目的複本，商品之後被修改或刪除仍可讀取
type Order struct {
	ID              string          `json:"id"`
	UserEmail       string          `json:"userEmail"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Items           []CartItem      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Date            time.Time       `json:"date"`
	Status          OrderStatus     `json:"status"`
}

type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

func (o Order) Clone() Order {
	o.Items = CloneCartItems(o.Items)
	return o
}
