package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

// OrdersNamespace 訂單集合在 key/value 儲存中的固定 key
const OrdersNamespace = "orders"

type IOrderRepository interface {
	// LoadOrders key 不存在回傳空集合，內容無法解析回傳 ErrCorruptData
	LoadOrders(ctx context.Context) ([]model.Order, error)
	SaveOrders(ctx context.Context, orders []model.Order) error
	ResetOrders(ctx context.Context) error
}

// OrderRepo 整個訂單集合以 JSON 存在單一 key，每次異動整包覆寫
type OrderRepo struct {
	kv  IKVStore
	key string
}

func NewOrderRepo(kv IKVStore) *OrderRepo {
	if kv == nil {
		panic("OrderRepo dependency kv is nil")
	}
	return &OrderRepo{kv: kv, key: OrdersNamespace}
}

func (r *OrderRepo) LoadOrders(ctx context.Context) ([]model.Order, error) {
	data, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []model.Order{}, nil
		}
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var orders []model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptData, r.key, err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (r *OrderRepo) SaveOrders(ctx context.Context, orders []model.Order) error {
	if orders == nil {
		orders = []model.Order{}
	}
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to encode orders: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}
	return nil
}

func (r *OrderRepo) ResetOrders(ctx context.Context) error {
	return r.kv.Delete(ctx, r.key)
}

var _ IOrderRepository = (*OrderRepo)(nil)
