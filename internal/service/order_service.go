package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// IEventPublisher 發布領域事件，實作可為 kafka 或 process 內
type IEventPublisher interface {
	Publish(ctx context.Context, evt evt_model.Event) error
}

type IOrderService interface {
	AddOrder(ctx context.Context, items []model.CartItem, total decimal.Decimal, userEmail string, address model.ShippingAddress) model.Order
	GetOrdersForUser(email string) []model.Order
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	Orders() []model.Order
	Stats(productCount int64) DashboardStats
}

type DashboardStats struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalOrders    int             `json:"totalOrders"`
	TotalCustomers int             `json:"totalCustomers"`
	TotalProducts  int64           `json:"totalProducts"`
	RecentOrders   []model.Order   `json:"recentOrders"`
}

// OrderService 持有全部訂單，啟動時載入一次，每次異動整包寫回
type OrderService struct {
	mu        sync.Mutex
	orders    []model.Order
	repo      repository.IOrderRepository
	publisher IEventPublisher
	logger    *zerolog.Logger
	now       func() time.Time
}

// NewOrderService 載入既有訂單
// 資料無法解析時刪除後以空集合啟動
func NewOrderService(ctx context.Context, repo repository.IOrderRepository, publisher IEventPublisher, logger *zerolog.Logger) *OrderService {
	if repo == nil || publisher == nil {
		panic("OrderService dependency is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &OrderService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	s.orders = s.load(ctx)
	return s
}

func (s *OrderService) load(ctx context.Context) []model.Order {
	orders, err := s.repo.LoadOrders(ctx)
	if err == nil {
		s.logger.Info().Int("orders", len(orders)).Msg("orders loaded")
		return orders
	}

	if errors.Is(err, repository.ErrCorruptData) {
		s.logger.Error().Err(err).Msg("stored orders are corrupt, resetting")
		if rerr := s.repo.ResetOrders(ctx); rerr != nil {
			s.logger.Error().Err(rerr).Msg("failed to reset corrupt orders")
		}
	} else {
		s.logger.Error().Err(err).Msg("failed to load orders, starting empty")
	}
	return []model.Order{}
}

// persistLocked 持有 mu 時呼叫，失敗只記錄
func (s *OrderService) persistLocked(ctx context.Context) {
	if err := s.repo.SaveOrders(ctx, s.orders); err != nil {
		s.logger.Error().Err(err).Int("orders", len(s.orders)).Msg("failed to persist orders")
	}
}

// AddOrder 建立 Pending 訂單並發布 OrderPlaced
// 儲存或發布失敗只記錄，不影響回傳的訂單
func (s *OrderService) AddOrder(ctx context.Context, items []model.CartItem, total decimal.Decimal, userEmail string, address model.ShippingAddress) model.Order {
	order := model.Order{
		ID:              uuid.New().String(),
		UserEmail:       userEmail,
		ShippingAddress: address,
		Items:           model.CloneCartItems(items),
		Total:           total,
		Date:            s.now().UTC(),
		Status:          model.OrderStatusPending,
	}
	if order.Items == nil {
		order.Items = []model.CartItem{}
	}

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.persistLocked(ctx)
	s.mu.Unlock()

	if err := s.publisher.Publish(ctx, evt_model.NewOrderPlacedEvent(order)); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order placed event")
	}
	return order.Clone()
}

// GetOrdersForUser email 完全相符，保持建立順序
func (s *OrderService) GetOrdersForUser(email string) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.orders {
		if o.UserEmail == email {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidOrderStatus, status)
	}

	s.mu.Lock()
	i := s.indexOf(orderID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	from := s.orders[i].Status
	if !from.CanTransitionTo(status) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidOrderStatus, from, status)
	}
	s.orders[i].Status = status
	s.persistLocked(ctx)
	s.mu.Unlock()

	if err := s.publisher.Publish(ctx, evt_model.NewOrderStatusChangedEvent(orderID, from, status)); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("failed to publish order status changed event")
	}
	return nil
}

func (s *OrderService) indexOf(orderID string) int {
	for i, o := range s.orders {
		if o.ID == orderID {
			return i
		}
	}
	return -1
}

func (s *OrderService) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Stats 營收只計算 Delivered 訂單
func (s *OrderService) Stats(productCount int64) DashboardStats {
	orders := s.Orders()

	revenue := decimal.Zero
	customers := make(map[string]struct{})
	for _, o := range orders {
		if o.Status == model.OrderStatusDelivered {
			revenue = revenue.Add(o.Total)
		}
		customers[o.UserEmail] = struct{}{}
	}

	SortOrdersByDateDesc(orders)
	recent := orders
	if len(recent) > constants.RecentOrdersLimit {
		recent = recent[:constants.RecentOrdersLimit]
	}

	return DashboardStats{
		TotalRevenue:   revenue,
		TotalOrders:    len(orders),
		TotalCustomers: len(customers),
		TotalProducts:  productCount,
		RecentOrders:   recent,
	}
}

// SortOrdersByDateDesc 新的在前
func SortOrdersByDateDesc(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
}

var _ IOrderService = (*OrderService)(nil)
