package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/rs/zerolog"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCheckout = errors.New("invalid checkout details")
)

type ICartService interface {
	// Cart 取得 session 的購物車，不存在時建立
	Cart(sessionID string) *Cart
	AddToCart(ctx context.Context, sessionID, productID, variantHex string, quantity int) (model.CartItem, error)
	UpdateQuantity(sessionID, itemID string, quantity int) error
	RemoveFromCart(sessionID, itemID string)
	ClearCart(sessionID string)
	Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (model.Order, error)
}

type CheckoutRequest struct {
	Email   string
	Name    string
	Address string
	City    string
	Zip     string
}

func (r CheckoutRequest) validate() error {
	missing := []string{}
	if !strings.Contains(r.Email, "@") {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(r.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(r.Zip) == "" {
		missing = append(missing, "zip")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCheckout, strings.Join(missing, ", "))
	}
	return nil
}

type cartSession struct {
	cart     *Cart
	lastSeen time.Time
}

// CartService session id -> Cart，閒置超過 ttl 的購物車會被清除
type CartService struct {
	mu           sync.RWMutex
	sessions     map[string]*cartSession
	ttl          time.Duration
	productRepo  repository.IProductRepository
	orderService IOrderService
	logger       *zerolog.Logger
	now          func() time.Time
}

func NewCartService(productRepo repository.IProductRepository, orderService IOrderService, ttl time.Duration, logger *zerolog.Logger) *CartService {
	if productRepo == nil || orderService == nil {
		panic("CartService dependency is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CartService{
		sessions:     make(map[string]*cartSession),
		ttl:          ttl,
		productRepo:  productRepo,
		orderService: orderService,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *CartService) Cart(sessionID string) *Cart {
	now := s.now()

	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		s.mu.Lock()
		sess.lastSeen = now
		s.mu.Unlock()
		return sess.cart
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; !ok {
		sess = &cartSession{cart: NewCart()}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = now
	return sess.cart
}

// AddToCart 讀取商品最新資料作為快照，僅限上架中的商品
func (s *CartService) AddToCart(ctx context.Context, sessionID, productID, variantHex string, quantity int) (model.CartItem, error) {
	product, err := s.productRepo.GetProduct(ctx, productID)
	if err != nil {
		return model.CartItem{}, err
	}
	if product == nil || !product.IsActive {
		return model.CartItem{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	i := product.FindVariant(variantHex)
	if i < 0 {
		return model.CartItem{}, fmt.Errorf("%w: %s %s", ErrVariantNotFound, productID, variantHex)
	}
	return s.Cart(sessionID).Add(product, product.Variants[i], quantity)
}

func (s *CartService) UpdateQuantity(sessionID, itemID string, quantity int) error {
	return s.Cart(sessionID).UpdateQuantity(itemID, quantity)
}

func (s *CartService) RemoveFromCart(sessionID, itemID string) {
	s.Cart(sessionID).Remove(itemID)
}

func (s *CartService) ClearCart(sessionID string) {
	s.Cart(sessionID).Clear()
}

// Checkout 建立訂單後清空購物車
func (s *CartService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (model.Order, error) {
	if err := req.validate(); err != nil {
		return model.Order{}, err
	}
	cart := s.Cart(sessionID)
	items, total := cart.TakeAll()
	if len(items) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	order := s.orderService.AddOrder(ctx, items, total, strings.TrimSpace(req.Email), model.ShippingAddress{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Zip:     req.Zip,
	})
	cart.Notify(NoticeInfo, "Order Placed", fmt.Sprintf("Your order %s has been placed.", order.ID))

	s.logger.Info().
		Str("session_id", sessionID).
		Str("order_id", order.ID).
		Int("items", len(items)).
		Str("total", total.StringFixed(2)).
		Msg("checkout completed")
	return order, nil
}

// Sweep 清除閒置過久的購物車，回傳清除數量
func (s *CartService) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	deadline := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(deadline) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor 定期 Sweep，直到 ctx 結束
func (s *CartService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("expired carts removed")
			}
		}
	}
}

func (s *CartService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ ICartService = (*CartService)(nil)
