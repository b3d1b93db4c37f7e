package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/memory_repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CartServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	productRepo *memory_repo.ProductRepo
	publisher   *recordingPublisher
	orders      *OrderService
	svc         *CartService
	clock       time.Time
}

func (s *CartServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.productRepo = memory_repo.NewProductRepo()
	s.publisher = &recordingPublisher{}
	s.orders = NewOrderService(s.ctx, repository.NewOrderRepo(memory_repo.NewKVStore()), s.publisher, nil)
	s.svc = NewCartService(s.productRepo, s.orders, time.Hour, nil)
	s.clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.svc.now = func() time.Time { return s.clock }

	s.Require().NoError(s.productRepo.CreateProduct(s.ctx, testProduct("p1", "10.00", ivory, navy)))
	inactive := testProduct("p2", "5.00", ivory)
	inactive.IsActive = false
	s.Require().NoError(s.productRepo.CreateProduct(s.ctx, inactive))
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}

func (s *CartServiceTestSuite) validCheckout() CheckoutRequest {
	return CheckoutRequest{Email: "jo@example.com", Name: "Jo", Address: "1 Main St", City: "Springfield", Zip: "12345"}
}

func (s *CartServiceTestSuite) TestAddToCart() {
	item, err := s.svc.AddToCart(s.ctx, "sid-1", "p1", "#000080", 2)
	s.Require().NoError(err)
	s.Equal("Navy", item.Variant.Name)
	s.Equal(2, s.svc.Cart("sid-1").Count())

	// 不同 session 互不影響
	s.Zero(s.svc.Cart("sid-2").Count())
}

func (s *CartServiceTestSuite) TestAddToCartVariantHexIsCaseInsensitive() {
	_, err := s.svc.AddToCart(s.ctx, "sid-1", "p1", "#fffff0", 1)
	s.Require().NoError(err)
}

func (s *CartServiceTestSuite) TestAddToCartErrors() {
	testCases := []struct {
		name      string
		productID string
		hex       string
		qty       int
		expectErr error
	}{
		{name: "missing product", productID: "nope", hex: "#FFFFF0", qty: 1, expectErr: ErrProductNotFound},
		{name: "inactive product", productID: "p2", hex: "#FFFFF0", qty: 1, expectErr: ErrProductNotFound},
		{name: "missing variant", productID: "p1", hex: "#123456", qty: 1, expectErr: ErrVariantNotFound},
		{name: "over stock", productID: "p1", hex: "#000080", qty: 3, expectErr: ErrInsufficientStock},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.svc.AddToCart(s.ctx, "sid-err", tc.productID, tc.hex, tc.qty)
			s.ErrorIs(err, tc.expectErr)
		})
	}
}

func (s *CartServiceTestSuite) TestCheckout() {
	_, err := s.svc.AddToCart(s.ctx, "sid-1", "p1", "#FFFFF0", 3)
	s.Require().NoError(err)
	s.svc.Cart("sid-1").DrainNotices()

	order, err := s.svc.Checkout(s.ctx, "sid-1", s.validCheckout())
	s.Require().NoError(err)
	s.Equal(model.OrderStatusPending, order.Status)
	s.Equal("jo@example.com", order.UserEmail)
	s.Equal("30", order.Total.String())
	s.Len(order.Items, 1)

	cart := s.svc.Cart("sid-1")
	s.Zero(cart.Count())
	notices := cart.DrainNotices()
	s.Require().Len(notices, 1)
	s.Equal("Order Placed", notices[0].Title)

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(evt_model.OrderPlacedEventName, events[0].Type())

	s.Len(s.orders.GetOrdersForUser("jo@example.com"), 1)
}

// interleavingOrders 建立訂單途中同一 session 又加入商品
type interleavingOrders struct {
	*OrderService
	during func()
}

func (o *interleavingOrders) AddOrder(ctx context.Context, items []model.CartItem, total decimal.Decimal, userEmail string, address model.ShippingAddress) model.Order {
	o.during()
	return o.OrderService.AddOrder(ctx, items, total, userEmail, address)
}

func (s *CartServiceTestSuite) TestCheckoutKeepsItemsAddedWhilePlacingOrder() {
	orders := &interleavingOrders{OrderService: s.orders}
	svc := NewCartService(s.productRepo, orders, time.Hour, nil)
	orders.during = func() {
		_, err := svc.AddToCart(s.ctx, "sid-1", "p1", "#000080", 1)
		s.Require().NoError(err)
	}

	_, err := svc.AddToCart(s.ctx, "sid-1", "p1", "#FFFFF0", 2)
	s.Require().NoError(err)

	order, err := svc.Checkout(s.ctx, "sid-1", s.validCheckout())
	s.Require().NoError(err)
	s.Require().Len(order.Items, 1)
	s.Equal("Ivory", order.Items[0].Variant.Name)
	s.Equal("20", order.Total.String())

	left := svc.Cart("sid-1").Items()
	s.Require().Len(left, 1)
	s.Equal("Navy", left[0].Variant.Name)
	s.Equal(1, left[0].Quantity)
}

func (s *CartServiceTestSuite) TestCheckoutEmptyCart() {
	_, err := s.svc.Checkout(s.ctx, "sid-empty", s.validCheckout())
	s.ErrorIs(err, ErrEmptyCart)
	s.Empty(s.orders.Orders())
	s.Empty(s.publisher.Events())
}

func (s *CartServiceTestSuite) TestCheckoutInvalidDetails() {
	_, err := s.svc.AddToCart(s.ctx, "sid-1", "p1", "#FFFFF0", 1)
	s.Require().NoError(err)

	req := s.validCheckout()
	req.Email = "not-an-email"
	req.Zip = " "
	_, err = s.svc.Checkout(s.ctx, "sid-1", req)
	s.ErrorIs(err, ErrInvalidCheckout)
	s.ErrorContains(err, "email")
	s.ErrorContains(err, "zip")
	s.Equal(1, s.svc.Cart("sid-1").Count())
}

func (s *CartServiceTestSuite) TestSweep() {
	s.svc.Cart("old")
	s.clock = s.clock.Add(50 * time.Minute)
	s.svc.Cart("fresh")
	s.clock = s.clock.Add(20 * time.Minute)

	s.Equal(1, s.svc.Sweep())
	s.Equal(1, s.svc.SessionCount())

	// 被清除的 session 會拿到新的空購物車
	s.Zero(s.svc.Cart("old").Count())
	s.Equal(2, s.svc.SessionCount())
}

func (s *CartServiceTestSuite) TestSweepDisabled() {
	svc := NewCartService(s.productRepo, s.orders, 0, nil)
	svc.Cart("a")
	s.Zero(svc.Sweep())
	s.Equal(1, svc.SessionCount())
}

func (s *CartServiceTestSuite) TestRunJanitorStopsWithContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		s.svc.RunJanitor(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("janitor did not stop")
	}
}

func (s *CartServiceTestSuite) TestNilDependencyPanics() {
	s.Panics(func() { NewCartService(nil, s.orders, time.Hour, nil) })
	s.Panics(func() { NewCartService(s.productRepo, nil, time.Hour, nil) })
}
