package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/memory_repo"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// failingKV 寫入一律失敗
type failingKV struct {
	*memory_repo.KVStore
}

func (f failingKV) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func sampleItems() []model.CartItem {
	return []model.CartItem{
		{ID: "i1", ProductID: "p1", Name: "Paint p1", Price: decimal.RequireFromString("10"), Quantity: 2, Variant: ivory},
	}
}

func sampleAddress() model.ShippingAddress {
	return model.ShippingAddress{Name: "Jo", Address: "1 Main St", City: "Springfield", Zip: "12345"}
}

func TestOrderServiceAddOrderPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := memory_repo.NewKVStore()
	pub := &recordingPublisher{}

	svc := NewOrderService(ctx, repository.NewOrderRepo(kv), pub, nil)
	order := svc.AddOrder(ctx, sampleItems(), decimal.RequireFromString("20"), "jo@example.com", sampleAddress())
	require.NotEmpty(t, order.ID)
	require.Equal(t, model.OrderStatusPending, order.Status)

	events := pub.Events()
	require.Len(t, events, 1)
	placed, ok := events[0].(*evt_model.OrderPlacedEvent)
	require.True(t, ok)
	require.Equal(t, order.ID, placed.OrderID)
	require.Len(t, placed.Items, 1)

	restarted := NewOrderService(ctx, repository.NewOrderRepo(kv), pub, nil)
	orders := restarted.GetOrdersForUser("jo@example.com")
	require.Len(t, orders, 1)
	require.Equal(t, order.ID, orders[0].ID)
	require.True(t, order.Total.Equal(orders[0].Total))
	require.Equal(t, model.OrderStatusPending, orders[0].Status)
	require.Equal(t, "jo@example.com", orders[0].UserEmail)
	require.Equal(t, sampleAddress(), orders[0].ShippingAddress)

	want := sampleItems()
	require.Len(t, orders[0].Items, len(want))
	for i, item := range orders[0].Items {
		require.Equal(t, want[i].ID, item.ID)
		require.Equal(t, want[i].ProductID, item.ProductID)
		require.Equal(t, want[i].Name, item.Name)
		require.True(t, want[i].Price.Equal(item.Price), "price %s != %s", want[i].Price, item.Price)
		require.Equal(t, want[i].Quantity, item.Quantity)
		require.Equal(t, want[i].Variant, item.Variant)
	}
}

func TestOrderServiceCorruptDataIsReset(t *testing.T) {
	ctx := context.Background()
	kv := memory_repo.NewKVStore()
	require.NoError(t, kv.Set(ctx, repository.OrdersNamespace, []byte("{broken")))

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	svc := NewOrderService(ctx, repository.NewOrderRepo(kv), &recordingPublisher{}, &logger)
	require.Empty(t, svc.Orders())
	require.Contains(t, buf.String(), "stored orders are corrupt")

	_, err := kv.Get(ctx, repository.OrdersNamespace)
	require.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestOrderServiceFailuresOnlyLogged(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	pub := &recordingPublisher{err: errBroker}

	svc := NewOrderService(ctx, repository.NewOrderRepo(failingKV{memory_repo.NewKVStore()}), pub, &logger)
	order := svc.AddOrder(ctx, sampleItems(), decimal.RequireFromString("20"), "jo@example.com", sampleAddress())
	require.NotEmpty(t, order.ID)
	require.Len(t, svc.Orders(), 1)
	require.Contains(t, buf.String(), "failed to persist orders")
	require.Contains(t, buf.String(), "failed to publish order placed event")
}

func TestOrderServiceReturnsCopies(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(ctx, repository.NewOrderRepo(memory_repo.NewKVStore()), &recordingPublisher{}, nil)
	items := sampleItems()
	svc.AddOrder(ctx, items, decimal.RequireFromString("20"), "jo@example.com", sampleAddress())

	items[0].Quantity = 99
	got := svc.Orders()
	require.Equal(t, 2, got[0].Items[0].Quantity)
	got[0].Items[0].Quantity = 42
	require.Equal(t, 2, svc.Orders()[0].Items[0].Quantity)
}

func TestOrderServiceGetOrdersForUser(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(ctx, repository.NewOrderRepo(memory_repo.NewKVStore()), &recordingPublisher{}, nil)
	a := svc.AddOrder(ctx, sampleItems(), decimal.RequireFromString("1"), "a@example.com", sampleAddress())
	svc.AddOrder(ctx, sampleItems(), decimal.RequireFromString("2"), "b@example.com", sampleAddress())
	c := svc.AddOrder(ctx, sampleItems(), decimal.RequireFromString("3"), "a@example.com", sampleAddress())

	orders := svc.GetOrdersForUser("a@example.com")
	require.Len(t, orders, 2)
	require.Equal(t, a.ID, orders[0].ID)
	require.Equal(t, c.ID, orders[1].ID)

	require.Empty(t, svc.GetOrdersForUser("A@example.com"))
	require.NotNil(t, svc.GetOrdersForUser("nobody@example.com"))
}

func TestOrderServiceUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	kv := memory_repo.NewKVStore()

	testCases := []struct {
		name      string
		orderID   func(id string) string
		status    model.OrderStatus
		expectErr error
	}{
		{name: "ship", orderID: func(id string) string { return id }, status: model.OrderStatusShipped},
		{name: "deliver", orderID: func(id string) string { return id }, status: model.OrderStatusDelivered},
		{name: "back to pending", orderID: func(id string) string { return id }, status: model.OrderStatusPending},
		{name: "unknown status", orderID: func(id string) string { return id }, status: "Lost", expectErr: model.ErrInvalidOrderStatus},
		{name: "missing order", orderID: func(string) string { return "missing" }, status: model.OrderStatusShipped, expectErr: ErrOrderNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc := NewOrderService(ctx, repository.NewOrderRepo(kv), pub, nil)
			order := svc.AddOrder(ctx, sampleItems(), decimal.RequireFromString("20"), "jo@example.com", sampleAddress())

			err := svc.UpdateOrderStatus(ctx, tc.orderID(order.ID), tc.status)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
				require.Len(t, pub.Events(), 1)
				return
			}
			require.NoError(t, err)

			reloaded := NewOrderService(ctx, repository.NewOrderRepo(kv), pub, nil)
			for _, o := range reloaded.Orders() {
				if o.ID == order.ID {
					require.Equal(t, tc.status, o.Status)
				}
			}

			events := pub.Events()
			require.Len(t, events, 2)
			changed, ok := events[1].(*evt_model.OrderStatusChangedEvent)
			require.True(t, ok)
			require.Equal(t, model.OrderStatusPending, changed.FromStatus)
			require.Equal(t, tc.status, changed.ToStatus)
		})
	}
}

func TestOrderServiceStats(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(ctx, repository.NewOrderRepo(memory_repo.NewKVStore()), &recordingPublisher{}, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}

	var ids []string
	for i, email := range []string{"a@x.com", "b@x.com", "a@x.com", "c@x.com", "d@x.com", "a@x.com"} {
		o := svc.AddOrder(ctx, sampleItems(), decimal.NewFromInt(int64(10*(i+1))), email, sampleAddress())
		ids = append(ids, o.ID)
	}
	require.NoError(t, svc.UpdateOrderStatus(ctx, ids[0], model.OrderStatusDelivered))
	require.NoError(t, svc.UpdateOrderStatus(ctx, ids[2], model.OrderStatusDelivered))
	require.NoError(t, svc.UpdateOrderStatus(ctx, ids[3], model.OrderStatusShipped))

	stats := svc.Stats(7)
	require.Equal(t, "40", stats.TotalRevenue.String())
	require.Equal(t, 6, stats.TotalOrders)
	require.Equal(t, 4, stats.TotalCustomers)
	require.Equal(t, int64(7), stats.TotalProducts)
	require.Len(t, stats.RecentOrders, 5)
	require.Equal(t, ids[5], stats.RecentOrders[0].ID)
	require.Equal(t, ids[1], stats.RecentOrders[4].ID)
}

func TestOrderServiceStatsEmpty(t *testing.T) {
	svc := NewOrderService(context.Background(), repository.NewOrderRepo(memory_repo.NewKVStore()), &recordingPublisher{}, nil)
	stats := svc.Stats(0)
	require.True(t, stats.TotalRevenue.IsZero())
	require.Zero(t, stats.TotalOrders)
	require.Empty(t, stats.RecentOrders)
}
