package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/memory_repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOrderRepo(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name      string
		stored    []byte
		expectErr error
		expectLen int
	}{
		{name: "missing key", stored: nil, expectLen: 0},
		{name: "empty array", stored: []byte(`[]`), expectLen: 0},
		{name: "null", stored: []byte(`null`), expectLen: 0},
		{name: "corrupt", stored: []byte(`{"id":`), expectErr: repository.ErrCorruptData},
		{name: "one order", stored: []byte(`[{"id":"o1","userEmail":"a@b.c","items":[],"total":"10","date":"2024-01-02T03:04:05Z","status":"Pending"}]`), expectLen: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kv := memory_repo.NewKVStore()
			if tc.stored != nil {
				require.NoError(t, kv.Set(ctx, repository.OrdersNamespace, tc.stored))
			}
			repo := repository.NewOrderRepo(kv)

			orders, err := repo.LoadOrders(ctx)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, orders)
			require.Len(t, orders, tc.expectLen)
		})
	}
}

func TestOrderRepoSaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOrderRepo(memory_repo.NewKVStore())

	order := model.Order{
		ID:        "o1",
		UserEmail: "jane@example.com",
		Items: []model.CartItem{{
			ID: "i1", ProductID: "p1", Name: "Ivory Matte",
			Price: decimal.RequireFromString("24.99"), Quantity: 2,
			Variant: model.ColorVariant{Name: "Ivory", Hex: "#FFFFF0", Stock: 5},
		}},
		Total:  decimal.RequireFromString("49.98"),
		Date:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Status: model.OrderStatusPending,
	}
	require.NoError(t, repo.SaveOrders(ctx, []model.Order{order}))

	orders, err := repo.LoadOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, order.ID, orders[0].ID)
	require.True(t, order.Total.Equal(orders[0].Total))
	require.True(t, order.Date.Equal(orders[0].Date))
	require.Equal(t, order.Items[0].Variant, orders[0].Items[0].Variant)

	require.NoError(t, repo.ResetOrders(ctx))
	orders, err = repo.LoadOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestNewOrderRepoPanicsOnNilStore(t *testing.T) {
	require.Panics(t, func() { repository.NewOrderRepo(nil) })
}
