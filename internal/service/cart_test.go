package service

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testProduct(id string, price string, variants ...model.ColorVariant) *model.Product {
	return &model.Product{
		ID:        id,
		Name:      "Paint " + id,
		Price:     decimal.RequireFromString(price),
		ImageURL:  "/images/" + id,
		ImageHint: "paint can",
		Variants:  variants,
		Stock:     model.SumVariantStock(variants),
		IsActive:  true,
		Version:   1,
	}
}

var (
	ivory = model.ColorVariant{Name: "Ivory", Hex: "#FFFFF0", Stock: 5}
	navy  = model.ColorVariant{Name: "Navy", Hex: "#000080", Stock: 2}
)

func TestCartAdd(t *testing.T) {
	testCases := []struct {
		name        string
		adds        []int
		expectErr   []error
		expectQty   int
		expectItems int
	}{
		{name: "single add", adds: []int{3}, expectErr: []error{nil}, expectQty: 3, expectItems: 1},
		{name: "merge same variant", adds: []int{2, 3}, expectErr: []error{nil, nil}, expectQty: 5, expectItems: 1},
		{name: "merge exceeding stock leaves cart unchanged", adds: []int{3, 3}, expectErr: []error{nil, ErrInsufficientStock}, expectQty: 3, expectItems: 1},
		{name: "new item exceeding stock", adds: []int{6}, expectErr: []error{ErrInsufficientStock}, expectQty: 0, expectItems: 0},
		{name: "zero quantity", adds: []int{0}, expectErr: []error{ErrInvalidQuantity}, expectQty: 0, expectItems: 0},
		{name: "negative quantity", adds: []int{-1}, expectErr: []error{ErrInvalidQuantity}, expectQty: 0, expectItems: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cart := NewCart()
			p := testProduct("p1", "10.00", ivory)
			for i, q := range tc.adds {
				_, err := cart.Add(p, ivory, q)
				if tc.expectErr[i] == nil {
					require.NoError(t, err)
				} else {
					require.ErrorIs(t, err, tc.expectErr[i])
				}
			}
			require.Equal(t, tc.expectQty, cart.Count())
			require.Len(t, cart.Items(), tc.expectItems)
		})
	}
}

func TestCartAddInsufficientStockDetails(t *testing.T) {
	cart := NewCart()
	p := testProduct("p1", "10.00", ivory)
	_, err := cart.Add(p, ivory, 3)
	require.NoError(t, err)
	cart.DrainNotices()

	_, err = cart.Add(p, ivory, 3)
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, 6, stockErr.Requested)
	require.Equal(t, 5, stockErr.Available)
	require.Equal(t, "p1", stockErr.ProductID)

	notices := cart.DrainNotices()
	require.Len(t, notices, 1)
	require.Equal(t, "Not Enough Stock", notices[0].Title)
	require.Equal(t, NoticeDestructive, notices[0].Level)
}

func TestCartAddSnapshotAndNotice(t *testing.T) {
	cart := NewCart()
	p := testProduct("p1", "24.99", ivory, navy)

	item, err := cart.Add(p, navy, 2)
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, p.Name, item.Name)
	require.True(t, p.Price.Equal(item.Price))
	require.Equal(t, navy, item.Variant)

	// 商品之後被修改不影響購物車快照
	p.Name = "Renamed"
	p.Price = decimal.RequireFromString("1")
	require.Equal(t, "Paint p1", cart.Items()[0].Name)

	notices := cart.DrainNotices()
	require.Len(t, notices, 1)
	require.Equal(t, "Added to Cart", notices[0].Title)
	require.Equal(t, "2 x Paint p1 (Navy) has been added to your cart.", notices[0].Description)
	require.Empty(t, cart.DrainNotices())
}

func TestCartDifferentVariantsAreSeparateLines(t *testing.T) {
	cart := NewCart()
	p := testProduct("p1", "10", ivory, navy)
	_, err := cart.Add(p, ivory, 1)
	require.NoError(t, err)
	_, err = cart.Add(p, navy, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items(), 2)
}

func TestCartRemove(t *testing.T) {
	cart := NewCart()
	p := testProduct("p1", "10", ivory)
	item, err := cart.Add(p, ivory, 2)
	require.NoError(t, err)

	cart.Remove("missing")
	require.Len(t, cart.Items(), 1)

	cart.Remove(item.ID)
	require.Empty(t, cart.Items())
	cart.Remove(item.ID)
	require.Empty(t, cart.Items())
	require.Zero(t, cart.Count())
	require.True(t, cart.Total().IsZero())
}

func TestCartUpdateQuantity(t *testing.T) {
	testCases := []struct {
		name      string
		quantity  int
		expectQty int
		expectLen int
		expectErr error
	}{
		{name: "set exactly", quantity: 4, expectQty: 4, expectLen: 1},
		{name: "zero removes", quantity: 0, expectQty: 0, expectLen: 0},
		{name: "negative removes", quantity: -2, expectQty: 0, expectLen: 0},
		{name: "clamped to stock", quantity: 9, expectQty: 5, expectLen: 1, expectErr: ErrInsufficientStock},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cart := NewCart()
			item, err := cart.Add(testProduct("p1", "10", ivory), ivory, 2)
			require.NoError(t, err)

			err = cart.UpdateQuantity(item.ID, tc.quantity)
			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tc.expectQty, cart.Count())
			require.Len(t, cart.Items(), tc.expectLen)
		})
	}
}

func TestCartUpdateQuantityMissingItem(t *testing.T) {
	cart := NewCart()
	_, err := cart.Add(testProduct("p1", "10", ivory), ivory, 2)
	require.NoError(t, err)

	err = cart.UpdateQuantity("missing", 3)
	require.ErrorIs(t, err, ErrCartItemNotFound)
	require.Equal(t, 2, cart.Count())
}

func TestCartClear(t *testing.T) {
	cart := NewCart()
	_, err := cart.Add(testProduct("p1", "10", ivory), ivory, 2)
	require.NoError(t, err)
	cart.Clear()
	require.Empty(t, cart.Items())
	require.Zero(t, cart.Count())
}

func TestCartTakeAll(t *testing.T) {
	cart := NewCart()
	_, err := cart.Add(testProduct("p1", "10", ivory), ivory, 2)
	require.NoError(t, err)

	items, total := cart.TakeAll()
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, "20", total.String())
	require.Empty(t, cart.Items())

	// 取出後再加入的項目不受影響
	_, err = cart.Add(testProduct("p1", "10", ivory), ivory, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, 1, cart.Count())
}

// 任意操作序列後 Count/Total 皆等於項目重新加總，且數量不超過 variant 庫存
func TestCartInvariantsUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	products := []*model.Product{
		testProduct("p1", "12.50", ivory, navy),
		testProduct("p2", "3.99", model.ColorVariant{Name: "Red", Hex: "#FF0000", Stock: 4}),
	}

	for round := 0; round < 50; round++ {
		cart := NewCart()
		for op := 0; op < 100; op++ {
			items := cart.Items()
			switch rng.IntN(3) {
			case 0:
				p := products[rng.IntN(len(products))]
				v := p.Variants[rng.IntN(len(p.Variants))]
				_, _ = cart.Add(p, v, rng.IntN(4))
			case 1:
				if len(items) > 0 {
					cart.Remove(items[rng.IntN(len(items))].ID)
				}
			case 2:
				if len(items) > 0 {
					_ = cart.UpdateQuantity(items[rng.IntN(len(items))].ID, rng.IntN(8)-1)
				}
			}

			items = cart.Items()
			count := 0
			total := decimal.Zero
			for _, item := range items {
				require.GreaterOrEqual(t, item.Quantity, 1)
				require.LessOrEqual(t, item.Quantity, item.Variant.Stock)
				count += item.Quantity
				total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
			require.Equal(t, count, cart.Count())
			require.True(t, total.Equal(cart.Total()), "total %s != %s", total, cart.Total())
		}
	}
}
