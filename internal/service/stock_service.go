package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -destination=mock/mock_stock_service.go -package=mock_service github.com/RoyceAzure/lab/storefront/internal/service IStockService

type IStockService interface {
	// DecrementStock 依訂單項目扣減 variant 庫存，庫存不會低於 0
	// 商品或 variant 不存在時略過，各商品錯誤合併回傳
	DecrementStock(ctx context.Context, items []model.CartItem) error
}

type StockService struct {
	productRepo repository.IProductRepository
	concurrency int
	maxRetries  int
	logger      *zerolog.Logger
}

func NewStockService(productRepo repository.IProductRepository, concurrency, maxRetries int, logger *zerolog.Logger) *StockService {
	if productRepo == nil {
		panic("StockService dependency productRepo is nil")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &StockService{
		productRepo: productRepo,
		concurrency: concurrency,
		maxRetries:  maxRetries,
		logger:      logger,
	}
}

type productDecrement struct {
	productID string
	items     []model.CartItem
}

// groupByProduct 依第一次出現的順序分組
func groupByProduct(items []model.CartItem) []productDecrement {
	index := make(map[string]int)
	groups := []productDecrement{}
	for _, item := range items {
		i, ok := index[item.ProductID]
		if !ok {
			i = len(groups)
			index[item.ProductID] = i
			groups = append(groups, productDecrement{productID: item.ProductID})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}

func (s *StockService) DecrementStock(ctx context.Context, items []model.CartItem) error {
	groups := groupByProduct(items)

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, group := range groups {
		g.Go(func() error {
			if err := s.decrementProduct(gctx, group); err != nil {
				s.logger.Error().Err(err).Str("product_id", group.productID).Msg("failed to decrement stock")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			// 單一商品失敗不取消其他商品
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// decrementProduct 每個商品讀一次寫一次，版本衝突時重新讀取重算
func (s *StockService) decrementProduct(ctx context.Context, group productDecrement) error {
	for attempt := 0; ; attempt++ {
		product, err := s.productRepo.GetProduct(ctx, group.productID)
		if err != nil {
			return fmt.Errorf("failed to load product %s: %w", group.productID, err)
		}
		if product == nil {
			s.logger.Debug().Str("product_id", group.productID).Msg("product no longer exists, skip stock decrement")
			return nil
		}

		if !applyDecrements(product, group.items, s.logger) {
			return nil
		}

		err = s.productRepo.UpdateProductStock(ctx, product.ID, model.NewStockPatch(product))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrProductNotFound):
			s.logger.Debug().Str("product_id", group.productID).Msg("product deleted during stock decrement")
			return nil
		case errors.Is(err, repository.ErrVersionConflict) && attempt < s.maxRetries:
			s.logger.Debug().Str("product_id", group.productID).Int("attempt", attempt+1).Msg("stock version conflict, retrying")
			continue
		default:
			return fmt.Errorf("failed to update stock of product %s: %w", group.productID, err)
		}
	}
}

// applyDecrements 就地扣減，回傳是否有任何 variant 被比對到
func applyDecrements(product *model.Product, items []model.CartItem, logger *zerolog.Logger) bool {
	touched := false
	for _, item := range items {
		i := product.FindVariant(item.Variant.Hex)
		if i < 0 {
			logger.Debug().
				Str("product_id", product.ID).
				Str("variant_hex", item.Variant.Hex).
				Msg("variant no longer exists, skip")
			continue
		}
		product.Variants[i].Stock = max(0, product.Variants[i].Stock-item.Quantity)
		touched = true
	}
	if touched {
		product.Stock = product.TotalStock()
	}
	return touched
}

var _ IStockService = (*StockService)(nil)
