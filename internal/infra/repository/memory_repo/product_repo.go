package memory_repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
)

// ProductRepo 記憶體版商品目錄，開發與測試用
type ProductRepo struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{products: make(map[string]model.Product)}
}

func cloneProduct(p model.Product) model.Product {
	p.Variants = model.CloneVariants(p.Variants)
	if p.Reviews != nil {
		reviews := make([]model.Review, len(p.Reviews))
		copy(reviews, p.Reviews)
		p.Reviews = reviews
	}
	return p
}

func (r *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; ok {
		return fmt.Errorf("product %s already exists", product.ID)
	}
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *ProductRepo) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := cloneProduct(p)
	return &cp, nil
}

func (r *ProductRepo) GetProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	r.mu.RLock()
	products := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Match(&p) {
			products = append(products, cloneProduct(p))
		}
	}
	r.mu.RUnlock()

	sortProducts(products, filter.Sort)
	return products, nil
}

func sortProducts(products []model.Product, by model.ProductSort) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch by {
		case model.SortPopularityDesc:
			return a.Popularity > b.Popularity
		case model.SortPriceAsc:
			return a.Price.LessThan(b.Price)
		case model.SortPriceDesc:
			return a.Price.GreaterThan(b.Price)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
}

func (r *ProductRepo) CountProducts(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrProductNotFound, id)
	}

	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&p.Name, patch.Name)
	setString(&p.Brand, patch.Brand)
	setString(&p.Category, patch.Category)
	setString(&p.Finish, patch.Finish)
	setString(&p.ColorFamily, patch.ColorFamily)
	setString(&p.Description, patch.Description)
	setString(&p.ImageURL, patch.ImageURL)
	setString(&p.ImagePath, patch.ImagePath)
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.Variants != nil {
		p.Variants = model.CloneVariants(patch.Variants)
		p.Stock = model.SumVariantStock(p.Variants)
	}
	p.Version++
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return nil
}

func (r *ProductRepo) UpdateProductStock(ctx context.Context, id string, patch model.StockPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrProductNotFound, id)
	}
	if p.Version != patch.ExpectedVersion {
		return fmt.Errorf("%w: product %s has version %d, expected %d", repository.ErrVersionConflict, id, p.Version, patch.ExpectedVersion)
	}
	p.Variants = model.CloneVariants(patch.Variants)
	p.Stock = patch.TotalStock
	p.Version++
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return nil
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

var _ repository.IProductRepository = (*ProductRepo)(nil)
