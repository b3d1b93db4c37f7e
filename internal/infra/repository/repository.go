package repository

import (
	"context"
	"errors"
	"io"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrVersionConflict 商品版本已被其他寫入更新
	ErrVersionConflict = errors.New("product version conflict")
	ErrNotFound        = errors.New("document not found")
	ErrKeyNotFound     = errors.New("key not found")
	ErrObjectNotFound  = errors.New("object not found")
	// ErrCorruptData 儲存內容無法解析
	ErrCorruptData = errors.New("corrupt stored data")
)

// IProductRepository 商品目錄
// Get 類操作在文件不存在時回傳 (nil, nil)
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch) error
	// UpdateProductStock 只在版本相符時寫入，成功後版本加一
	// 錯誤:
	//   - ErrProductNotFound: 商品不存在
	//   - ErrVersionConflict: 版本不符
	UpdateProductStock(ctx context.Context, id string, patch model.StockPatch) error
	DeleteProduct(ctx context.Context, id string) error
}

type ITestimonialRepository interface {
	// GetTestimonials 依 priority 由小到大
	GetTestimonials(ctx context.Context) ([]model.Testimonial, error)
	GetTestimonial(ctx context.Context, id string) (*model.Testimonial, error)
	CreateTestimonial(ctx context.Context, testimonial *model.Testimonial) error
	UpdateTestimonial(ctx context.Context, testimonial *model.Testimonial) error
	DeleteTestimonial(ctx context.Context, id string) error
}

type IVisualizerColorRepository interface {
	// GetVisualizerColors 依名稱排序
	GetVisualizerColors(ctx context.Context) ([]model.VisualizerColor, error)
	CreateVisualizerColor(ctx context.Context, color *model.VisualizerColor) error
	UpdateVisualizerColor(ctx context.Context, color *model.VisualizerColor) error
	DeleteVisualizerColor(ctx context.Context, id string) error
}

type IConfigurationRepository interface {
	GetProductAttributes(ctx context.Context) (*model.ProductAttributes, error)
	SaveProductAttributes(ctx context.Context, attrs model.ProductAttributes) error
}

type IEstimationRepository interface {
	// GetEstimations 依建立時間由新到舊
	GetEstimations(ctx context.Context) ([]model.EstimationRequest, error)
	GetEstimation(ctx context.Context, id string) (*model.EstimationRequest, error)
	CreateEstimation(ctx context.Context, req *model.EstimationRequest) error
	UpdateEstimation(ctx context.Context, req *model.EstimationRequest) error
	DeleteEstimation(ctx context.Context, id string) error
}

// IImageStore 物件儲存，path 例如 products/<id>/<filename>
type IImageStore interface {
	Upload(ctx context.Context, path string, contentType string, r io.Reader) (url string, err error)
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
	// Delete 物件不存在時回傳 ErrObjectNotFound
	Delete(ctx context.Context, path string) error
}

// IKVStore 整包讀寫的 key/value 儲存
type IKVStore interface {
	// Get key 不存在時回傳 ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
