package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("invalid product")

// Upload 上傳檔案
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// objectPath <prefix>/<id>/<檔名>，檔名只保留最後一段
func objectPath(prefix, id, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%s/%s", prefix, id, name)
}

// ProductInput 後台新增商品的欄位
type ProductInput struct {
	Name        string
	Brand       string
	Category    string
	Finish      string
	ColorFamily string
	Price       decimal.Decimal
	Description string
	Variants    []model.ColorVariant
	IsActive    bool
}

func validateVariants(variants []model.ColorVariant) error {
	for _, v := range variants {
		if !model.IsValidHex(v.Hex) {
			return fmt.Errorf("%w: variant %q has invalid hex %q", ErrInvalidProduct, v.Name, v.Hex)
		}
		if v.Stock < 0 {
			return fmt.Errorf("%w: variant %q has negative stock", ErrInvalidProduct, v.Name)
		}
	}
	return nil
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidProduct)
	}
	if len(in.Variants) == 0 {
		return fmt.Errorf("%w: at least one variant is required", ErrInvalidProduct)
	}
	return validateVariants(in.Variants)
}

type IProductService interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	// GetProduct activeOnly 為 true 時下架商品視為不存在
	GetProduct(ctx context.Context, id string, activeOnly bool) (*model.Product, error)
	CreateProduct(ctx context.Context, in ProductInput, image *Upload) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch, image *Upload) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int64, error)
}

type ProductService struct {
	productRepo repository.IProductRepository
	images      repository.IImageStore
	logger      *zerolog.Logger
}

func NewProductService(productRepo repository.IProductRepository, images repository.IImageStore, logger *zerolog.Logger) *ProductService {
	if productRepo == nil || images == nil {
		panic("ProductService dependency is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ProductService{productRepo: productRepo, images: images, logger: logger}
}

func (s *ProductService) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return s.productRepo.GetProducts(ctx, filter)
}

func (s *ProductService) GetProduct(ctx context.Context, id string, activeOnly bool) (*model.Product, error) {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || (activeOnly && !product.IsActive) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return product, nil
}

func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	return s.productRepo.CountProducts(ctx)
}

// CreateProduct 圖片必填，先上傳圖片再寫入商品
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, image *Upload) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidProduct)
	}

	id := uuid.New().String()
	imagePath := objectPath("products", id, image.Filename)
	imageURL, err := s.images.Upload(ctx, imagePath, image.ContentType, image.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload product image: %w", err)
	}

	now := time.Now().UTC()
	variants := model.CloneVariants(in.Variants)
	product := &model.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Brand:       in.Brand,
		Category:    in.Category,
		Finish:      in.Finish,
		ColorFamily: in.ColorFamily,
		Price:       in.Price,
		Description: in.Description,
		ImageURL:    imageURL,
		ImagePath:   imagePath,
		ImageHint:   constants.DefaultImageHint,
		Variants:    variants,
		Stock:       model.SumVariantStock(variants),
		IsActive:    in.IsActive,
		Popularity:  rand.IntN(constants.MaxInitialPopularity) + 1,
		Reviews:     []model.Review{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		if derr := s.images.Delete(ctx, imagePath); derr != nil {
			s.logger.Warn().Err(derr).Str("path", imagePath).Msg("failed to remove orphan product image")
		}
		return nil, err
	}

	s.logger.Info().Str("product_id", id).Str("name", product.Name).Msg("product created")
	return product, nil
}

// UpdateProduct 有新圖片時先刪除舊圖，舊圖不存在不視為錯誤
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch, image *Upload) (*model.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if patch.Price != nil && !patch.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than 0", ErrInvalidProduct)
	}
	if patch.Variants != nil {
		if len(patch.Variants) == 0 {
			return nil, fmt.Errorf("%w: at least one variant is required", ErrInvalidProduct)
		}
		if err := validateVariants(patch.Variants); err != nil {
			return nil, err
		}
	}

	existing, err := s.GetProduct(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if image != nil {
		if existing.ImagePath != "" {
			if err := s.images.Delete(ctx, existing.ImagePath); err != nil && !errors.Is(err, repository.ErrObjectNotFound) {
				s.logger.Error().Err(err).Str("path", existing.ImagePath).Msg("could not delete old product image")
			}
		}
		imagePath := objectPath("products", id, image.Filename)
		imageURL, err := s.images.Upload(ctx, imagePath, image.ContentType, image.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
		patch.ImagePath = &imagePath
		patch.ImageURL = &imageURL
	}

	if err := s.productRepo.UpdateProduct(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, err
	}
	return s.GetProduct(ctx, id, false)
}

// DeleteProduct 圖片刪除失敗只記錄，仍刪除商品
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.productRepo.GetProduct(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to load product before delete")
	} else if product != nil && product.ImagePath != "" {
		if err := s.images.Delete(ctx, product.ImagePath); err != nil {
			s.logger.Error().Err(err).Str("path", product.ImagePath).Msg("error deleting product image, continuing to delete document")
		}
	}
	return s.productRepo.DeleteProduct(ctx, id)
}

var _ IProductService = (*ProductService)(nil)
