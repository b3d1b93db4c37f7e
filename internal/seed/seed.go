package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Catalog 啟動時匯入的商品與調色盤
type Catalog struct {
	Products []ProductSeed `yaml:"products"`
	Colors   []ColorSeed   `yaml:"colors"`
}

type ProductSeed struct {
	ID          string               `yaml:"id"`
	Name        string               `yaml:"name"`
	Brand       string               `yaml:"brand"`
	Category    string               `yaml:"category"`
	Finish      string               `yaml:"finish"`
	ColorFamily string               `yaml:"colorFamily"`
	Price       string               `yaml:"price"`
	Description string               `yaml:"description"`
	ImageURL    string               `yaml:"imageUrl"`
	ImageHint   string               `yaml:"imageHint"`
	Popularity  int                  `yaml:"popularity"`
	Inactive    bool                 `yaml:"inactive"`
	Variants    []model.ColorVariant `yaml:"variants"`
}

type ColorSeed struct {
	Name string `yaml:"name"`
	Hex  string `yaml:"hex"`
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &c, nil
}

func (p ProductSeed) toProduct(now time.Time) (*model.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("seed product without name")
	}
	price, err := decimal.NewFromString(p.Price)
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("seed product %s has invalid price %q", p.Name, p.Price)
	}
	if len(p.Variants) == 0 {
		return nil, fmt.Errorf("seed product %s has no variants", p.Name)
	}
	for _, v := range p.Variants {
		if !model.IsValidHex(v.Hex) || v.Stock < 0 {
			return nil, fmt.Errorf("seed product %s has invalid variant %q", p.Name, v.Hex)
		}
	}

	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}
	hint := p.ImageHint
	if hint == "" {
		hint = constants.DefaultImageHint
	}
	variants := model.CloneVariants(p.Variants)
	return &model.Product{
		ID:          id,
		Name:        strings.TrimSpace(p.Name),
		Brand:       p.Brand,
		Category:    p.Category,
		Finish:      p.Finish,
		ColorFamily: p.ColorFamily,
		Price:       price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		ImageHint:   hint,
		Variants:    variants,
		Stock:       model.SumVariantStock(variants),
		IsActive:    !p.Inactive,
		Popularity:  p.Popularity,
		Reviews:     []model.Review{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Loader 只在商品目錄為空時匯入，調色盤同理
type Loader struct {
	products repository.IProductRepository
	colors   repository.IVisualizerColorRepository
	logger   *zerolog.Logger
}

func NewLoader(products repository.IProductRepository, colors repository.IVisualizerColorRepository, logger *zerolog.Logger) *Loader {
	if products == nil || colors == nil {
		panic("seed Loader dependency is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Loader{products: products, colors: colors, logger: logger}
}

// Apply 回傳實際寫入的商品與顏色數量
func (l *Loader) Apply(ctx context.Context, c *Catalog) (int, int, error) {
	insertedProducts, err := l.applyProducts(ctx, c.Products)
	if err != nil {
		return insertedProducts, 0, err
	}
	insertedColors, err := l.applyColors(ctx, c.Colors)
	if err != nil {
		return insertedProducts, insertedColors, err
	}
	l.logger.Info().Int("products", insertedProducts).Int("colors", insertedColors).Msg("seed applied")
	return insertedProducts, insertedColors, nil
}

func (l *Loader) applyProducts(ctx context.Context, seeds []ProductSeed) (int, error) {
	count, err := l.products.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		l.logger.Info().Int64("existing", count).Msg("catalog not empty, skip product seed")
		return 0, nil
	}

	now := time.Now().UTC()
	inserted := 0
	for _, ps := range seeds {
		p, err := ps.toProduct(now)
		if err != nil {
			return inserted, err
		}
		if err := l.products.CreateProduct(ctx, p); err != nil {
			return inserted, fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		inserted++
	}
	return inserted, nil
}

func (l *Loader) applyColors(ctx context.Context, seeds []ColorSeed) (int, error) {
	existing, err := l.colors.GetVisualizerColors(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	inserted := 0
	for _, cs := range seeds {
		if strings.TrimSpace(cs.Name) == "" || !model.IsValidHex(cs.Hex) {
			return inserted, fmt.Errorf("invalid seed color %q %q", cs.Name, cs.Hex)
		}
		c := &model.VisualizerColor{ID: uuid.New().String(), Name: strings.TrimSpace(cs.Name), Hex: strings.ToUpper(cs.Hex)}
		if err := l.colors.CreateVisualizerColor(ctx, c); err != nil {
			return inserted, fmt.Errorf("failed to seed color %s: %w", c.Name, err)
		}
		inserted++
	}
	return inserted, nil
}
