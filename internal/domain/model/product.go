package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsValidHex 檢查是否為 #RRGGBB 色碼
func IsValidHex(hex string) bool {
	return hexColorPattern.MatchString(hex)
}

// ColorVariant 商品顏色選項，每個顏色獨立計算庫存
type ColorVariant struct {
	Name  string `bson:"name" json:"name" yaml:"name"`
	Hex   string `bson:"hex" json:"hex" yaml:"hex"`
	Stock int    `bson:"stock" json:"stock" yaml:"stock"`
}

// SameHex hex 比對不分大小寫
func (v ColorVariant) SameHex(hex string) bool {
	return strings.EqualFold(v.Hex, hex)
}

type Review struct {
	ID      string `bson:"id" json:"id"`
	Author  string `bson:"author" json:"author"`
	Rating  int    `bson:"rating" json:"rating"`
	Comment string `bson:"comment" json:"comment"`
	Date    string `bson:"date" json:"date"`
}

// Product 商品文件
// Stock 為所有 variant 庫存加總，於每次寫回 variants 時一併重算
// Version 用於庫存寫回的 compare-and-swap
type Product struct {
	ID          string          `bson:"_id" json:"id"`
	Name        string          `bson:"name" json:"name"`
	Brand       string          `bson:"brand" json:"brand"`
	Category    string          `bson:"category" json:"category"`
	Finish      string          `bson:"finish" json:"finish"`
	ColorFamily string          `bson:"colorFamily" json:"colorFamily"`
	Price       decimal.Decimal `bson:"price" json:"price"`
	Description string          `bson:"description" json:"description"`
	ImageURL    string          `bson:"imageUrl" json:"imageUrl"`
	ImagePath   string          `bson:"imagePath" json:"imagePath,omitempty"`
	ImageHint   string          `bson:"imageHint" json:"imageHint"`
	Variants    []ColorVariant  `bson:"variants" json:"variants"`
	Stock       int             `bson:"stock" json:"stock"`
	IsActive    bool            `bson:"isActive" json:"isActive"`
	Popularity  int             `bson:"popularity" json:"popularity"`
	Reviews     []Review        `bson:"reviews" json:"reviews"`
	Version     int64           `bson:"version" json:"version"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// FindVariant 依 hex 找出 variant 的 index，找不到回傳 -1
func (p *Product) FindVariant(hex string) int {
	for i, v := range p.Variants {
		if v.SameHex(hex) {
			return i
		}
	}
	return -1
}

// TotalStock 重新計算所有 variant 庫存加總
func (p *Product) TotalStock() int {
	return SumVariantStock(p.Variants)
}

func SumVariantStock(variants []ColorVariant) int {
	total := 0
	for _, v := range variants {
		total += v.Stock
	}
	return total
}

// CloneVariants 複製 variants，避免共用底層陣列
func CloneVariants(variants []ColorVariant) []ColorVariant {
	if variants == nil {
		return nil
	}
	out := make([]ColorVariant, len(variants))
	copy(out, variants)
	return out
}

// ProductPatch 後台編輯商品時可修改的欄位，nil 代表不修改
type ProductPatch struct {
	Name        *string
	Brand       *string
	Category    *string
	Finish      *string
	ColorFamily *string
	Price       *decimal.Decimal
	Description *string
	IsActive    *bool
	Variants    []ColorVariant
	ImageURL    *string
	ImagePath   *string
}

// StockPatch 庫存回寫只允許改動 variants 與加總庫存
type StockPatch struct {
	Variants        []ColorVariant
	TotalStock      int
	ExpectedVersion int64
}

func NewStockPatch(p *Product) StockPatch {
	variants := CloneVariants(p.Variants)
	return StockPatch{
		Variants:        variants,
		TotalStock:      SumVariantStock(variants),
		ExpectedVersion: p.Version,
	}
}

type ProductSort string

const (
	SortPopularityDesc ProductSort = "popularity-desc"
	SortPriceAsc       ProductSort = "price-asc"
	SortPriceDesc      ProductSort = "price-desc"
	SortNameAsc        ProductSort = "name-asc"
)

// ProductFilter 商品列表查詢條件
type ProductFilter struct {
	Search        string
	Brands        []string
	Finishes      []string
	ColorFamilies []string
	ActiveOnly    bool
	Sort          ProductSort
}

// Match 以記憶體比對商品是否符合條件，mongo 以外的實作共用
func (f ProductFilter) Match(p *Product) bool {
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Brand), term) {
			return false
		}
	}
	if len(f.Brands) > 0 && !contains(f.Brands, p.Brand) {
		return false
	}
	if len(f.Finishes) > 0 && !contains(f.Finishes, p.Finish) {
		return false
	}
	if len(f.ColorFamilies) > 0 && !contains(f.ColorFamilies, p.ColorFamily) {
		return false
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
