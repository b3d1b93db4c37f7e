package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/shopspring/decimal"
)

type AddCartItemDTO struct {
	ProductID  string `json:"productId"`
	VariantHex string `json:"variantHex"`
	Quantity   int    `json:"quantity"`
}

type UpdateCartItemDTO struct {
	Quantity int `json:"quantity"`
}

// CartDTO 購物車目前狀態，notices 讀取後即清空
type CartDTO struct {
	Items   []model.CartItem `json:"items"`
	Count   int              `json:"count"`
	Total   decimal.Decimal  `json:"total"`
	Notices []service.Notice `json:"notices"`
}

type CheckoutDTO struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

type CheckoutResponse struct {
	Order model.Order `json:"order"`
	Cart  CartDTO     `json:"cart"`
}
