package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartItemNotFound  = errors.New("cart item not found")
)

// InsufficientStockError 要求數量超過 variant 庫存
type InsufficientStockError struct {
	ProductID  string
	VariantHex string
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s variant %s: requested %d, available %d",
		e.ProductID, e.VariantHex, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

type NoticeLevel string

const (
	NoticeInfo        NoticeLevel = "info"
	NoticeDestructive NoticeLevel = "destructive"
)

// Notice 給使用者看的提示訊息
type Notice struct {
	Level       NoticeLevel `json:"level"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// Cart 單一 session 的購物車，只存在記憶體
type Cart struct {
	mu      sync.Mutex
	items   []model.CartItem
	notices []Notice
}

func NewCart() *Cart {
	return &Cart{items: []model.CartItem{}}
}

func (c *Cart) findByVariant(productID, hex string) int {
	for i, item := range c.items {
		if item.ProductID == productID && item.Variant.SameHex(hex) {
			return i
		}
	}
	return -1
}

func (c *Cart) findByID(itemID string) int {
	for i, item := range c.items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) notify(level NoticeLevel, title, description string) {
	c.notices = append(c.notices, Notice{Level: level, Title: title, Description: description})
}

// Notify 由外部加入提示，例如結帳完成
func (c *Cart) Notify(level NoticeLevel, title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify(level, title, description)
}

func (c *Cart) rejectStock(productID string, variant model.ColorVariant, requested int) error {
	err := &InsufficientStockError{
		ProductID:  productID,
		VariantHex: variant.Hex,
		Requested:  requested,
		Available:  variant.Stock,
	}
	c.notify(NoticeDestructive, "Not Enough Stock",
		fmt.Sprintf("Only %d of %s are available.", variant.Stock, variant.Name))
	return err
}

// Add 加入商品，同商品同顏色合併數量
// 合併後或新加入的數量超過 variant 庫存時不做任何變更
func (c *Cart) Add(product *model.Product, variant model.ColorVariant, quantity int) (model.CartItem, error) {
	if quantity < 1 {
		return model.CartItem{}, ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.findByVariant(product.ID, variant.Hex); i >= 0 {
		proposed := c.items[i].Quantity + quantity
		if proposed > variant.Stock {
			return model.CartItem{}, c.rejectStock(product.ID, variant, proposed)
		}
		c.items[i].Quantity = proposed
		c.notify(NoticeInfo, "Added to Cart", addedDescription(quantity, product.Name, variant.Name))
		return c.items[i], nil
	}

	if quantity > variant.Stock {
		return model.CartItem{}, c.rejectStock(product.ID, variant, quantity)
	}

	item := model.CartItem{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
		Variant:   variant,
		ImageURL:  product.ImageURL,
		ImageHint: product.ImageHint,
	}
	c.items = append(c.items, item)
	c.notify(NoticeInfo, "Added to Cart", addedDescription(quantity, product.Name, variant.Name))
	return item, nil
}

func addedDescription(quantity int, name, variant string) string {
	return fmt.Sprintf("%d x %s (%s) has been added to your cart.", quantity, name, variant)
}

// Remove 不存在的 id 不做任何事
func (c *Cart) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(itemID)
}

func (c *Cart) removeLocked(itemID string) {
	i := c.findByID(itemID)
	if i < 0 {
		return
	}
	removed := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.notify(NoticeInfo, "Item Removed", fmt.Sprintf("%s (%s) has been removed from your cart.", removed.Name, removed.Variant.Name))
}

// UpdateQuantity quantity <= 0 視為移除
// 超過加入時的 variant 庫存會被修正為庫存上限，並回傳 InsufficientStockError
func (c *Cart) UpdateQuantity(itemID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.findByID(itemID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCartItemNotFound, itemID)
	}
	if quantity <= 0 {
		c.removeLocked(itemID)
		return nil
	}

	item := &c.items[i]
	if quantity > item.Variant.Stock {
		item.Quantity = item.Variant.Stock
		return c.rejectStock(item.ProductID, item.Variant, quantity)
	}
	item.Quantity = quantity
	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []model.CartItem{}
}

func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CloneCartItems(c.items)
}

// Count 所有項目數量加總
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Total 所有項目 price x quantity 加總
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalOf(c.items)
}

func totalOf(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Snapshot 一次取得項目、數量與總額，三者一致
func (c *Cart) Snapshot() ([]model.CartItem, int, decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return model.CloneCartItems(c.items), count, totalOf(c.items)
}

// TakeAll 取出所有項目與總額並清空購物車，同一次鎖定內完成
func (c *Cart) TakeAll() ([]model.CartItem, decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.items
	total := totalOf(items)
	c.items = []model.CartItem{}
	return items, total
}

// DrainNotices 取出並清空待顯示的提示
func (c *Cart) DrainNotices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	notices := c.notices
	c.notices = nil
	if notices == nil {
		notices = []Notice{}
	}
	return notices
}
