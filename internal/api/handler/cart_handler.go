package handler

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/api"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type CartHandler struct {
	cartService service.ICartService
	logger      *zerolog.Logger
}

func NewCartHandler(cartService service.ICartService, logger *zerolog.Logger) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CartHandler{cartService: cartService, logger: logger}
}

func cartView(cart *service.Cart) dto.CartDTO {
	items, count, total := cart.Snapshot()
	notices := cart.DrainNotices()
	if notices == nil {
		notices = []service.Notice{}
	}
	return dto.CartDTO{Items: items, Count: count, Total: total, Notices: notices}
}

// GetCart GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.cartService.Cart(util.GetSessionID(r.Context()))
	api.SuccessJSON(w, cartView(cart), nil)
}

// AddItem POST /cart/items，庫存不足回 409 並附上目前購物車
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemDTO
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	sid := util.GetSessionID(r.Context())
	_, err := h.cartService.AddToCart(r.Context(), sid, req.ProductID, req.VariantHex, req.Quantity)
	if err != nil {
		var stockErr *service.InsufficientStockError
		if errors.As(err, &stockErr) {
			api.StatusJSON(w, http.StatusConflict, stockErr.Error(), cartView(h.cartService.Cart(sid)))
			return
		}
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, cartView(h.cartService.Cart(sid)), nil)
}

// UpdateItem PATCH /cart/items/{itemID}，超過庫存時調整為最大可用量並回 200
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCartItemDTO
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	sid := util.GetSessionID(r.Context())
	err := h.cartService.UpdateQuantity(sid, chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil && !errors.Is(err, service.ErrInsufficientStock) {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, cartView(h.cartService.Cart(sid)), nil)
}

// RemoveItem DELETE /cart/items/{itemID}，項目不存在也回 200
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid := util.GetSessionID(r.Context())
	h.cartService.RemoveFromCart(sid, chi.URLParam(r, "itemID"))
	api.SuccessJSON(w, cartView(h.cartService.Cart(sid)), nil)
}

// ClearCart DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid := util.GetSessionID(r.Context())
	h.cartService.ClearCart(sid)
	api.SuccessJSON(w, cartView(h.cartService.Cart(sid)), nil)
}

// Checkout POST /checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutDTO
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	sid := util.GetSessionID(r.Context())
	order, err := h.cartService.Checkout(r.Context(), sid, service.CheckoutRequest{
		Email:   req.Email,
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Zip:     req.Zip,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.CreatedJSON(w, dto.CheckoutResponse{Order: order, Cart: cartView(h.cartService.Cart(sid))})
}
