package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/api"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type OrderHandler struct {
	orderService   service.IOrderService
	productService service.IProductService
	logger         *zerolog.Logger
}

func NewOrderHandler(orderService service.IOrderService, productService service.IProductService, logger *zerolog.Logger) *OrderHandler {
	if orderService == nil || productService == nil {
		panic("OrderHandler dependency cannot be nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OrderHandler{orderService: orderService, productService: productService, logger: logger}
}

// GetOrders GET /orders?email=，新的在前
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		api.ErrorJSON(w, http.StatusBadRequest, errors.New("email is required"), "bad request")
		return
	}
	orders := h.orderService.GetOrdersForUser(email)
	service.SortOrdersByDateDesc(orders)
	api.SuccessJSON(w, orders, nil)
}

// AdminListOrders 全部訂單，新的在前
func (h *OrderHandler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.orderService.Orders()
	service.SortOrdersByDateDesc(orders)
	api.SuccessJSON(w, orders, nil)
}

// UpdateOrderStatus PUT /admin/orders/{id}/status
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateOrderStatusDTO
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if err := h.orderService.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, map[string]string{"status": string(status)}, nil)
}

// Dashboard GET /admin/dashboard
func (h *OrderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	count, err := h.productService.CountProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, h.orderService.Stats(count), nil)
}
