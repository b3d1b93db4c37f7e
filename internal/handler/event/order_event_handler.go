package handler

import (
	"context"

	evt_model "github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/rs/zerolog"
)

// 處理order事件
type OrderEventHandler struct {
	stockService service.IStockService
	logger       *zerolog.Logger
}

func NewOrderEventHandler(stockService service.IStockService, logger *zerolog.Logger) *OrderEventHandler {
	if stockService == nil {
		panic("OrderEventHandler dependency stockService is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OrderEventHandler{stockService: stockService, logger: logger}
}

// HandleOrderPlaced 依訂單項目扣減庫存
// 扣減失敗只記錄，訂單不回滾
func (h *OrderEventHandler) HandleOrderPlaced(ctx context.Context, evt evt_model.Event) error {
	var e *evt_model.OrderPlacedEvent
	var ok bool
	if e, ok = evt.(*evt_model.OrderPlacedEvent); !ok {
		return errUnknownEventFormat
	}

	if err := h.stockService.DecrementStock(ctx, e.Items); err != nil {
		h.logger.Error().Err(err).Str("order_id", e.OrderID).Msg("stock reconciliation finished with errors")
		return nil
	}
	h.logger.Info().Str("order_id", e.OrderID).Int("items", len(e.Items)).Msg("stock reconciled")
	return nil
}

func (h *OrderEventHandler) HandleOrderStatusChanged(ctx context.Context, evt evt_model.Event) error {
	var e *evt_model.OrderStatusChangedEvent
	var ok bool
	if e, ok = evt.(*evt_model.OrderStatusChangedEvent); !ok {
		return errUnknownEventFormat
	}

	h.logger.Info().
		Str("order_id", e.OrderID).
		Str("from", string(e.FromStatus)).
		Str("to", string(e.ToStatus)).
		Msg("order status changed")
	return nil
}
