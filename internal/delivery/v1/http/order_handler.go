package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUC
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, logger: logger}
}

// placeOrder размещает новый заказ от имени текущего пользователя.
// Списание остатков, запись заказа и outbox-событие выполняются
// в одной транзакции.
func (h *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest))
		return
	}

	items := make([]usecase.OrderItemReq, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.NewOrderItemReq(item.ProductID, item.Quantity))
	}

	order, err := h.orderUsecase.PlaceOrder(r.Context(), usecase.NewPlaceOrderReq(userID, items))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, NewOrderResponse(order))
}

// listOrders возвращает заказы текущего пользователя,
// отсортированные от новых к старым.
func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	orders, err := h.orderUsecase.ListUserOrders(r.Context(), userID)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewArrOrderResponse(orders))
}

// getOrder возвращает заказ по идентификатору. Чужой заказ
// неотличим от несуществующего: в обоих случаях 404.
func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	orderID := chi.URLParam(r, "id")

	order, err := h.orderUsecase.GetOrder(r.Context(), orderID, userID)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewOrderResponse(order))
}

// updateOrderStatus меняет статус заказа. Остальные поля заказа
// не затрагиваются.
func (h *OrderHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest))
		return
	}

	order, err := h.orderUsecase.UpdateOrderStatus(r.Context(), orderID, strings.TrimSpace(req.Status))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewOrderResponse(order))
}
