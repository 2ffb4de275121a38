package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/savoria/order-service/internal/orders"
	"github.com/savoria/order-service/internal/redisx"
)

// OrderService is what the handlers need from the orchestrator.
type OrderService interface {
	PlaceOrder(ctx context.Context, customerID, restaurantID string, lines []orders.ItemInput) (*orders.Order, error)
	UpdateOrder(ctx context.Context, orderID, customerID, restaurantID string, lines []orders.ItemInput) (*orders.UpdateResult, error)
	CancelOrder(ctx context.Context, orderID, customerID string) (bool, error)
	GetOrderByID(ctx context.Context, orderID string) (*orders.Order, error)
	GetOrderAmountByOrderID(ctx context.Context, orderID string) (float64, error)
}

type OrdersHandler struct {
	Service OrderService
	Redis   *redis.Client
	Log     *zap.Logger
}

type PlaceOrderRequest struct {
	CustomerID   string             `json:"customer_id"`
	RestaurantID string             `json:"restaurant_id"`
	Items        []orders.ItemInput `json:"items"`
}

type UpdateOrderRequest struct {
	OrderID      string             `json:"order_id"`
	CustomerID   string             `json:"customer_id"`
	RestaurantID string             `json:"restaurant_id"`
	Items        []orders.ItemInput `json:"items"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth)
		r.Post("/order", h.placeOrder)
		r.Put("/order", h.updateOrder)
		r.Put("/order/cancel/{orderID}", h.cancelOrder)
		r.Get("/order/{orderID}", h.getOrder)
		r.Get("/order/status/{orderID}", h.getOrderStatus)
		r.Get("/order/value/{orderID}", h.getOrderAmount)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the orchestrator's error kinds onto status codes; nothing
// else about internal failures leaks to the client.
func (h *OrdersHandler) writeError(w http.ResponseWriter, err error) {
	if e, ok := orders.AsError(err); ok {
		switch e.Kind {
		case orders.KindValidation:
			writeJSON(w, http.StatusBadRequest, errorBody{Code: e.Code, Message: e.Message})
			return
		case orders.KindAuth:
			writeJSON(w, http.StatusUnauthorized, errorBody{Code: e.Code, Message: e.Message})
			return
		}
	}
	h.Log.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Code:    orders.CodeInternal,
		Message: "something went wrong, looks like the restaurant is currently not accepting orders",
	})
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_json", Message: "invalid json"})
		return
	}
	if req.CustomerID == "" || req.RestaurantID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "missing_fields", Message: "customer_id and restaurant_id are required"})
		return
	}

	o, err := h.Service.PlaceOrder(r.Context(), req.CustomerID, req.RestaurantID, req.Items)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cacheStatus(r.Context(), o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_json", Message: "invalid json"})
		return
	}
	if req.OrderID == "" || req.CustomerID == "" || req.RestaurantID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "missing_fields", Message: "order_id, customer_id and restaurant_id are required"})
		return
	}

	res, err := h.Service.UpdateOrder(r.Context(), req.OrderID, req.CustomerID, req.RestaurantID, req.Items)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cacheStatusValue(r.Context(), res.OrderID, res.Status)
	writeJSON(w, http.StatusOK, res)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "missing_fields", Message: "customerId is required"})
		return
	}

	ok, err := h.Service.CancelOrder(r.Context(), orderID, customerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Code: orders.CodeOrderNotFound, Message: "no records found for respective id"})
		return
	}
	h.cacheStatusValue(r.Context(), orderID, orders.StatusCancelled)
	writeJSON(w, http.StatusOK, map[string]string{"message": "order cancelled successfully"})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	o, err := h.Service.GetOrderByID(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if o == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Code: orders.CodeOrderNotFound, Message: "no result found for specified inputs"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getOrderStatus serves the cached status when redis has it, falling back to
// the store.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	o, err := h.Service.GetOrderByID(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if o == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Code: orders.CodeOrderNotFound, Message: "no result found for specified inputs"})
		return
	}
	h.cacheStatus(r.Context(), o)
	writeJSON(w, http.StatusOK, map[string]orders.Status{"status": o.Status})
}

func (h *OrdersHandler) getOrderAmount(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	amount, err := h.Service.GetOrderAmountByOrderID(r.Context(), orderID)
	if err != nil {
		if e, ok := orders.AsError(err); ok && e.Code == orders.CodeOrderNotFound {
			writeJSON(w, http.StatusNotFound, errorBody{Code: e.Code, Message: e.Message})
			return
		}
		h.writeError(w, err)
		return
	}
	// An amount of zero is a real answer (order with no items), not a miss.
	writeJSON(w, http.StatusOK, map[string]float64{"amount": amount})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	h.cacheStatusValue(ctx, o.ID, o.Status)
}

func (h *OrdersHandler) cacheStatusValue(ctx context.Context, orderID string, status orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]orders.Status{"status": status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}
