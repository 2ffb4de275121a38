package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/savoria/order-service/internal/auth"
	"github.com/savoria/order-service/internal/orders"
)

// stubService returns canned results; the orchestrator itself is covered by
// its own package tests.
type stubService struct {
	placeOrder  func(ctx context.Context, customerID, restaurantID string, lines []orders.ItemInput) (*orders.Order, error)
	cancelOK    bool
	cancelErr   error
	getOrder    *orders.Order
	amount      float64
	amountErr   error
	updateRes   *orders.UpdateResult
	updateErr   error
	gotToken    string
	gotCustomer string
}

func (s *stubService) PlaceOrder(ctx context.Context, customerID, restaurantID string, lines []orders.ItemInput) (*orders.Order, error) {
	s.gotToken, _ = auth.TokenFromContext(ctx)
	s.gotCustomer = customerID
	if s.placeOrder != nil {
		return s.placeOrder(ctx, customerID, restaurantID, lines)
	}
	return &orders.Order{ID: "o1", CustomerID: customerID, RestaurantID: restaurantID, Status: orders.StatusCreated}, nil
}

func (s *stubService) UpdateOrder(ctx context.Context, orderID, customerID, restaurantID string, lines []orders.ItemInput) (*orders.UpdateResult, error) {
	return s.updateRes, s.updateErr
}

func (s *stubService) CancelOrder(ctx context.Context, orderID, customerID string) (bool, error) {
	return s.cancelOK, s.cancelErr
}

func (s *stubService) GetOrderByID(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.getOrder, nil
}

func (s *stubService) GetOrderAmountByOrderID(ctx context.Context, orderID string) (float64, error) {
	return s.amount, s.amountErr
}

func newTestRouter(svc OrderService) http.Handler {
	r := NewRouter()
	h := &OrdersHandler{Service: svc, Log: zap.NewNop()}
	h.Register(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestMissingBearerIsRejected(t *testing.T) {
	h := newTestRouter(&stubService{})
	w := doJSON(t, h, http.MethodGet, "/order/o1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "credential_missing", body.Code)
}

func TestPlaceOrderForwardsTokenAndReturnsOrder(t *testing.T) {
	svc := &stubService{}
	h := newTestRouter(svc)

	w := doJSON(t, h, http.MethodPost, "/order", "tok-1", PlaceOrderRequest{
		CustomerID:   "c1",
		RestaurantID: "r1",
		Items:        []orders.ItemInput{{ItemID: "i1", Quantity: 2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "tok-1", svc.gotToken)
	assert.Equal(t, "c1", svc.gotCustomer)

	var o orders.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	assert.Equal(t, orders.StatusCreated, o.Status)
}

func TestPlaceOrderValidationMapsTo400(t *testing.T) {
	svc := &stubService{placeOrder: func(ctx context.Context, customerID, restaurantID string, lines []orders.ItemInput) (*orders.Order, error) {
		return nil, orders.Validation(orders.CodeInvalidQuantity, "quantity of item cannot be 0")
	}}
	h := newTestRouter(svc)

	w := doJSON(t, h, http.MethodPost, "/order", "tok", PlaceOrderRequest{CustomerID: "c1", RestaurantID: "r1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, orders.CodeInvalidQuantity, body.Code)
}

func TestPlaceOrderInternalMapsTo500WithoutDetail(t *testing.T) {
	svc := &stubService{placeOrder: func(ctx context.Context, customerID, restaurantID string, lines []orders.ItemInput) (*orders.Order, error) {
		return nil, orders.Internal("save order", context.DeadlineExceeded)
	}}
	h := newTestRouter(svc)

	w := doJSON(t, h, http.MethodPost, "/order", "tok", PlaceOrderRequest{CustomerID: "c1", RestaurantID: "r1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "deadline")
}

func TestPlaceOrderBadJSON(t *testing.T) {
	h := newTestRouter(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelOrderNotFoundIs404(t *testing.T) {
	h := newTestRouter(&stubService{cancelOK: false})
	w := doJSON(t, h, http.MethodPut, "/order/cancel/o1?customerId=c1", "tok", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelOrderOK(t *testing.T) {
	h := newTestRouter(&stubService{cancelOK: true})
	w := doJSON(t, h, http.MethodPut, "/order/cancel/o1?customerId=c1", "tok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCancelOrderRequiresCustomerID(t *testing.T) {
	h := newTestRouter(&stubService{cancelOK: true})
	w := doJSON(t, h, http.MethodPut, "/order/cancel/o1", "tok", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderNotFoundIs404(t *testing.T) {
	h := newTestRouter(&stubService{getOrder: nil})
	w := doJSON(t, h, http.MethodGet, "/order/missing", "tok", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderAmountZeroIs200(t *testing.T) {
	h := newTestRouter(&stubService{amount: 0})
	w := doJSON(t, h, http.MethodGet, "/order/value/o1", "tok", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Zero(t, body["amount"])
}

func TestGetOrderAmountUnknownOrderIs404(t *testing.T) {
	h := newTestRouter(&stubService{
		amountErr: orders.Validation(orders.CodeOrderNotFound, "order not found"),
	})
	w := doJSON(t, h, http.MethodGet, "/order/value/missing", "tok", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthErrorMapsTo401(t *testing.T) {
	svc := &stubService{placeOrder: func(ctx context.Context, customerID, restaurantID string, lines []orders.ItemInput) (*orders.Order, error) {
		return nil, orders.Auth(orders.CodeCredentialRejected, "catalog rejected credential")
	}}
	h := newTestRouter(svc)

	w := doJSON(t, h, http.MethodPost, "/order", "expired", PlaceOrderRequest{CustomerID: "c1", RestaurantID: "r1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
