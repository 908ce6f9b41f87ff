package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/repository/memory"
	"github.com/mamadbah2/shopsim/internal/server/handlers"
	cartsvc "github.com/mamadbah2/shopsim/internal/service/cart"
	catalogsvc "github.com/mamadbah2/shopsim/internal/service/catalog"
	checkoutsvc "github.com/mamadbah2/shopsim/internal/service/checkout"
	commandsvc "github.com/mamadbah2/shopsim/internal/service/commands"
	"github.com/mamadbah2/shopsim/internal/storage/cartstore"
)

type staticSource struct {
	products []models.Product
	err      error
}

func (s staticSource) FetchProducts(context.Context) ([]models.Product, error) {
	return s.products, s.err
}

type harness struct {
	engine  *gin.Engine
	cart    *cartsvc.Manager
	backend *memory.Store
}

func newHarness(t *testing.T, source staticSource) harness {
	t.Helper()

	catalog := catalogsvc.NewService(source, nil)
	_ = catalog.Load(context.Background())

	backend := memory.NewStore()
	manager := cartsvc.NewManager(context.Background(), cartstore.New(backend, "", nil), catalog, nil)
	flow := checkoutsvc.NewFlow(manager, catalog, checkoutsvc.NewSimulatedGateway(0), memory.NewReceiptArchive(), nil)

	deps := handlers.Dependencies{
		Catalog:  catalog,
		Cart:     manager,
		Intents:  commandsvc.NewService(manager, nil),
		Checkout: flow,
	}
	engine, err := New(handlers.NewShopHandler(deps, nil), handlers.NewAPIHandler(deps, nil), nil)
	require.NoError(t, err)

	return harness{engine: engine, cart: manager, backend: backend}
}

func defaultSource() staticSource {
	return staticSource{products: []models.Product{
		{ID: "p1", Title: "Desk Lamp", Price: decimal.RequireFromString("10.00"), Stock: 5},
		{ID: "p2", Title: "Coffee Mug", Price: decimal.RequireFromString("5.50"), Stock: 20},
	}}
}

func (h harness) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func (h harness) postJSON(t *testing.T, target, body string) *httptest.ResponseRecorder {
	return h.do(t, http.MethodPost, target, "application/json", body)
}

func (h harness) postForm(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	return h.do(t, http.MethodPost, target, "application/x-www-form-urlencoded", values.Encode())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndex_RendersCatalogAndEmptyCart(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Desk Lamp")
	assert.Contains(t, body, "Coffee Mug")
	assert.Contains(t, body, "Your cart is empty.")
}

func TestIndex_CatalogFailureShowsNotice(t *testing.T) {
	h := newHarness(t, staticSource{err: errors.New("404")})

	rec := h.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Products could not be loaded.")
	assert.Contains(t, rec.Body.String(), "No products available.")
}

func TestDetails(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.do(t, http.MethodGet, "/products/p1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add to cart")

	rec = h.do(t, http.MethodGet, "/products/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product not found.")
}

func TestPageIntent_AddsAndShowsNotice(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.postForm(t, "/intents?cart=open", url.Values{"intent": {"add"}, "id": {"p1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Desk Lamp added to cart.")
	assert.Contains(t, body, `<span id="cart-total">10.00</span>`)
	assert.Equal(t, 1, h.cart.ItemCount())
}

func TestPageIntent_OverStockShowsWarning(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.postForm(t, "/intents", url.Values{"intent": {"add"}, "id": {"p1"}, "qty": {"6"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not enough stock available.")
	assert.Zero(t, h.cart.ItemCount())
}

func TestAPIIntent_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"add", `{"intent":"add","id":"p1","qty":2}`, http.StatusOK},
		{"over stock", `{"intent":"add","id":"p1","qty":9}`, http.StatusConflict},
		{"unknown product", `{"intent":"add","id":"zzz"}`, http.StatusNotFound},
		{"negative quantity", `{"intent":"add","id":"p1","qty":-1}`, http.StatusBadRequest},
		{"unsupported intent", `{"intent":"teleport","id":"p1"}`, http.StatusBadRequest},
		{"malformed", `{"intent":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, defaultSource())
			rec := h.postJSON(t, "/api/cart/intents", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

// Two lamps and a mug total 25.50.
func TestAPICart_Total(t *testing.T) {
	h := newHarness(t, defaultSource())

	require.Equal(t, http.StatusOK, h.postJSON(t, "/api/cart/intents", `{"intent":"add","id":"p1","qty":2}`).Code)
	require.Equal(t, http.StatusOK, h.postJSON(t, "/api/cart/intents", `{"intent":"add","id":"p2"}`).Code)

	rec := h.do(t, http.MethodGet, "/api/cart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "25.50", body["total"])
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, "idle", body["checkout_state"])
}

func TestAPICatalog(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.do(t, http.MethodGet, "/api/catalog", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	products, ok := body["products"].([]any)
	require.True(t, ok)
	require.Len(t, products, 2)
	assert.Equal(t, "10.00", products[0].(map[string]any)["price"])
	assert.NotContains(t, body, "error")
}

// An empty cart cannot be checked out and nothing is written.
func TestAPICheckout_EmptyCart(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.postJSON(t, "/api/checkout", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, err := h.backend.Get(context.Background(), cartstore.DefaultKey)
	assert.Error(t, err)
}

// A completed checkout leaves an empty cart persisted as [].
func TestAPICheckout_FullFlow(t *testing.T) {
	h := newHarness(t, defaultSource())
	require.Equal(t, http.StatusOK, h.postJSON(t, "/api/cart/intents", `{"intent":"add","id":"p2","qty":2}`).Code)

	rec := h.postJSON(t, "/api/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "awaiting_buyer_info", body["state"])

	rec = h.postJSON(t, "/api/checkout/confirm", `{"name":"  ","email":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []any{"name", "email"}, decode(t, rec)["missing"])

	rec = h.postJSON(t, "/api/checkout/confirm", `{"name":"Ada","email":"ada@example.com","address":"1 Loop Rd"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	receipt, ok := decode(t, rec)["receipt"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "11.00", receipt["total"])

	assert.Zero(t, h.cart.ItemCount())
	raw, err := h.backend.Get(context.Background(), cartstore.DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, raw)
}

func TestAPICheckout_CancelWithoutForm(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.postJSON(t, "/api/checkout/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPageCheckout_ValidationAndReceipt(t *testing.T) {
	h := newHarness(t, defaultSource())
	require.Equal(t, http.StatusOK, h.postForm(t, "/intents", url.Values{"intent": {"add"}, "id": {"p1"}}).Code)

	rec := h.postForm(t, "/checkout?cart=open", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment form")
	assert.Contains(t, rec.Body.String(), "user@example.com")

	rec = h.postForm(t, "/checkout/confirm?cart=open", url.Values{"name": {""}, "email": {"a@b.c"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Name and email are required.")

	rec = h.postForm(t, "/checkout/confirm", url.Values{"name": {"Ada"}, "email": {"a@b.c"}, "address": {"x"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Payment OK")
	assert.Contains(t, body, "Desk Lamp x1 - $10.00")
	assert.Contains(t, body, "Your cart is empty.")
}

func TestPageCheckout_EmptyCartNotice(t *testing.T) {
	h := newHarness(t, defaultSource())

	rec := h.postForm(t, "/checkout", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add products before paying.")
	assert.NotContains(t, rec.Body.String(), "Payment form")
}

func TestAPICheckout_CartEmptiedWhileFormOpen(t *testing.T) {
	h := newHarness(t, defaultSource())
	require.Equal(t, http.StatusOK, h.postJSON(t, "/api/cart/intents", `{"intent":"add","id":"p1"}`).Code)
	require.Equal(t, http.StatusOK, h.postJSON(t, "/api/checkout", "").Code)
	require.Equal(t, http.StatusOK, h.postJSON(t, "/api/cart/intents", `{"intent":"remove","id":"p1"}`).Code)

	rec := h.postJSON(t, "/api/checkout/confirm", `{"name":"Ada","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotContains(t, decode(t, rec), "receipt")

	rec = h.do(t, http.MethodGet, "/api/cart", "", "")
	assert.Equal(t, "idle", decode(t, rec)["checkout_state"])
}
