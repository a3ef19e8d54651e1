package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/jakaprima/vending-machine/internal/catalog"
	"github.com/jakaprima/vending-machine/internal/denomination"
	"github.com/jakaprima/vending-machine/internal/handler"
	"github.com/jakaprima/vending-machine/internal/machine"
	"github.com/jakaprima/vending-machine/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiError struct {
	Error       string            `json:"error"`
	Detail      string            `json:"detail"`
	ProductList []catalog.Product `json:"product_list"`
	Description string            `json:"description"`
}

type server struct {
	engine *gin.Engine
	mr     *miniredis.Miniredis
}

func newServer(t *testing.T, guard ...gin.HandlerFunc) server {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	prices := denomination.MustNew(2000, 5000)
	products := catalog.NewService(catalog.NewMemoryRepository(), prices)
	m := machine.New(products, session.NewRedisStore(client, 0), prices)

	h := handler.NewHandler(products, m, handler.Denominations{
		Values:   prices.Values(),
		Currency: currency.IDR,
	})

	r := gin.New()
	h.RegisterRoutes(r, guard...)

	return server{engine: r, mr: mr}
}

func (s server) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.engine.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (s server) createProduct(t *testing.T, name string, price int64) catalog.Product {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/products/", gin.H{"name": name, "price": price})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[catalog.Product](t, rr)
}

func TestCreateProduct(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name      string
		body      any
		wantCode  int
		wantError string
	}{
		{
			name:     "payable price: ok",
			body:     gin.H{"name": "Water", "price": 7000},
			wantCode: http.StatusCreated,
		},
		{
			name:      "duplicate name: error",
			body:      gin.H{"name": "Water", "price": 2000},
			wantCode:  http.StatusBadRequest,
			wantError: "duplicate_name",
		},
		{
			name:      "unpayable price: error",
			body:      gin.H{"name": "Soda", "price": 3000},
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_price",
		},
		{
			name:      "zero price: error",
			body:      gin.H{"name": "Soda", "price": 0},
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_price",
		},
		{
			name:      "missing price: error",
			body:      gin.H{"name": "Soda"},
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_request",
		},
		{
			name:      "blank name: error",
			body:      gin.H{"name": "   ", "price": 2000},
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_name",
		},
		{
			name:      "price as string: error",
			body:      `{"name":"Soda","price":"2000"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_request",
		},
		{
			name:      "malformed json: error",
			body:      `{"name":`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, "/products/", tt.body)
			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())

			if tt.wantError == "" {
				p := decode[catalog.Product](t, rr)
				assert.NotZero(t, p.ID)
				assert.Equal(t, "Water", p.Name)
				assert.Equal(t, int64(7000), p.Price)
				return
			}
			assert.Equal(t, tt.wantError, decode[apiError](t, rr).Error)
		})
	}
}

func TestInvalidPriceMessageNamesDenominations(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodPost, "/products/", gin.H{"name": "Soda", "price": 3000})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	body := decode[apiError](t, rr)
	assert.Contains(t, body.Detail, "The rule is that the vending machine can only accept denominations")
	assert.Contains(t, body.Detail, " and ")
}

func TestMissingFieldMessageUsesJSONName(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodPost, "/machine-process-money/", gin.H{})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "amount is required", decode[apiError](t, rr).Detail)
}

func TestProductLifecycle(t *testing.T) {
	s := newServer(t)

	name := gofakeit.ProductName()
	created := s.createProduct(t, name, 5000)

	rr := s.do(t, http.MethodGet, fmt.Sprintf("/products/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created, decode[catalog.Product](t, rr))

	rr = s.do(t, http.MethodPut, fmt.Sprintf("/products/%d", created.ID), gin.H{"price": 9000})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[catalog.Product](t, rr)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, int64(9000), updated.Price)

	rr = s.do(t, http.MethodPut, fmt.Sprintf("/products/%d", created.ID), gin.H{"price": 1000})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_price", decode[apiError](t, rr).Error)

	rr = s.do(t, http.MethodGet, "/products/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []catalog.Product{updated}, decode[[]catalog.Product](t, rr))

	rr = s.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, updated, decode[catalog.Product](t, rr))

	rr = s.do(t, http.MethodGet, fmt.Sprintf("/products/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	body := decode[apiError](t, rr)
	assert.Equal(t, "not_found", body.Error)
	assert.Equal(t, "Product not found", body.Detail)

	rr = s.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListProductsEmpty(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodGet, "/products/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestProductIDMustBeInteger(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodGet, "/products/abc", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decode[apiError](t, rr).Error)
}

func TestUpdateToTakenName(t *testing.T) {
	s := newServer(t)

	s.createProduct(t, "Water", 2000)
	soda := s.createProduct(t, "Soda", 5000)

	rr := s.do(t, http.MethodPut, fmt.Sprintf("/products/%d", soda.ID), gin.H{"name": "Water"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[apiError](t, rr)
	assert.Equal(t, "duplicate_name", body.Error)
	assert.Equal(t, "Product with this name already exists.", body.Detail)
}

func TestVendingFlow(t *testing.T) {
	s := newServer(t)

	s.createProduct(t, "Product 1", 5000)
	s.createProduct(t, "aqua", 7000)
	s.createProduct(t, "Premium", 20000)

	rr := s.do(t, http.MethodPost, "/machine-process-money/", gin.H{"amount": 10000})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	inserted := decode[struct {
		Process     string            `json:"process"`
		Purchasable []catalog.Product `json:"productPurchaseAble"`
	}](t, rr)
	require.NotEmpty(t, inserted.Process)
	require.Len(t, inserted.Purchasable, 2)
	assert.Equal(t, "Product 1", inserted.Purchasable[0].Name)

	rr = s.do(t, http.MethodGet, "/machine-process-money/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	current := decode[struct {
		Process string `json:"process"`
		Amount  int64  `json:"amount"`
	}](t, rr)
	assert.Equal(t, inserted.Process, current.Process)
	assert.Equal(t, int64(10000), current.Amount)

	rr = s.do(t, http.MethodPost, "/machine-process-money/", gin.H{"amount": 5000})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	busy := decode[apiError](t, rr)
	assert.Equal(t, "session_busy", busy.Error)
	assert.Equal(t, machine.BusyDescription, busy.Description)
	assert.Equal(t, inserted.Purchasable, busy.ProductList)

	rr = s.do(t, http.MethodGet, "/purchase/"+inserted.Process+"/0", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{
		"selected_product_name": "Product 1",
		"amount": 10000,
		"quantity": "2",
		"output": "2 Product 1"
	}`, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/purchase/"+inserted.Process+"/0", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[apiError](t, rr)
	assert.Equal(t, "no_active_session", body.Error)
	assert.Equal(t, "please insert money, use API /machine-process-money.", body.Detail)
}

func TestInsertUnsupportedAmount(t *testing.T) {
	s := newServer(t)

	for _, amount := range []int64{1000, 3000, 0, -2000} {
		rr := s.do(t, http.MethodPost, "/machine-process-money/", gin.H{"amount": amount})
		require.Equalf(t, http.StatusBadRequest, rr.Code, "amount %d", amount)
		assert.Equal(t, "unsupported_amount", decode[apiError](t, rr).Error)
	}

	assert.False(t, s.mr.Exists(session.DefaultKey))
}

func TestPurchaseErrors(t *testing.T) {
	s := newServer(t)
	s.createProduct(t, "Water", 2000)

	rr := s.do(t, http.MethodPost, "/machine-process-money/", gin.H{"amount": 2000})
	require.Equal(t, http.StatusOK, rr.Code)
	process := decode[struct {
		Process string `json:"process"`
	}](t, rr).Process

	tests := []struct {
		name      string
		path      string
		wantError string
	}{
		{name: "index out of range", path: "/purchase/" + process + "/5", wantError: "invalid_selection"},
		{name: "negative index", path: "/purchase/" + process + "/-1", wantError: "invalid_selection"},
		{name: "non-integer index", path: "/purchase/" + process + "/first", wantError: "invalid_request"},
		{name: "other process", path: "/purchase/not-mine/0", wantError: "process_mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantError, decode[apiError](t, rr).Error)
		})
	}

	assert.True(t, s.mr.Exists(session.DefaultKey))
}

func TestCancelSession(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodDelete, "/machine-process-money/", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "no_active_session", decode[apiError](t, rr).Error)

	rr = s.do(t, http.MethodPost, "/machine-process-money/", gin.H{"amount": 7000})
	require.Equal(t, http.StatusOK, rr.Code)
	process := decode[struct {
		Process string `json:"process"`
	}](t, rr).Process

	rr = s.do(t, http.MethodDelete, "/machine-process-money/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"process":%q,"refund":7000}`, process), rr.Body.String())

	rr = s.do(t, http.MethodGet, "/machine-process-money/", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGuardProtectsCatalogChanges(t *testing.T) {
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	s := newServer(t, deny)

	rr := s.do(t, http.MethodPost, "/products/", gin.H{"name": "Water", "price": 2000})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, http.MethodDelete, "/products/1", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, http.MethodGet, "/products/", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRedisOutageIsInternalError(t *testing.T) {
	s := newServer(t)
	s.mr.Close()

	rr := s.do(t, http.MethodGet, "/machine-process-money/", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal_error", decode[apiError](t, rr).Error)
}

type unavailableMachine struct{}

func (unavailableMachine) InsertMoney(context.Context, int64) (session.Session, error) {
	return session.Session{}, fmt.Errorf("insert: %w", session.ErrUnavailable)
}

func (unavailableMachine) Current(context.Context) (session.Session, error) {
	return session.Session{}, fmt.Errorf("current: %w", session.ErrUnavailable)
}

func (unavailableMachine) Cancel(context.Context) (session.Session, error) {
	return session.Session{}, errors.New("boom")
}

func (unavailableMachine) Purchase(context.Context, string, int) (machine.Result, error) {
	return machine.Result{}, session.ErrUnavailable
}

func TestOpenCircuitIsServiceUnavailable(t *testing.T) {
	prices := denomination.MustNew(2000, 5000)
	products := catalog.NewService(catalog.NewMemoryRepository(), prices)
	h := handler.NewHandler(products, unavailableMachine{}, handler.Denominations{
		Values:   prices.Values(),
		Currency: currency.IDR,
	})
	r := gin.New()
	h.RegisterRoutes(r)
	s := server{engine: r}

	rr := s.do(t, http.MethodGet, "/machine-process-money/", nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "unavailable", decode[apiError](t, rr).Error)

	rr = s.do(t, http.MethodDelete, "/machine-process-money/", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestOpenAPIServed(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodGet, "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "openapi:")
	assert.Contains(t, rr.Body.String(), "/machine-process-money/")

	rr = s.do(t, http.MethodGet, "/docs", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "swagger-ui")

	rr = s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHealthReportsSessionStoreState(t *testing.T) {
	prices := denomination.MustNew(2000, 5000)
	products := catalog.NewService(catalog.NewMemoryRepository(), prices)

	state := "closed"
	h := handler.NewHandler(products, unavailableMachine{}, handler.Denominations{
		Values:   prices.Values(),
		Currency: currency.IDR,
	}, handler.WithSessionState(func() string { return state }))
	r := gin.New()
	h.RegisterRoutes(r)
	s := server{engine: r}

	rr := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","session_store":"closed"}`, rr.Body.String())

	state = "open"
	rr = s.do(t, http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"status":"degraded","session_store":"open"}`, rr.Body.String())
}

func TestLargeUnpayableAmountsAreRejected(t *testing.T) {
	s := newServer(t)

	rr := s.do(t, http.MethodPost, "/products/", `{"name":"Bulk","price":100000000000001}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_price", decode[apiError](t, rr).Error)

	rr = s.do(t, http.MethodPost, "/machine-process-money/", `{"amount":9223372036854775807}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "unsupported_amount", decode[apiError](t, rr).Error)

	rr = s.do(t, http.MethodPost, "/products/", `{"name":"Bulk","price":100000000000000}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}
