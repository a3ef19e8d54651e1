// Package handler exposes the catalog and the vending flow over HTTP.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/currency"

	"github.com/jakaprima/vending-machine/internal/catalog"
	"github.com/jakaprima/vending-machine/internal/logger"
	"github.com/jakaprima/vending-machine/internal/machine"
	"github.com/jakaprima/vending-machine/internal/session"
)

type ProductService interface {
	Create(ctx context.Context, name string, price int64) (catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	List(ctx context.Context) ([]catalog.Product, error)
	Update(ctx context.Context, id int64, u catalog.Update) (catalog.Product, error)
	Delete(ctx context.Context, id int64) (catalog.Product, error)
}

type MachineService interface {
	InsertMoney(ctx context.Context, amount int64) (session.Session, error)
	Current(ctx context.Context) (session.Session, error)
	Cancel(ctx context.Context) (session.Session, error)
	Purchase(ctx context.Context, processID string, index int) (machine.Result, error)
}

// Denominations describes the accepted banknotes in error messages.
type Denominations struct {
	Values   []int64
	Currency currency.Unit
}

type Handler struct {
	products     ProductService
	machine      MachineService
	denoms       string
	sessionState func() string
}

type Option func(*Handler)

// WithSessionState reports the session store breaker state on /health.
func WithSessionState(fn func() string) Option {
	return func(h *Handler) { h.sessionState = fn }
}

func NewHandler(products ProductService, m MachineService, denoms Denominations, opts ...Option) *Handler {
	registerValidation()

	h := &Handler{
		products: products,
		machine:  m,
		denoms:   describeDenominations(denoms.Currency, denoms.Values),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the API. guard runs in front of catalog changes.
func (h *Handler) RegisterRoutes(r *gin.Engine, guard ...gin.HandlerFunc) {
	products := r.Group("/products")
	products.GET("/", h.listProducts)
	products.GET("/:id", h.getProduct)

	changes := products.Group("", guard...)
	changes.POST("/", h.createProduct)
	changes.PUT("/:id", h.updateProduct)
	changes.DELETE("/:id", h.deleteProduct)

	r.POST("/machine-process-money/", h.insertMoney)
	r.GET("/machine-process-money/", h.currentSession)
	r.DELETE("/machine-process-money/", h.cancelSession)

	r.GET("/purchase/:process_id/:index", h.purchase)

	r.GET("/openapi.yaml", h.openAPI)
	r.GET("/docs", h.docs)
	r.GET("/health", h.health)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}
