package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jakaprima/vending-machine/internal/catalog"
	"github.com/jakaprima/vending-machine/internal/config"
	"github.com/jakaprima/vending-machine/internal/denomination"
	"github.com/jakaprima/vending-machine/internal/handler"
	"github.com/jakaprima/vending-machine/internal/logger"
	"github.com/jakaprima/vending-machine/internal/machine"
	"github.com/jakaprima/vending-machine/internal/middleware"
	"github.com/jakaprima/vending-machine/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router, err := newRouter(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func newRouter(cfg config.Config, infra *Infra) (*gin.Engine, error) {
	prices, err := denomination.New(cfg.Denominations...)
	if err != nil {
		return nil, fmt.Errorf("denominations: %w", err)
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessions := session.NewBreakerStore(
		session.NewRedisStore(infra.Redis.Client, cfg.SessionTTL),
		session.BreakerConfig{
			ConsecutiveFailures: cfg.RedisBreakerFailures,
			OpenTimeout:         cfg.RedisBreakerTimeout,
		},
	)

	products := catalog.NewService(infra.catalogRepository(), prices)
	vending := machine.New(products, sessions, prices)

	h := handler.NewHandler(products, vending, handler.Denominations{
		Values:   prices.Values(),
		Currency: cfg.CurrencyUnit(),
	}, handler.WithSessionState(sessions.State))

	operator := middleware.NewOperatorMiddleware(cfg.OperatorKeyHash)
	if !operator.Enabled() {
		logger.Warn("OPERATOR_KEY_HASH not set, catalog changes are open", nil)
	}

	// ----------------------------
	// Router
	// ----------------------------

	panics, err := zap.NewStdLogAt(logger.L(), zapcore.ErrorLevel)
	if err != nil {
		return nil, fmt.Errorf("recovery logger: %w", err)
	}

	router := gin.New()
	router.Use(
		gin.RecoveryWithWriter(panics.Writer()),
		middleware.RequestID(),
		middleware.AccessLog(),
	)

	h.RegisterRoutes(router, middleware.GinRequireOperator(operator))

	logger.Info("vending machine configured", map[string]any{
		"catalog":       cfg.CatalogStore,
		"denominations": prices.Values(),
		"currency":      cfg.CurrencyUnit().String(),
		"session_ttl":   cfg.SessionTTL.String(),
	})

	return router, nil
}
