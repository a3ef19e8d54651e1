package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakaprima/vending-machine/internal/catalog"
	"github.com/jakaprima/vending-machine/internal/config"
	"github.com/jakaprima/vending-machine/internal/db"
	"github.com/jakaprima/vending-machine/internal/logger"
	"github.com/jakaprima/vending-machine/internal/redis"
)

type Infra struct {
	// nil when the catalog is kept in memory
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	if cfg.CatalogStore == config.CatalogPostgres {
		if err := db.Migrate(ctx, cfg.DatabaseDSN); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}

		sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		infra.DB = sqlDB

		logger.Info("database ready", nil)
	}

	redisClient, err := redis.New(ctx, redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	infra.Redis = redisClient

	logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})

	return infra, nil
}

func (i *Infra) catalogRepository() catalog.Repository {
	if i.DB == nil {
		return catalog.NewMemoryRepository()
	}
	return catalog.NewPostgresRepository(i.DB)
}

func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	return errors.Join(errs...)
}
