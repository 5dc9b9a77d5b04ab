// Package storage defines the durable key-value slot saved reports live in and opens the
// configured implementation.
package storage

import (
	"context"
	"fmt"

	"github.com/aura-dashboard/backend/internal/storage/memory"
	"github.com/aura-dashboard/backend/internal/storage/redis"
	"github.com/aura-dashboard/backend/internal/storage/sqlite"
	"github.com/aura-dashboard/backend/pkg/config"
)

// Backend is a string key-value store. Get reports ok=false for an absent key.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageSQLite:
		client, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := client.InitSchema(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return client, nil
	case config.StorageRedis:
		client, err := redis.NewClient(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
