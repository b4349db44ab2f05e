package main

import (
	"fmt"

	"github.com/goodtune/workday/internal/config"
	"github.com/goodtune/workday/internal/storage"
	"github.com/goodtune/workday/internal/storage/bolt"
	"github.com/goodtune/workday/internal/storage/redis"
)

// openStorage opens the configured storage backend
func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
