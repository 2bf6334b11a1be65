package storage

import (
	"context"

	"github.com/nrhodes/burstqueue/pkg/models"
)

// ConfigStore is the per-pool runtime parameter lookup described in
// spec.md §4.6. It has no foreign-key relationship to slots.
type ConfigStore interface {
	// Get returns the config for poolID, or ErrConfigNotFound if none was
	// ever set.
	Get(ctx context.Context, poolID string) (models.PoolConfig, error)

	// Put creates or replaces the config for a pool.
	Put(ctx context.Context, cfg models.PoolConfig) error
}
