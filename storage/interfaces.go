package storage

import (
	"context"
	"time"

	"github.com/poiesic/wordbook/core"
)

type ResultCache interface {
	// Get returns the results stored under key.
	// Returns ErrNotFound if the key is missing or has expired.
	// A stored empty list is returned as an empty, non-nil slice.
	Get(ctx context.Context, key string) ([]core.LookupResult, error)

	// Put stores results under key, replacing any previous value.
	// A ttl of zero or less keeps the entry until the cache is closed.
	Put(ctx context.Context, key string, results []core.LookupResult, ttl time.Duration) error

	// Close releases the cache.
	Close() error
}
