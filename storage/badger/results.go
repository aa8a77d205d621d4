package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/storage"
)

// ResultCache stores lookup results in badger, relying on badger's
// per-entry TTL for expiry.
type ResultCache struct {
	backend *Backend
	owned   bool
}

var _ storage.ResultCache = (*ResultCache)(nil)

// NewResultCache creates a cache on an open backend. Closing the cache
// leaves the backend open.
func NewResultCache(backend *Backend) (storage.ResultCache, error) {
	return newResultCache(backend, false)
}

func newResultCache(backend *Backend, owned bool) (*ResultCache, error) {
	if backend == nil {
		return nil, fmt.Errorf("badger: backend cannot be nil")
	}
	return &ResultCache{backend: backend, owned: owned}, nil
}

func (c *ResultCache) Get(ctx context.Context, key string) ([]core.LookupResult, error) {
	if key == "" {
		return nil, storage.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []core.LookupResult
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeResultKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			results, err = storage.UnmarshalResults(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (c *ResultCache) Put(ctx context.Context, key string, results []core.LookupResult, ttl time.Duration) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	value := storage.MarshalResults(results)
	return c.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeResultKey(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return tx.SetEntry(entry)
	}, true)
}

// Len returns the number of unexpired entries.
func (c *ResultCache) Len() (int, error) {
	return c.backend.CountPrefix([]byte(lookupResultPrefix + ":"))
}

// Purge removes every entry.
func (c *ResultCache) Purge() error {
	return c.backend.DropPrefix([]byte(lookupResultPrefix + ":"))
}

// Close closes the backend when the cache created it.
func (c *ResultCache) Close() error {
	if c.owned {
		return c.backend.Close()
	}
	return nil
}
