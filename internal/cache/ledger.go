package cache

import (
	"context"
	"errors"
	"time"

	"github.com/nikhilbhutani/pdfchat/internal/storage"
)

// Ledger is the Redis-backed storage.KeyLedger shared by API replicas.
type Ledger struct {
	cache *Cache
}

func NewLedger(c *Cache) *Ledger {
	return &Ledger{cache: c}
}

func ledgerKey(key string) string { return "upload:" + key }

func (l *Ledger) Claim(ctx context.Context, key, owner string, ttl time.Duration) error {
	ok, err := l.cache.SetNX(ctx, ledgerKey(key), owner, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return storage.ErrKeyTaken
	}
	return nil
}

func (l *Ledger) OwnerOf(ctx context.Context, key string) (string, error) {
	var owner string
	err := l.cache.Get(ctx, ledgerKey(key), &owner)
	if errors.Is(err, ErrMiss) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return owner, nil
}

func (l *Ledger) Forget(ctx context.Context, key string) error {
	return l.cache.Delete(ctx, ledgerKey(key))
}

var _ storage.KeyLedger = (*Ledger)(nil)
