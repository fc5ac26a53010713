package storage

import (
	"context"
	"sync"
	"time"
)

type ledgerEntry struct {
	owner     string
	expiresAt time.Time
}

// MemoryLedger is a process-local KeyLedger for inline mode and tests.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]ledgerEntry
	now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]ledgerEntry), now: time.Now}
}

func (l *MemoryLedger) Claim(_ context.Context, key, owner string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok && l.now().Before(e.expiresAt) {
		return ErrKeyTaken
	}
	l.entries[key] = ledgerEntry{owner: owner, expiresAt: l.now().Add(ttl)}
	return nil
}

func (l *MemoryLedger) OwnerOf(_ context.Context, key string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !l.now().Before(e.expiresAt) {
		return "", nil
	}
	return e.owner, nil
}

func (l *MemoryLedger) Forget(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}
