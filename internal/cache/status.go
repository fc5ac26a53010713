package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

const statusTTL = 10 * time.Minute

// StatusCache holds terminal document states so status polling does not hit
// Postgres once processing has finished. Non-terminal states are never
// cached.
type StatusCache struct {
	cache *Cache
}

func NewStatusCache(c *Cache) *StatusCache {
	return &StatusCache{cache: c}
}

func statusKey(documentID uuid.UUID, owner string) string {
	return "status:" + owner + ":" + documentID.String()
}

func (s *StatusCache) Get(ctx context.Context, documentID uuid.UUID, owner string) (models.DocumentState, bool, error) {
	var state models.DocumentState
	err := s.cache.Get(ctx, statusKey(documentID, owner), &state)
	if errors.Is(err, ErrMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return state, true, nil
}

func (s *StatusCache) Put(ctx context.Context, documentID uuid.UUID, owner string, state models.DocumentState) error {
	if !state.Terminal() {
		return nil
	}
	return s.cache.Set(ctx, statusKey(documentID, owner), state, statusTTL)
}

func (s *StatusCache) Invalidate(ctx context.Context, documentID uuid.UUID, owner string) error {
	return s.cache.Delete(ctx, statusKey(documentID, owner))
}
