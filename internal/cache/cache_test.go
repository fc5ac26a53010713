package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/storage"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, "pdfchat"), mr
}

func TestCacheGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var v string
	assert.ErrorIs(t, c.Get(context.Background(), "absent", &v), ErrMiss)
}

func TestStatusCacheOnlyStoresTerminal(t *testing.T) {
	c, mr := newTestCache(t)
	sc := NewStatusCache(c)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, sc.Put(ctx, id, "user-a", models.StateProcessing))
	_, ok, err := sc.Get(ctx, id, "user-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sc.Put(ctx, id, "user-a", models.StateSuccess))
	state, ok, err := sc.Get(ctx, id, "user-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.StateSuccess, state)
	assert.True(t, mr.Exists("pdfchat:status:user-a:"+id.String()))

	_, ok, err = sc.Get(ctx, id, "user-b")
	require.NoError(t, err)
	assert.False(t, ok, "entries are owner scoped")

	require.NoError(t, sc.Invalidate(ctx, id, "user-a"))
	_, ok, err = sc.Get(ctx, id, "user-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedgerClaimOnce(t *testing.T) {
	c, mr := newTestCache(t)
	l := NewLedger(c)
	ctx := context.Background()

	require.NoError(t, l.Claim(ctx, "k1-a.pdf", "user-a", time.Minute))
	assert.ErrorIs(t, l.Claim(ctx, "k1-a.pdf", "user-b", time.Minute), storage.ErrKeyTaken)

	owner, err := l.OwnerOf(ctx, "k1-a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "user-a", owner)

	mr.FastForward(2 * time.Minute)
	owner, err = l.OwnerOf(ctx, "k1-a.pdf")
	require.NoError(t, err)
	assert.Empty(t, owner)
}
