package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
)

func TestEnsureUser(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.EnsureUser(ctx, &Principal{ID: "user-a", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	created := u.CreatedAt

	u, err = svc.EnsureUser(ctx, &Principal{ID: "user-a", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, created, u.CreatedAt)

	_, err = svc.EnsureUser(ctx, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestEnsureUserKeepsSubscription(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(models.User{ID: "user-a", Email: "a@example.com", StripePriceID: "price_pro"})

	u, err := NewService(repo).EnsureUser(context.Background(), &Principal{ID: "user-a", Email: "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "price_pro", u.StripePriceID)
}

func TestGetUserMissing(t *testing.T) {
	u, err := NewService(NewMemoryRepo()).GetUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestPrincipalContext(t *testing.T) {
	ctx := WithPrincipal(context.Background(), &Principal{ID: "user-a"})
	assert.Equal(t, "user-a", OwnerID(ctx))
	assert.Empty(t, OwnerID(context.Background()))
}
