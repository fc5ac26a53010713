package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
)

type fakeStore struct {
	objects     map[string]bool
	uploadTTL   time.Duration
	downloadTTL time.Duration
	maxBytes    int64
	failHead    error
	failDelete  error
	deletes     int
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string]bool{}} }

func (f *fakeStore) PresignUpload(_ context.Context, key string, maxBytes int64, ttl time.Duration) (*UploadCredential, error) {
	f.uploadTTL = ttl
	f.maxBytes = maxBytes
	return &UploadCredential{URL: "https://store.test/docs", Fields: map[string]string{"key": key}}, nil
}

func (f *fakeStore) PresignDownload(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.downloadTTL = ttl
	return "https://store.test/docs/" + key + "?sig=1", nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	if f.failHead != nil {
		return false, f.failHead
	}
	return f.objects[key], nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deletes++
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Locator(key string) string { return "https://store.test/docs/" + key }

func newTestGateway(store ObjectStore) *Gateway {
	return NewGateway(store, NewMemoryLedger(), GatewayConfig{})
}

func TestIssueUploadCredential(t *testing.T) {
	store := newFakeStore()
	gw := newTestGateway(store)
	ctx := context.Background()

	cred, err := gw.IssueUploadCredential(ctx, "user-a", "report.pdf", 8<<20)
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, store.uploadTTL)
	assert.Equal(t, int64(8<<20), store.maxBytes)
	assert.Contains(t, cred.StorageKey, "-report.pdf")
	assert.False(t, cred.ExpiresAt.IsZero())

	other, err := gw.IssueUploadCredential(ctx, "user-a", "report.pdf", 8<<20)
	require.NoError(t, err)
	assert.NotEqual(t, cred.StorageKey, other.StorageKey)
}

func TestIssueUploadCredentialRejectsBadName(t *testing.T) {
	gw := newTestGateway(newFakeStore())

	_, err := gw.IssueUploadCredential(context.Background(), "user-a", "../secret", 1)
	_, ok := apperr.IsValidation(err)
	assert.True(t, ok)
}

func TestIssueUploadCredentialKeyCollision(t *testing.T) {
	gw := newTestGateway(newFakeStore())
	gw.newToken = func() string { return "fixed" }
	ctx := context.Background()

	_, err := gw.IssueUploadCredential(ctx, "user-a", "a.pdf", 1)
	require.NoError(t, err)
	_, err = gw.IssueUploadCredential(ctx, "user-b", "a.pdf", 1)
	assert.ErrorIs(t, err, ErrKeyTaken)
}

func TestIssueDownloadCredentialClampsTTL(t *testing.T) {
	store := newFakeStore()
	gw := newTestGateway(store)

	cred, err := gw.IssueDownloadCredential(context.Background(), "k.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, store.downloadTTL)
	assert.Contains(t, cred.URL, "k.pdf")

	_, err = gw.IssueDownloadCredential(context.Background(), "k.pdf", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, store.downloadTTL)
}

func TestVerifyUpload(t *testing.T) {
	store := newFakeStore()
	gw := newTestGateway(store)
	ctx := context.Background()

	cred, err := gw.IssueUploadCredential(ctx, "user-a", "report.pdf", 1)
	require.NoError(t, err)

	_, ok := apperr.IsValidation(gw.VerifyUpload(ctx, "user-a", cred.StorageKey))
	assert.True(t, ok, "object not uploaded yet")

	store.objects[cred.StorageKey] = true
	assert.NoError(t, gw.VerifyUpload(ctx, "user-a", cred.StorageKey))
	assert.ErrorIs(t, gw.VerifyUpload(ctx, "user-b", cred.StorageKey), apperr.ErrNotFound)
	assert.ErrorIs(t, gw.VerifyUpload(ctx, "user-a", "never-issued.pdf"), apperr.ErrNotFound)

	store.failHead = errors.New("timeout")
	assert.True(t, apperr.IsRetryable(gw.VerifyUpload(ctx, "user-a", cred.StorageKey)))
}

func TestReleaseIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.objects["k.pdf"] = true
	gw := newTestGateway(store)

	require.NoError(t, gw.Release(context.Background(), "k.pdf"))
	require.NoError(t, gw.Release(context.Background(), "k.pdf"))
	assert.Equal(t, 2, store.deletes)

	store.failDelete = errors.New("503")
	assert.True(t, apperr.IsRetryable(gw.Release(context.Background(), "k.pdf")))
}

func TestMemoryLedgerExpiry(t *testing.T) {
	l := NewMemoryLedger()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, l.Claim(ctx, "k", "user-a", time.Minute))
	owner, err := l.OwnerOf(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "user-a", owner)

	now = now.Add(2 * time.Minute)
	owner, err = l.OwnerOf(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, owner)
}
