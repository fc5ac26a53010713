package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
)

// ErrKeyTaken is returned by a KeyLedger when the key was already issued.
var ErrKeyTaken = errors.New("storage key already issued")

// KeyLedger remembers which owner each upload key was issued to.
type KeyLedger interface {
	Claim(ctx context.Context, key, owner string, ttl time.Duration) error
	// OwnerOf returns "" when the key is unknown or has expired.
	OwnerOf(ctx context.Context, key string) (string, error)
	Forget(ctx context.Context, key string) error
}

type GatewayConfig struct {
	UploadTTL   time.Duration
	DownloadTTL time.Duration
	LedgerTTL   time.Duration
}

type Gateway struct {
	store    ObjectStore
	ledger   KeyLedger
	cfg      GatewayConfig
	newToken func() string
	now      func() time.Time
}

func NewGateway(store ObjectStore, ledger KeyLedger, cfg GatewayConfig) *Gateway {
	if cfg.UploadTTL <= 0 {
		cfg.UploadTTL = 60 * time.Second
	}
	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = 5 * time.Minute
	}
	if cfg.LedgerTTL < cfg.UploadTTL {
		cfg.LedgerTTL = 24 * time.Hour
	}
	return &Gateway{
		store:    store,
		ledger:   ledger,
		cfg:      cfg,
		newToken: randomToken,
		now:      time.Now,
	}
}

// IssueUploadCredential mints a fresh storage key for owner and returns a
// presigned POST limited to maxBytes. The key is never reused.
func (g *Gateway) IssueUploadCredential(ctx context.Context, owner, fileName string, maxBytes int64) (*UploadCredential, error) {
	if owner == "" {
		return nil, apperr.ErrUnauthorized
	}
	key, err := newStorageKey(g.newToken(), fileName)
	if err != nil {
		return nil, apperr.Validation("Invalid file name")
	}

	if err := g.ledger.Claim(ctx, key, owner, g.cfg.LedgerTTL); err != nil {
		if errors.Is(err, ErrKeyTaken) {
			return nil, fmt.Errorf("issue upload credential: %w", err)
		}
		return nil, apperr.Infra("claim storage key", err)
	}

	cred, err := g.store.PresignUpload(ctx, key, maxBytes, g.cfg.UploadTTL)
	if err != nil {
		_ = g.ledger.Forget(ctx, key)
		return nil, apperr.Infra("presign upload", err)
	}
	cred.StorageKey = key
	cred.ExpiresAt = g.now().Add(g.cfg.UploadTTL)
	return cred, nil
}

// IssueDownloadCredential returns a read URL for key. Callers must have
// already checked that the requester owns the document behind key. A zero or
// oversized ttl falls back to the configured download TTL.
func (g *Gateway) IssueDownloadCredential(ctx context.Context, key string, ttl time.Duration) (*DownloadCredential, error) {
	if ttl <= 0 || ttl > g.cfg.DownloadTTL {
		ttl = g.cfg.DownloadTTL
	}
	url, err := g.store.PresignDownload(ctx, key, ttl)
	if err != nil {
		return nil, apperr.Infra("presign download", err)
	}
	return &DownloadCredential{URL: url, ExpiresAt: g.now().Add(ttl)}, nil
}

// VerifyUpload checks that key was issued to owner and that the upload landed.
func (g *Gateway) VerifyUpload(ctx context.Context, owner, key string) error {
	issuedTo, err := g.ledger.OwnerOf(ctx, key)
	if err != nil {
		return apperr.Infra("lookup storage key", err)
	}
	if issuedTo == "" || issuedTo != owner {
		return apperr.ErrNotFound
	}

	ok, err := g.store.Exists(ctx, key)
	if err != nil {
		return apperr.Infra("check object", err)
	}
	if !ok {
		return apperr.Validation("upload not found")
	}
	return nil
}

// Release deletes the object behind key. Releasing a missing object succeeds.
func (g *Gateway) Release(ctx context.Context, key string) error {
	if err := g.store.Delete(ctx, key); err != nil {
		return apperr.Infra("release object", err)
	}
	if err := g.ledger.Forget(ctx, key); err != nil {
		return apperr.Infra("forget storage key", err)
	}
	return nil
}

func (g *Gateway) Locator(key string) string {
	return g.store.Locator(key)
}

func (g *Gateway) UploadTTL() time.Duration   { return g.cfg.UploadTTL }
func (g *Gateway) DownloadTTL() time.Duration { return g.cfg.DownloadTTL }
