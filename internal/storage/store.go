// Package storage is the object gateway: it hands out short-lived, single-key
// credentials for the blob store and never exposes the store's own keys.
package storage

import (
	"context"
	"time"
)

// ObjectStore is the capability the gateway needs from a blob backend.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key string, maxBytes int64, ttl time.Duration) (*UploadCredential, error)
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Locator(key string) string
}

// UploadCredential is a browser-compatible multipart POST target: the client
// sends Fields plus the file to URL.
type UploadCredential struct {
	URL        string            `json:"url"`
	Fields     map[string]string `json:"fields"`
	StorageKey string            `json:"storageKey"`
	ExpiresAt  time.Time         `json:"expiresAt"`
}

type DownloadCredential struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
