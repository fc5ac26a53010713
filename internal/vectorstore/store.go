// Package vectorstore holds page embeddings. Each document's pages live in
// their own namespace, keyed by document id.
package vectorstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type SearchResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	PageNumber int       `json:"page_number"`
	Content    string    `json:"content"`
	Score      float64   `json:"score"`
}

type Store interface {
	// Replace swaps the namespace contents for pages atomically. Replacing
	// with the same pages twice leaves a single copy.
	Replace(ctx context.Context, namespace uuid.UUID, pages []models.PageEmbedding) error
	Search(ctx context.Context, namespace uuid.UUID, query []float32, topK int) ([]SearchResult, error)
	DeleteNamespace(ctx context.Context, namespace uuid.UUID) error
	Count(ctx context.Context, namespace uuid.UUID) (int, error)
}
