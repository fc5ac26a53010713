// Package rag indexes extracted pages into the vector store and answers
// questions from them.
package rag

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/vectorstore"
	"github.com/nikhilbhutani/pdfchat/pkg/textextract"
	"github.com/nikhilbhutani/pdfchat/pkg/tokenizer"
)

// maxPageTokens keeps a single page under the embedding model's input limit.
const maxPageTokens = 8000

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

type Indexer struct {
	embedder Embedder
	store    vectorstore.Store
}

func NewIndexer(e Embedder, store vectorstore.Store) *Indexer {
	return &Indexer{embedder: e, store: store}
}

// Index replaces the document's namespace with one vector per page that has
// text. Pages without a text layer have nothing to embed and are skipped.
func (ix *Indexer) Index(ctx context.Context, documentID uuid.UUID, owner string, pages []textextract.Page) error {
	var (
		texts []string
		keep  []textextract.Page
	)
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		texts = append(texts, tokenizer.Truncate(p.Text, maxPageTokens))
		keep = append(keep, p)
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return apperr.Infra("embed pages", err)
	}

	now := time.Now().UTC()
	records := make([]models.PageEmbedding, len(keep))
	for i, p := range keep {
		records[i] = models.PageEmbedding{
			ID:         uuid.New(),
			DocumentID: documentID,
			OwnerID:    owner,
			PageNumber: p.Number,
			Content:    p.Text,
			Embedding:  vectors[i],
			TokenCount: tokenizer.CountTokens(p.Text),
			CreatedAt:  now,
		}
	}

	if err := ix.store.Replace(ctx, documentID, records); err != nil {
		return apperr.Infra("store page vectors", err)
	}
	return nil
}
