package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/vectorstore"
)

type Retriever struct {
	embedder Embedder
	store    vectorstore.Store
}

func NewRetriever(e Embedder, store vectorstore.Store) *Retriever {
	return &Retriever{embedder: e, store: store}
}

// Retrieve returns the topK pages of one document closest to query.
func (r *Retriever) Retrieve(ctx context.Context, documentID uuid.UUID, query string, topK int) ([]vectorstore.SearchResult, error) {
	queryVec, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := r.store.Search(ctx, documentID, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("search pages: %w", err)
	}
	return results, nil
}
