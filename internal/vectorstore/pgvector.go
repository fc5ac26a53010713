package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) Replace(ctx context.Context, namespace uuid.UUID, pages []models.PageEmbedding) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM page_embeddings WHERE document_id = $1`, namespace); err != nil {
		return fmt.Errorf("clear namespace: %w", err)
	}

	for _, p := range pages {
		id := p.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO page_embeddings (id, document_id, owner_id, page_number, content, embedding, token_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, namespace, p.OwnerID, p.PageNumber, p.Content, pgvector.NewVector(p.Embedding), p.TokenCount,
		)
		if err != nil {
			return fmt.Errorf("insert page %d: %w", p.PageNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit namespace: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Search(ctx context.Context, namespace uuid.UUID, query []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 4
	}

	embedding := pgvector.NewVector(query)
	rows, err := s.db.Query(ctx,
		`SELECT document_id, page_number, content, 1 - (embedding <=> $1) AS score
		 FROM page_embeddings
		 WHERE document_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		embedding, namespace, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DocumentID, &r.PageNumber, &r.Content, &r.Score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteNamespace is idempotent: purging an empty namespace succeeds.
func (s *PgVectorStore) DeleteNamespace(ctx context.Context, namespace uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM page_embeddings WHERE document_id = $1`, namespace); err != nil {
		return fmt.Errorf("delete namespace: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Count(ctx context.Context, namespace uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM page_embeddings WHERE document_id = $1`, namespace).Scan(&n); err != nil {
		return 0, fmt.Errorf("count namespace: %w", err)
	}
	return n, nil
}
