package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
)

const documentColumns = `id, owner_id, name, storage_key, url, state, page_count, created_at, updated_at`

type PGRepo struct {
	db *pgxpool.Pool
}

func NewPGRepo(db *pgxpool.Pool) *PGRepo {
	return &PGRepo{db: db}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.StorageKey, &d.URL, &d.State, &d.PageCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PGRepo) Create(ctx context.Context, doc *models.Document) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO documents (id, owner_id, name, storage_key, url, state, page_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		doc.ID, doc.OwnerID, doc.Name, doc.StorageKey, doc.URL, string(doc.State), doc.PageCount,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateStorageKey
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, id uuid.UUID, owner string) (*models.Document, error) {
	doc, err := scanDocument(r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND owner_id = $2`,
		id, owner,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *PGRepo) List(ctx context.Context, owner string) ([]models.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (r *PGRepo) Transition(ctx context.Context, id uuid.UUID, owner string, from []models.DocumentState, to models.DocumentState, pageCount int) (bool, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET state = $1, page_count = $2, updated_at = now()
		 WHERE id = $3 AND owner_id = $4 AND state = ANY($5)`,
		string(to), pageCount, id, owner, states,
	)
	if err != nil {
		return false, fmt.Errorf("update document state: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGRepo) Delete(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PGRepo) CountSince(ctx context.Context, owner string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE owner_id = $1 AND created_at >= $2`,
		owner, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
