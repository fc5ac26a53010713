package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type PGRepo struct {
	db *pgxpool.Pool
}

func NewPGRepo(db *pgxpool.Pool) *PGRepo {
	return &PGRepo{db: db}
}

func (r *PGRepo) Append(ctx context.Context, turn *models.ConversationTurn) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversation_turns (id, document_id, owner_id, is_user_message, text, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		turn.ID, turn.DocumentID, turn.OwnerID, turn.IsUserMessage, turn.Text, turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

func (r *PGRepo) Page(ctx context.Context, documentID uuid.UUID, owner string, cursor *uuid.UUID, limit int) ([]models.ConversationTurn, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if cursor == nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, document_id, owner_id, is_user_message, text, created_at
			 FROM conversation_turns
			 WHERE document_id = $1 AND owner_id = $2
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			documentID, owner, limit,
		)
	} else {
		var at time.Time
		err = r.db.QueryRow(ctx,
			`SELECT created_at FROM conversation_turns WHERE id = $1 AND document_id = $2 AND owner_id = $3`,
			*cursor, documentID, owner,
		).Scan(&at)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownCursor
		}
		if err != nil {
			return nil, fmt.Errorf("load cursor: %w", err)
		}
		rows, err = r.db.Query(ctx,
			`SELECT id, document_id, owner_id, is_user_message, text, created_at
			 FROM conversation_turns
			 WHERE document_id = $1 AND owner_id = $2 AND (created_at, id) <= ($3, $4)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $5`,
			documentID, owner, at, *cursor, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	turns := []models.ConversationTurn{}
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.ID, &t.DocumentID, &t.OwnerID, &t.IsUserMessage, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
