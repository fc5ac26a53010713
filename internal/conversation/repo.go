// Package conversation stores the turns exchanged about a document and serves
// them back newest-first in cursor pages.
package conversation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

// ErrUnknownCursor means the cursor id is not a turn of this document.
var ErrUnknownCursor = errors.New("unknown cursor")

type Repo interface {
	Append(ctx context.Context, turn *models.ConversationTurn) error
	// Page returns up to limit turns ordered by (created_at, id) descending.
	// A non-nil cursor is the id of the first turn to return.
	Page(ctx context.Context, documentID uuid.UUID, owner string, cursor *uuid.UUID, limit int) ([]models.ConversationTurn, error)
}
