package conversation

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	turns []models.ConversationTurn
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Append(ctx context.Context, turn *models.ConversationTurn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, *turn)
	return nil
}

// newer reports whether a sorts before b in newest-first order.
func newer(a, b models.ConversationTurn) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

func (r *MemoryRepo) Page(ctx context.Context, documentID uuid.UUID, owner string, cursor *uuid.UUID, limit int) ([]models.ConversationTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var scoped []models.ConversationTurn
	for _, t := range r.turns {
		if t.DocumentID == documentID && t.OwnerID == owner {
			scoped = append(scoped, t)
		}
	}
	sort.Slice(scoped, func(i, j int) bool { return newer(scoped[i], scoped[j]) })

	start := 0
	if cursor != nil {
		start = -1
		for i, t := range scoped {
			if t.ID == *cursor {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, ErrUnknownCursor
		}
	}

	end := min(start+limit, len(scoped))
	out := make([]models.ConversationTurn, end-start)
	copy(out, scoped[start:end])
	return out, nil
}

// DeleteDocument drops every turn of a document, mirroring the foreign-key
// cascade of the Postgres schema.
func (r *MemoryRepo) DeleteDocument(documentID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.turns[:0]
	for _, t := range r.turns {
		if t.DocumentID != documentID {
			kept = append(kept, t)
		}
	}
	r.turns = kept
}
