package document

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

var ErrDuplicateStorageKey = errors.New("storage key already registered")

// Repo is the document catalog. Every read and write is scoped to an owner;
// a row owned by someone else behaves exactly like a missing row
// (apperr.ErrNotFound).
type Repo interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id uuid.UUID, owner string) (*models.Document, error)
	List(ctx context.Context, owner string) ([]models.Document, error)
	// Transition moves the document to state only if its current state is one
	// of from. It reports whether a row was updated.
	Transition(ctx context.Context, id uuid.UUID, owner string, from []models.DocumentState, to models.DocumentState, pageCount int) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, owner string) (bool, error)
	CountSince(ctx context.Context, owner string, since time.Time) (int, error)
}

// sourcesOf lists the states that may legally move to "to".
func sourcesOf(to models.DocumentState) []models.DocumentState {
	var out []models.DocumentState
	for _, from := range []models.DocumentState{models.StatePending, models.StateProcessing, models.StateSuccess, models.StateFailed} {
		if models.CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}
