package document

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]models.Document
	now  func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[uuid.UUID]models.Document), now: func() time.Time { return time.Now().UTC() }}
}

func (r *MemoryRepo) Create(ctx context.Context, doc *models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.docs {
		if d.StorageKey == doc.StorageKey {
			return ErrDuplicateStorageKey
		}
	}
	now := r.now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	r.docs[doc.ID] = *doc
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id uuid.UUID, owner string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[id]
	if !ok || d.OwnerID != owner {
		return nil, apperr.ErrNotFound
	}
	return &d, nil
}

func (r *MemoryRepo) List(ctx context.Context, owner string) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := []models.Document{}
	for _, d := range r.docs {
		if d.OwnerID == owner {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID.String() > docs[j].ID.String()
	})
	return docs, nil
}

func (r *MemoryRepo) Transition(ctx context.Context, id uuid.UUID, owner string, from []models.DocumentState, to models.DocumentState, pageCount int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[id]
	if !ok || d.OwnerID != owner || !slices.Contains(from, d.State) {
		return false, nil
	}
	d.State = to
	d.PageCount = pageCount
	d.UpdatedAt = r.now()
	r.docs[id] = d
	return true, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.docs[id]
	if !ok || d.OwnerID != owner {
		return false, nil
	}
	delete(r.docs, id)
	return true, nil
}

func (r *MemoryRepo) CountSince(ctx context.Context, owner string, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, d := range r.docs {
		if d.OwnerID == owner && !d.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
