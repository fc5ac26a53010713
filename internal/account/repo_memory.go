package account

import (
	"context"
	"sync"
	"time"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]models.User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		existing = models.User{ID: user.ID, CreatedAt: time.Now().UTC()}
	}
	existing.Email = user.Email
	r.users[user.ID] = existing
	return nil
}

func (r *MemoryRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Put stores the row as given, subscription fields included.
func (r *MemoryRepo) Put(user models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}
