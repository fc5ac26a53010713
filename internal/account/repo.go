package account

import (
	"context"

	"github.com/nikhilbhutani/pdfchat/internal/models"
)

// Repo stores user rows. GetUser returns (nil, nil) for unknown ids.
type Repo interface {
	Upsert(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
}
