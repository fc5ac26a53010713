package account

import (
	"context"
	"log/slog"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// EnsureUser provisions the caller's row on first sign-in. Calling it again is
// harmless.
func (s *Service) EnsureUser(ctx context.Context, p *Principal) (*models.User, error) {
	if p == nil || p.ID == "" {
		return nil, apperr.ErrUnauthorized
	}

	existing, err := s.repo.GetUser(ctx, p.ID)
	if err != nil {
		return nil, apperr.Infra("load user", err)
	}
	if existing != nil && existing.Email == p.Email {
		return existing, nil
	}

	if err := s.repo.Upsert(ctx, &models.User{ID: p.ID, Email: p.Email}); err != nil {
		return nil, apperr.Infra("provision user", err)
	}
	if existing == nil {
		slog.Info("user provisioned", "user_id", p.ID)
	}

	u, err := s.repo.GetUser(ctx, p.ID)
	if err != nil {
		return nil, apperr.Infra("load user", err)
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}
