package account

import (
	"context"
	"errors"
	"fmt"

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

// Upsert only touches identity columns; subscription columns belong to the
// billing side.
func (r *PGRepo) Upsert(ctx context.Context, user *models.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email`,
		user.ID, user.Email,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *PGRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, COALESCE(stripe_customer_id, ''), COALESCE(stripe_subscription_id, ''),
		        COALESCE(stripe_price_id, ''), stripe_current_period_end, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.StripeCustomerID, &u.StripeSubscriptionID,
		&u.StripePriceID, &u.StripeCurrentPeriodEnd, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
