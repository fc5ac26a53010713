package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
)

// gracePeriod keeps a subscription active for a day past the billed period
// end so renewals that land late do not downgrade the owner.
const gracePeriod = 24 * time.Hour

// SubscriptionSource returns the owner's user row. A missing row is reported
// as (nil, nil): the owner is simply not subscribed.
type SubscriptionSource interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type Subscription struct {
	Plan             models.Plan `json:"plan"`
	IsSubscribed     bool        `json:"is_subscribed"`
	CurrentPeriodEnd *time.Time  `json:"current_period_end,omitempty"`
}

type Resolver struct {
	users SubscriptionSource
	table []models.Plan
	now   func() time.Time
}

func NewResolver(users SubscriptionSource, table []models.Plan) *Resolver {
	return &Resolver{users: users, table: table, now: time.Now}
}

// PlanFor returns the plan whose limits apply to owner.
func (r *Resolver) PlanFor(ctx context.Context, owner string) (models.Plan, error) {
	sub, err := r.Subscription(ctx, owner)
	if err != nil {
		return models.Plan{}, err
	}
	return sub.Plan, nil
}

func (r *Resolver) Subscription(ctx context.Context, owner string) (*Subscription, error) {
	free, ok := bySlug(r.table, SlugFree)
	if !ok {
		return nil, fmt.Errorf("plan table has no %q plan", SlugFree)
	}

	user, err := r.users.GetUser(ctx, owner)
	if err != nil {
		return nil, apperr.Infra("load subscription", err)
	}
	if user == nil || !r.active(user) {
		return &Subscription{Plan: free}, nil
	}

	p, ok := byPriceID(r.table, user.StripePriceID)
	if !ok {
		// Paying for a price this deployment does not sell: limits fall back to free.
		return &Subscription{Plan: free, CurrentPeriodEnd: user.StripeCurrentPeriodEnd}, nil
	}
	return &Subscription{Plan: p, IsSubscribed: true, CurrentPeriodEnd: user.StripeCurrentPeriodEnd}, nil
}

func (r *Resolver) active(u *models.User) bool {
	if u.StripePriceID == "" || u.StripeCurrentPeriodEnd == nil {
		return false
	}
	return u.StripeCurrentPeriodEnd.Add(gracePeriod).After(r.now())
}
