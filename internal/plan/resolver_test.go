package plan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
)

type userSource struct {
	users map[string]*models.User
	err   error
}

func (s userSource) GetUser(_ context.Context, id string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[id], nil
}

func TestResolverPlanFor(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterdayMorning := now.Add(-20 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)
	nextMonth := now.Add(30 * 24 * time.Hour)

	src := userSource{users: map[string]*models.User{
		"active":  {ID: "active", StripePriceID: "price_pro", StripeCurrentPeriodEnd: &nextMonth},
		"grace":   {ID: "grace", StripePriceID: "price_pro", StripeCurrentPeriodEnd: &yesterdayMorning},
		"expired": {ID: "expired", StripePriceID: "price_pro", StripeCurrentPeriodEnd: &lastWeek},
		"unknown": {ID: "unknown", StripePriceID: "price_legacy", StripeCurrentPeriodEnd: &nextMonth},
		"never":   {ID: "never"},
	}}

	r := NewResolver(src, Table("price_pro"))
	r.now = func() time.Time { return now }

	tests := []struct {
		owner string
		want  string
	}{
		{"active", SlugPro},
		{"grace", SlugPro},
		{"expired", SlugFree},
		{"unknown", SlugFree},
		{"never", SlugFree},
		{"missing", SlugFree},
	}
	for _, tt := range tests {
		t.Run(tt.owner, func(t *testing.T) {
			p, err := r.PlanFor(context.Background(), tt.owner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Slug)
		})
	}
}

func TestResolverSubscriptionFlags(t *testing.T) {
	end := time.Now().Add(time.Hour)
	r := NewResolver(userSource{users: map[string]*models.User{
		"u1": {ID: "u1", StripePriceID: "price_pro", StripeCurrentPeriodEnd: &end},
	}}, Table("price_pro"))

	sub, err := r.Subscription(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, 250, sub.Plan.MaxPagesPerDocument)
	assert.Equal(t, int64(32<<20), sub.Plan.MaxFileBytes)
}

func TestResolverSourceFailureIsInfrastructure(t *testing.T) {
	r := NewResolver(userSource{err: errors.New("connection reset")}, Table("price_pro"))

	_, err := r.PlanFor(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))
}

func TestMaxFileBytes(t *testing.T) {
	assert.Equal(t, 32*mib, MaxFileBytes(Table("price_pro")))
	assert.Zero(t, MaxFileBytes(nil))
}
