package handlers

import (
	"context"
	"net/http"

	"github.com/nikhilbhutani/pdfchat/internal/account"
	"github.com/nikhilbhutani/pdfchat/internal/apperr"
	"github.com/nikhilbhutani/pdfchat/internal/models"
	"github.com/nikhilbhutani/pdfchat/internal/plan"
)

type UserProvisioner interface {
	EnsureUser(ctx context.Context, p *account.Principal) (*models.User, error)
}

type SubscriptionSource interface {
	Subscription(ctx context.Context, owner string) (*plan.Subscription, error)
}

type AccountHandler struct {
	users UserProvisioner
	plans SubscriptionSource
}

func NewAccountHandler(users UserProvisioner, plans SubscriptionSource) *AccountHandler {
	return &AccountHandler{users: users, plans: plans}
}

// Callback provisions the caller's user row on first sign-in. Repeat calls
// are no-ops.
func (h *AccountHandler) Callback(w http.ResponseWriter, r *http.Request) {
	p := account.FromContext(r.Context())
	if p == nil {
		respondError(w, r, apperr.ErrUnauthorized)
		return
	}

	if _, err := h.users.EnsureUser(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AccountHandler) Plan(w http.ResponseWriter, r *http.Request) {
	sub, err := h.plans.Subscription(r.Context(), account.OwnerID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plan":             sub.Plan,
		"isSubscribed":     sub.IsSubscribed,
		"currentPeriodEnd": sub.CurrentPeriodEnd,
	})
}
