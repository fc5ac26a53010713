// Package account resolves who is calling and keeps the local user row the
// subscription plan is read from.
package account

import "context"

// Principal is the authenticated caller as asserted by the identity provider.
type Principal struct {
	ID    string
	Email string
}

type contextKey string

const principalKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// OwnerID returns the caller's id, or "" for anonymous contexts.
func OwnerID(ctx context.Context) string {
	if p := FromContext(ctx); p != nil {
		return p.ID
	}
	return ""
}
