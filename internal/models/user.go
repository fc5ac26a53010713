package models

import "time"

// User mirrors the identity provider's subject plus the subscription fields
// maintained by the billing collaborator.
type User struct {
	ID                     string     `json:"id" db:"id"`
	Email                  string     `json:"email" db:"email"`
	StripeCustomerID       string     `json:"-" db:"stripe_customer_id"`
	StripeSubscriptionID   string     `json:"-" db:"stripe_subscription_id"`
	StripePriceID          string     `json:"-" db:"stripe_price_id"`
	StripeCurrentPeriodEnd *time.Time `json:"-" db:"stripe_current_period_end"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
}
