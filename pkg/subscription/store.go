package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the persistence interface for the local subscription mirror.
// Implementations must make CreateWithAddOns and DeleteWithAddOns atomic:
// a subscription row must never exist without the add-on rows the provider
// reported, and vice versa.
type Store interface {
	// GetByProviderID retrieves the subscription mirroring the given
	// provider identifier, newest first when duplicates exist.
	// Returns ErrSubscriptionNotFound if no row matches.
	GetByProviderID(ctx context.Context, providerSubscriptionID string) (*Subscription, error)

	// ListByOwner returns all subscriptions held by an owner, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Subscription, error)

	// ListAddOns returns the add-on rows owned by a subscription.
	ListAddOns(ctx context.Context, subscriptionID uuid.UUID) ([]*AddOn, error)

	// CreateWithAddOns persists a subscription and its add-on rows in one
	// transaction.
	CreateWithAddOns(ctx context.Context, sub *Subscription, addOns []*AddOn) error

	// Update overwrites a subscription row. Last write wins; every caller
	// writes authoritative provider state or an idempotent flag, so no
	// read-modify-write locking is needed.
	Update(ctx context.Context, sub *Subscription) error

	// DeleteWithAddOns removes the subscription and its add-on rows in one
	// transaction.
	DeleteWithAddOns(ctx context.Context, subscriptionID uuid.UUID) error
}
