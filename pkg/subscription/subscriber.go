package subscription

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/chargekit/pkg/chargebee"
)

// ProviderClient is the slice of the Chargebee client the subscription
// workflow depends on. *chargebee.Client satisfies it; tests substitute
// mocks.
type ProviderClient interface {
	CreateSubscription(ctx context.Context, planID string, profile chargebee.CustomerProfile, addons []chargebee.AddonRequest, coupon, cardToken string) (*chargebee.Result, error)
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*chargebee.Result, error)
	UpdatePlan(ctx context.Context, subscriptionID, planID string) (*chargebee.Result, error)
	Cancel(ctx context.Context, subscriptionID string, immediate bool) (*chargebee.Result, error)
	RemoveScheduledCancellation(ctx context.Context, subscriptionID string) (*chargebee.Result, error)
	Reactivate(ctx context.Context, subscriptionID string) (*chargebee.Result, error)
	RetrieveCustomer(ctx context.Context, customerID string) (*chargebee.Customer, error)
	RetrievePaymentSource(ctx context.Context, paymentSourceID string) (*chargebee.PaymentSource, error)
	CheckoutNew(ctx context.Context, planID string, addons []chargebee.AddonRequest, embed bool, passThru string) (*chargebee.HostedPage, error)
	RetrieveHostedPage(ctx context.Context, hostedPageID string) (*chargebee.HostedPage, error)
}

// Owner is the capability contract an owning entity (account, user, team)
// implements to take part in billing. It replaces any structural mixing:
// the workflow only needs a stable identifier and a billing profile.
type Owner interface {
	// SubscriberID is the owner's stable identifier. It is round-tripped
	// through hosted checkout as the opaque owner token.
	SubscriberID() uuid.UUID

	// BillingProfile supplies the customer identity sent to the provider
	// on subscription creation.
	BillingProfile() chargebee.CustomerProfile
}

// Subscriber drives the subscription lifecycle for one owner and one chosen
// plan: creation (direct or via hosted checkout), plan swaps, cancellation,
// resume, reactivation, and mirror refreshes. Every successful provider call
// is applied to the local mirror through the same mapping the webhook
// reconciler uses.
type Subscriber struct {
	client  ProviderClient
	store   Store
	owner   Owner
	planID  string
	addOns  []chargebee.AddonRequest
	coupon  string
	catalog *Catalog
	log     *slog.Logger
}

// SubscriberOption configures a Subscriber.
type SubscriberOption func(*Subscriber)

// WithCatalog enables plan verification against a loaded catalog before any
// provider call. Without a catalog only plan presence is checked and the
// provider rejects unknown plans.
func WithCatalog(catalog *Catalog) SubscriberOption {
	return func(s *Subscriber) {
		s.catalog = catalog
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) SubscriberOption {
	return func(s *Subscriber) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSubscriber creates a subscription workflow scoped to an owner and plan.
// Panics on nil dependencies to fail fast during initialization.
func NewSubscriber(client ProviderClient, store Store, owner Owner, planID string, opts ...SubscriberOption) *Subscriber {
	if client == nil {
		panic("subscription: ProviderClient is required")
	}
	if store == nil {
		panic("subscription: Store is required")
	}
	if owner == nil {
		panic("subscription: Owner is required")
	}

	s := &Subscriber{
		client: client,
		store:  store,
		owner:  owner,
		planID: planID,
		log:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithAddOn queues a single add-on line for the subscription.
func (s *Subscriber) WithAddOn(id string, quantity int) *Subscriber {
	s.addOns = append(s.addOns, chargebee.AddonRequest{ID: id, Quantity: quantity})
	return s
}

// AddOns queues multiple add-on lines for the subscription.
func (s *Subscriber) AddOns(addOns []chargebee.AddonRequest) *Subscriber {
	s.addOns = append(s.addOns, addOns...)
	return s
}

// Coupon applies a provider-registered coupon ID to the subscription.
func (s *Subscriber) Coupon(id string) *Subscriber {
	s.coupon = id
	return s
}

// Create subscribes the owner to the configured plan and persists the local
// mirror. cardToken may be empty for plans that need no payment method; no
// network call happens unless a plan is set.
func (s *Subscriber) Create(ctx context.Context, cardToken string) (*Subscription, error) {
	if err := s.verifyPlan(); err != nil {
		return nil, err
	}

	result, err := s.client.CreateSubscription(ctx, s.planID, s.owner.BillingProfile(), s.addOns, s.coupon, cardToken)
	if err != nil {
		return nil, err
	}

	return s.persistResult(ctx, result)
}

// CheckoutURL builds a hosted checkout page for the configured plan and
// returns its URL. The owner's identifier travels along as the opaque
// pass-through token and is verified again in ResolveFromCheckout.
func (s *Subscriber) CheckoutURL(ctx context.Context, embed bool) (string, error) {
	if err := s.verifyPlan(); err != nil {
		return "", err
	}

	page, err := s.client.CheckoutNew(ctx, s.planID, s.addOns, embed, s.ownerToken())
	if err != nil {
		return "", err
	}
	return page.URL, nil
}

// ResolveFromCheckout completes a hosted checkout: it retrieves the hosted
// page, verifies the recovered owner token against this subscriber's owner,
// and persists the resulting subscription exactly as Create does.
//
// The token comparison is a strict equality check; a mismatch means the
// payment was performed by a different owner and must never attach the
// subscription here.
func (s *Subscriber) ResolveFromCheckout(ctx context.Context, hostedPageID string) (*Subscription, error) {
	page, err := s.client.RetrieveHostedPage(ctx, hostedPageID)
	if err != nil {
		return nil, err
	}

	token, err := base64.StdEncoding.DecodeString(page.PassThruContent)
	if err != nil {
		return nil, errors.Join(ErrOwnerMismatch, fmt.Errorf("malformed owner token: %w", err))
	}
	if string(token) != s.owner.SubscriberID().String() {
		return nil, ErrOwnerMismatch
	}

	if page.Content.Subscription == nil || page.Content.Subscription.ID == "" {
		return nil, ErrCheckoutIncomplete
	}

	result, err := s.client.RetrieveSubscription(ctx, page.Content.Subscription.ID)
	if err != nil {
		return nil, err
	}

	return s.persistResult(ctx, result)
}

// Swap moves the subscription to a different plan and applies the provider's
// authoritative response to the mirror. Only fields the provider returned
// are written; nothing is guessed locally.
func (s *Subscriber) Swap(ctx context.Context, sub *Subscription, planID string) (*Subscription, error) {
	if planID == "" {
		return nil, ErrMissingPlan
	}
	if s.catalog != nil {
		if err := s.catalog.Verify(planID); err != nil {
			return nil, err
		}
	}

	result, err := s.client.UpdatePlan(ctx, sub.ProviderSubscriptionID, planID)
	if err != nil {
		return nil, err
	}

	return s.applyResult(ctx, sub, result)
}

// Cancel ends the subscription. With immediate=false the provider schedules
// the end for the current term (or trial) end and the mirror's EndsAt picks
// up that future date; with immediate=true EndsAt lands at now.
func (s *Subscriber) Cancel(ctx context.Context, sub *Subscription, immediate bool) (*Subscription, error) {
	result, err := s.client.Cancel(ctx, sub.ProviderSubscriptionID, immediate)
	if err != nil {
		return nil, err
	}

	return s.applyResult(ctx, sub, result)
}

// Resume removes a scheduled cancellation, clearing the mirror's EndsAt.
func (s *Subscriber) Resume(ctx context.Context, sub *Subscription) (*Subscription, error) {
	result, err := s.client.RemoveScheduledCancellation(ctx, sub.ProviderSubscriptionID)
	if err != nil {
		return nil, err
	}

	return s.applyResult(ctx, sub, result)
}

// Reactivate restarts a cancelled subscription.
func (s *Subscriber) Reactivate(ctx context.Context, sub *Subscription) (*Subscription, error) {
	result, err := s.client.Reactivate(ctx, sub.ProviderSubscriptionID)
	if err != nil {
		return nil, err
	}

	return s.applyResult(ctx, sub, result)
}

// RefreshFromProvider re-retrieves the subscription and overwrites the
// mirrored plan, quantity, and timestamp fields with authoritative state.
func (s *Subscriber) RefreshFromProvider(ctx context.Context, sub *Subscription) (*Subscription, error) {
	result, err := s.client.RetrieveSubscription(ctx, sub.ProviderSubscriptionID)
	if err != nil {
		return nil, err
	}

	return s.applyResult(ctx, sub, result)
}

// RefreshPaymentDisplay re-reads the customer's primary payment source and
// updates the masked payment fields. Card sources store the masked digits
// and network; redirect wallets store a wallet label with no digits.
func (s *Subscriber) RefreshPaymentDisplay(ctx context.Context, sub *Subscription) (*Subscription, error) {
	result, err := s.client.RetrieveSubscription(ctx, sub.ProviderSubscriptionID)
	if err != nil {
		return nil, err
	}
	if result.Customer == nil {
		return nil, ErrMissingProviderCustomer
	}

	customer, err := s.client.RetrieveCustomer(ctx, result.Customer.ID)
	if err != nil {
		return nil, err
	}

	source, err := s.client.RetrievePaymentSource(ctx, customer.PrimaryPaymentSourceID)
	if err != nil {
		return nil, err
	}

	switch source.Type {
	case paymentMethodPayPal:
		sub.LastFour = nil
		brand := brandPayPal
		sub.Brand = &brand
	case paymentMethodCard:
		if source.Card != nil {
			last4 := source.Card.Last4
			brand := source.Card.Brand
			sub.LastFour = &last4
			sub.Brand = &brand
		}
	}

	if err := s.store.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Subscriber) verifyPlan() error {
	if s.planID == "" {
		return ErrMissingPlan
	}
	if s.catalog != nil {
		return s.catalog.Verify(s.planID)
	}
	return nil
}

// ownerToken encodes the owner identifier for the hosted-checkout
// pass-through field.
func (s *Subscriber) ownerToken() string {
	return base64.StdEncoding.EncodeToString([]byte(s.owner.SubscriberID().String()))
}

// persistResult mirrors a provider creation/retrieval result as a new local
// subscription plus its add-on rows, written atomically.
func (s *Subscriber) persistResult(ctx context.Context, result *chargebee.Result) (*Subscription, error) {
	remote := result.Subscription
	if remote == nil {
		return nil, ErrMissingProviderSubscription
	}

	sub := &Subscription{
		ID:                     uuid.New(),
		OwnerID:                s.owner.SubscriberID(),
		ProviderSubscriptionID: remote.ID,
		Quantity:               1,
	}
	sub.applyProviderState(remote)
	sub.applyPaymentDisplay(result.Customer, result.Card)

	addOns := make([]*AddOn, 0, len(remote.Addons))
	for _, addon := range remote.Addons {
		addOns = append(addOns, &AddOn{
			ID:              uuid.New(),
			SubscriptionID:  sub.ID,
			ProviderAddOnID: addon.ID,
			Quantity:        addon.Quantity,
		})
	}

	if err := s.store.CreateWithAddOns(ctx, sub, addOns); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription created",
		"owner_id", sub.OwnerID,
		"provider_subscription_id", sub.ProviderSubscriptionID,
		"plan_id", sub.PlanID)

	return sub, nil
}

// applyResult funnels an authoritative provider response into the mirror and
// persists it. Shared by every mutating call so the mapping cannot drift
// from webhook-driven reconciliation.
func (s *Subscriber) applyResult(ctx context.Context, sub *Subscription, result *chargebee.Result) (*Subscription, error) {
	if result.Subscription == nil {
		return nil, ErrMissingProviderSubscription
	}

	sub.applyProviderState(result.Subscription)
	if err := s.store.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
