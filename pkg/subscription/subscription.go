package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/chargekit/pkg/chargebee"
)

// Subscription is the local mirror of a provider-side subscription. The
// provider remains the source of truth; this row is a best-effort cache
// refreshed after mutating calls and by webhook reconciliation, so it can
// lag between a provider-side change and webhook delivery.
type Subscription struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	// ProviderSubscriptionID is the provider's identifier and the lookup
	// key for webhook reconciliation. Immutable after creation.
	ProviderSubscriptionID string

	PlanID   string
	Quantity int

	// LastFour and Brand are masked payment display fields. Both are nil
	// when no card is on file; for redirect wallets Brand is set ("paypal")
	// while LastFour stays nil.
	LastFour *string
	Brand    *string

	// EndsAt non-nil means the subscription is cancelled (past value) or
	// scheduled to end at term end (future value). Nil means not cancelled.
	EndsAt        *time.Time
	TrialEndsAt   *time.Time
	NextBillingAt *time.Time

	// ScheduledChanges flags a provider-side queued plan/quantity change
	// that has not been applied yet. Orthogonal to the cancel lifecycle.
	ScheduledChanges bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddOn is an add-on line owned by exactly one subscription. Rows are
// created alongside the subscription and removed with it.
type AddOn struct {
	ID              uuid.UUID
	SubscriptionID  uuid.UUID
	ProviderAddOnID string
	Quantity        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OnTrial reports whether the subscription is currently inside its trial
// window.
func (s *Subscription) OnTrial() bool {
	return s.OnTrialAt(time.Now().UTC())
}

// OnTrialAt is the fixed-clock variant of OnTrial, useful in tests.
func (s *Subscription) OnTrialAt(now time.Time) bool {
	return s.TrialEndsAt != nil && s.TrialEndsAt.After(now)
}

// Cancelled reports whether a cancellation date has been set and reached.
// A subscription with a scheduled end-of-term cancellation is not cancelled
// until that date passes.
func (s *Subscription) Cancelled() bool {
	return s.CancelledAt(time.Now().UTC())
}

// CancelledAt is the fixed-clock variant of Cancelled.
func (s *Subscription) CancelledAt(now time.Time) bool {
	return s.EndsAt != nil && !s.EndsAt.After(now)
}

// Active reports whether the subscription is usable: either no end date is
// set, or the scheduled end has not been reached yet. Active and Cancelled
// are not mutually exclusive with a scheduled cancellation still pending.
func (s *Subscription) Active() bool {
	return s.ActiveAt(time.Now().UTC())
}

// ActiveAt is the fixed-clock variant of Active.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.EndsAt == nil || s.EndsAt.After(now)
}

// Valid reports whether the subscription grants access: active or on trial.
func (s *Subscription) Valid() bool {
	return s.ValidAt(time.Now().UTC())
}

// ValidAt is the fixed-clock variant of Valid.
func (s *Subscription) ValidAt(now time.Time) bool {
	return s.ActiveAt(now) || s.OnTrialAt(now)
}

// applyProviderState overwrites the mirrored fields with the provider's
// authoritative subscription record. Every mutation path (create, swap,
// cancel, resume, reactivate, refresh, webhook reconciliation) funnels
// through this single mapping so webhook-driven and call-driven updates
// cannot diverge.
func (s *Subscription) applyProviderState(remote *chargebee.Subscription) {
	s.PlanID = remote.PlanID
	if remote.PlanQuantity > 0 {
		s.Quantity = remote.PlanQuantity
	}
	s.EndsAt = remote.CancelledAt.TimePtr()
	s.TrialEndsAt = remote.TrialEnd.TimePtr()
	// Creation responses report the next charge as current_term_end only.
	if next := remote.NextBillingAt.TimePtr(); next != nil {
		s.NextBillingAt = next
	} else {
		s.NextBillingAt = remote.CurrentTermEnd.TimePtr()
	}
	s.ScheduledChanges = remote.HasScheduledChanges
}

// applyPaymentDisplay derives the masked payment fields from the customer's
// payment-method type. Redirect wallets carry no card, so LastFour stays nil
// and Brand records the wallet label instead of a card network.
func (s *Subscription) applyPaymentDisplay(customer *chargebee.Customer, card *chargebee.Card) {
	if customer == nil || customer.PaymentMethod == nil {
		s.LastFour = nil
		s.Brand = nil
		return
	}

	if customer.PaymentMethod.Type == paymentMethodPayPal {
		s.LastFour = nil
		brand := brandPayPal
		s.Brand = &brand
		return
	}

	if card != nil {
		last4 := card.Last4
		brand := card.CardType
		s.LastFour = &last4
		s.Brand = &brand
		return
	}

	s.LastFour = nil
	s.Brand = nil
}

const (
	paymentMethodCard   = "card"
	paymentMethodPayPal = "paypal_express_checkout"
	brandPayPal         = "paypal"
)
