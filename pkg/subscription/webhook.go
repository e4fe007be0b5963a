package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/chargekit/pkg/chargebee"
)

// Recognized provider event types. The set is closed: anything else is
// acknowledged without effect so new provider event types never break the
// endpoint.
const (
	EventSubscriptionCancelled                    = "subscription_cancelled"
	EventSubscriptionCancellationScheduled        = "subscription_cancellation_scheduled"
	EventSubscriptionReactivated                  = "subscription_reactivated"
	EventSubscriptionScheduledCancellationRemoved = "subscription_scheduled_cancellation_removed"
	EventSubscriptionChangesScheduled             = "subscription_changes_scheduled"
	EventSubscriptionScheduledChangesRemoved      = "subscription_scheduled_changes_removed"
	EventSubscriptionChanged                      = "subscription_changed"
	EventSubscriptionDeleted                      = "subscription_deleted"
	EventPaymentSucceeded                         = "payment_succeeded"
)

// Event is the inbound webhook notification envelope.
type Event struct {
	EventType string       `json:"event_type"`
	Content   EventContent `json:"content"`
}

// EventContent carries the records affected by the event.
type EventContent struct {
	Subscription *EventSubscription `json:"subscription"`
}

// EventSubscription is the provider subscription snapshot inside an event.
// Timestamps arrive as epoch integers or pre-formatted date strings
// depending on site configuration; chargebee.Timestamp accepts both.
type EventSubscription struct {
	ID             string              `json:"id"`
	CancelledAt    chargebee.Timestamp `json:"cancelled_at"`
	CurrentTermEnd chargebee.Timestamp `json:"current_term_end"`
	NextBillingAt  chargebee.Timestamp `json:"next_billing_at"`
}

// EventResult reports what a delivery did. The HTTP layer uses it to pick
// the response text; none of the outcomes below are errors.
type EventResult struct {
	EventType string

	// Handled is true when the event type is in the recognized set.
	Handled bool

	// Applied is true when a matching local subscription was found and the
	// event's effect was applied (possibly as a no-op overwrite).
	Applied bool

	// OwnerID identifies the affected owner when Applied is true.
	OwnerID uuid.UUID
}

// NotifyFunc is an optional downstream notification hook invoked after every
// applied event with the raw payload, the event type, and the affected
// owner. Registration is optional; absence is not an error.
type NotifyFunc func(ctx context.Context, rawPayload []byte, eventType string, ownerID uuid.UUID)

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithNotifier registers the downstream notification hook.
func WithNotifier(fn NotifyFunc) ReconcilerOption {
	return func(r *Reconciler) {
		if fn != nil {
			r.notify = fn
		}
	}
}

// Reconciler applies inbound provider events to the local subscription
// mirror. Every action is an idempotent overwrite or flag set, so duplicate
// and out-of-order deliveries are safe to apply as they arrive; no
// cross-event ordering is assumed.
type Reconciler struct {
	store  Store
	client ProviderClient
	log    *slog.Logger
	notify NotifyFunc
}

// NewReconciler creates a webhook reconciler. The client is used only for
// the full-refresh path of subscription_changed events. A nil logger falls
// back to slog.Default().
func NewReconciler(store Store, client ProviderClient, log *slog.Logger, opts ...ReconcilerOption) *Reconciler {
	if store == nil {
		panic("subscription: Store is required")
	}
	if client == nil {
		panic("subscription: ProviderClient is required")
	}
	if log == nil {
		log = slog.Default()
	}

	r := &Reconciler{
		store:  store,
		client: client,
		log:    log,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Handle applies one delivered event. It returns an error only for
// infrastructure failures (storage or provider calls); unrecognized event
// types, lookup misses, and malformed payloads all degrade to a successful
// no-op result, preserving the provider's at-least-once delivery semantics.
func (r *Reconciler) Handle(ctx context.Context, payload []byte) (EventResult, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		// Retrying a malformed delivery will not self-correct, so answer
		// success and keep the evidence in the log.
		r.log.WarnContext(ctx, "malformed webhook payload", "error", err)
		return EventResult{}, nil
	}

	eventType := strings.ToLower(event.EventType)
	result := EventResult{EventType: eventType}

	switch eventType {
	case EventSubscriptionCancelled,
		EventSubscriptionCancellationScheduled,
		EventSubscriptionReactivated,
		EventSubscriptionScheduledCancellationRemoved,
		EventSubscriptionChangesScheduled,
		EventSubscriptionScheduledChangesRemoved,
		EventSubscriptionChanged,
		EventSubscriptionDeleted,
		EventPaymentSucceeded:
		result.Handled = true
	default:
		return result, nil
	}

	if event.Content.Subscription == nil || event.Content.Subscription.ID == "" {
		r.log.WarnContext(ctx, "webhook event missing subscription content", "event_type", eventType)
		return result, nil
	}

	sub, err := r.store.GetByProviderID(ctx, event.Content.Subscription.ID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			// The event may race ahead of initial persistence or concern a
			// subscription outside this application's scope.
			r.log.InfoContext(ctx, "webhook for unknown subscription ignored",
				"event_type", eventType,
				"provider_subscription_id", event.Content.Subscription.ID)
			return result, nil
		}
		return result, err
	}

	if err := r.apply(ctx, eventType, sub, event.Content.Subscription); err != nil {
		return result, err
	}

	result.Applied = true
	result.OwnerID = sub.OwnerID

	if r.notify != nil {
		r.notify(ctx, payload, eventType, sub.OwnerID)
	}

	return result, nil
}

func (r *Reconciler) apply(ctx context.Context, eventType string, sub *Subscription, remote *EventSubscription) error {
	switch eventType {
	case EventSubscriptionCancelled, EventSubscriptionCancellationScheduled:
		// Immediate cancellations may omit the timestamp; the cancellation
		// then takes effect now.
		endsAt := remote.CancelledAt.TimePtr()
		if endsAt == nil {
			now := time.Now().UTC()
			endsAt = &now
		}
		sub.EndsAt = endsAt
		return r.store.Update(ctx, sub)

	case EventSubscriptionReactivated, EventSubscriptionScheduledCancellationRemoved:
		sub.EndsAt = nil
		return r.store.Update(ctx, sub)

	case EventSubscriptionChangesScheduled:
		sub.ScheduledChanges = true
		return r.store.Update(ctx, sub)

	case EventSubscriptionScheduledChangesRemoved:
		sub.ScheduledChanges = false
		return r.store.Update(ctx, sub)

	case EventSubscriptionChanged:
		// The event snapshot may be partial; re-read the authoritative
		// record and overwrite the mirror wholesale.
		result, err := r.client.RetrieveSubscription(ctx, sub.ProviderSubscriptionID)
		if err != nil {
			return err
		}
		if result.Subscription == nil {
			return ErrMissingProviderSubscription
		}
		sub.applyProviderState(result.Subscription)
		return r.store.Update(ctx, sub)

	case EventSubscriptionDeleted:
		return r.store.DeleteWithAddOns(ctx, sub.ID)

	case EventPaymentSucceeded:
		if next := remote.NextBillingAt.TimePtr(); next != nil {
			sub.NextBillingAt = next
		} else {
			sub.NextBillingAt = remote.CurrentTermEnd.TimePtr()
		}
		return r.store.Update(ctx, sub)
	}

	return nil
}
