// Package subscription tracks the lifecycle of Chargebee-billed
// subscriptions: a persisted local mirror of provider state, a workflow for
// creating and mutating subscriptions, and a webhook reconciler that keeps
// the mirror current as the provider pushes events.
//
// # Architecture
//
//   - Subscriber: owner-scoped workflow for create, hosted checkout, swap,
//     cancel, resume, reactivate, and mirror refreshes
//   - Store: persistence interface for the mirror (PgStore is the Postgres
//     implementation; multi-row writes are transactional)
//   - Reconciler: applies inbound provider events idempotently
//   - Owner: the capability contract an owning entity implements
//   - Catalog: optional plan definitions loaded from YAML
//
// The provider is the source of truth. The local rows are a cache refreshed
// after every mutating call and by webhook reconciliation; derived
// predicates (OnTrial, Cancelled, Active, Valid) are pure functions of the
// cached state and the clock, so reads never need a provider round-trip.
//
// # Quick start
//
//	client, err := chargebee.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//	store := subscription.NewPgStore(pool)
//
//	sub, err := subscription.NewSubscriber(client, store, account, "cbdemo_hustle").
//		WithAddOn("cbdemo_addon", 1).
//		Create(ctx, cardToken)
//
// # Webhook reconciliation
//
//	reconciler := subscription.NewReconciler(store, client, logger)
//	result, err := reconciler.Handle(ctx, payload)
//
// Every reconciliation action is an overwrite with authoritative data or an
// idempotent flag set, never an incremental update, so duplicate and
// out-of-order deliveries are safe. Unknown event types and events for
// subscriptions the mirror has never seen are acknowledged without effect.
package subscription
