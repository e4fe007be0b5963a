// Package chargebee is a typed facade over the Chargebee v2 subscription
// API, covering the subscription lifecycle calls the billing toolkit needs:
// create, retrieve, plan swap, cancellation (immediate and end-of-term),
// resume, reactivation, hosted checkout pages, and the customer and
// payment-source reads used to refresh masked payment display fields.
//
// The client is stateless; it performs network I/O only and never persists
// anything locally. Authoritative subscription state always lives on the
// provider side, and every call returns the provider's response verbatim in
// typed form so callers can mirror it.
//
// # Usage
//
//	client, err := chargebee.NewClient(chargebee.Config{
//		Site:   "acme-test",
//		APIKey: os.Getenv("CHARGEBEE_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := client.RetrieveSubscription(ctx, "sub_1234")
//	if err != nil {
//		if chargebee.IsNotFound(err) {
//			// subscription no longer exists on the provider side
//		}
//		return err
//	}
//
// # Error handling
//
// Non-2xx responses decode the provider's error payload into an APIError
// that preserves the original api_error_code and message; the returned error
// additionally matches ErrNotFound for 404s and ErrRemoteCall otherwise.
// Calls are bounded by Config.HTTPTimeout and surface ErrTimeout when the
// deadline is hit, so a hung provider connection never blocks a caller
// indefinitely.
package chargebee
