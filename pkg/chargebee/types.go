package chargebee

// Wire types mirroring the Chargebee v2 API. Field sets are intentionally
// partial: only what the subscription lifecycle needs is decoded, unknown
// fields are ignored.

// Subscription is the provider's authoritative subscription record.
type Subscription struct {
	ID                  string    `json:"id"`
	PlanID              string    `json:"plan_id"`
	PlanQuantity        int       `json:"plan_quantity"`
	Status              string    `json:"status"`
	CustomerID          string    `json:"customer_id"`
	TrialStart          Timestamp `json:"trial_start"`
	TrialEnd            Timestamp `json:"trial_end"`
	CurrentTermEnd      Timestamp `json:"current_term_end"`
	CancelledAt         Timestamp `json:"cancelled_at"`
	NextBillingAt       Timestamp `json:"next_billing_at"`
	HasScheduledChanges bool      `json:"has_scheduled_changes"`
	Addons              []Addon   `json:"addons"`
}

// Addon is an add-on line attached to a provider subscription.
type Addon struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Customer carries the payment-method summary needed to refresh masked
// payment display fields.
type Customer struct {
	ID                     string         `json:"id"`
	Email                  string         `json:"email"`
	FirstName              string         `json:"first_name"`
	LastName               string         `json:"last_name"`
	PrimaryPaymentSourceID string         `json:"primary_payment_source_id"`
	PaymentMethod          *PaymentMethod `json:"payment_method"`
}

// PaymentMethod identifies how the customer pays. Type is "card" for card
// payments and "paypal_express_checkout" for PayPal redirect wallets.
type PaymentMethod struct {
	Type string `json:"type"`
}

// Card is the masked card record returned alongside card-funded subscriptions.
type Card struct {
	Last4        string `json:"last4"`
	CardType     string `json:"card_type"`
	MaskedNumber string `json:"masked_number"`
}

// PaymentSource is a stored payment instrument on a customer.
type PaymentSource struct {
	ID   string             `json:"id"`
	Type string             `json:"type"`
	Card *PaymentSourceCard `json:"card"`
}

// PaymentSourceCard is the card detail nested in a payment source. Unlike
// Card it reports the network under "brand".
type PaymentSourceCard struct {
	Last4 string `json:"last4"`
	Brand string `json:"brand"`
}

// HostedPage is a provider-hosted checkout session. PassThruContent is the
// opaque owner token round-tripped through checkout unmodified.
type HostedPage struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	State           string            `json:"state"`
	PassThruContent string            `json:"pass_thru_content"`
	Content         HostedPageContent `json:"content"`
}

// HostedPageContent holds the records created by a completed checkout.
type HostedPageContent struct {
	Subscription *Subscription `json:"subscription"`
	Customer     *Customer     `json:"customer"`
	Card         *Card         `json:"card"`
}

// Result is the common response envelope: every subscription-affecting call
// returns the subscription plus, when available, its customer and card.
type Result struct {
	Subscription *Subscription `json:"subscription"`
	Customer     *Customer     `json:"customer"`
	Card         *Card         `json:"card"`
}

// CustomerProfile is the subscriber's billing identity sent on creation.
type CustomerProfile struct {
	FirstName string
	LastName  string
	Email     string
}

// AddonRequest is an add-on line requested at subscription creation.
type AddonRequest struct {
	ID       string
	Quantity int
}
