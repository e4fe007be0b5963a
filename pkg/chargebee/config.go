package chargebee

import "time"

// Config holds the credentials and checkout settings for a Chargebee site.
// Values are populated from the environment via caarlos0/env tags and must be
// passed explicitly to NewClient; the client never reads the process
// environment on its own.
type Config struct {
	Site    string `env:"CHARGEBEE_SITE,required"`
	APIKey  string `env:"CHARGEBEE_KEY,required"`
	Gateway string `env:"CHARGEBEE_GATEWAY"`

	// Redirect targets for hosted checkout pages.
	SuccessURL string `env:"CHARGEBEE_REDIRECT_SUCCESS"`
	CancelURL  string `env:"CHARGEBEE_REDIRECT_CANCELLED"`

	// HTTPTimeout bounds every provider call. The provider API has no
	// server-side deadline, so a hung connection would otherwise block the
	// caller indefinitely.
	HTTPTimeout time.Duration `env:"CHARGEBEE_HTTP_TIMEOUT" envDefault:"30s"`

	// BaseURL overrides the site-derived API endpoint. Used in tests.
	BaseURL string `env:"CHARGEBEE_BASE_URL"`
}
