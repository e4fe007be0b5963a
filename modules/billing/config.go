package billing

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/chargekit/pkg/chargebee"
)

// Config controls how the billing module is wired into the host router.
type Config struct {
	// PublishRoutes enables automatic mounting of the webhook endpoint.
	// Applications that route webhooks themselves leave this off and call
	// the handler directly.
	PublishRoutes bool `env:"CHARGEBEE_PUBLISH_ROUTES" envDefault:"false"`

	// WebhookPath is where inbound provider events are received.
	WebhookPath string `env:"CHARGEBEE_WEBHOOK_PATH" envDefault:"/chargebee/webhook"`
}

// LoadConfig reads module and provider configuration from the environment,
// loading a .env file first when one exists. This is the single place the
// process environment is consulted; everything downstream receives the
// values explicitly.
func LoadConfig() (Config, chargebee.Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, chargebee.Config{}, errors.Join(errors.New("failed to parse billing config"), err)
	}

	var providerCfg chargebee.Config
	if err := env.Parse(&providerCfg); err != nil {
		return Config{}, chargebee.Config{}, errors.Join(errors.New("failed to parse chargebee config"), err)
	}

	return cfg, providerCfg, nil
}
