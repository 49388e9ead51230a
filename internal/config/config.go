// Package config defines the global configuration for the brandgate service.
// Configuration is loaded once at process initialization and is immutable
// thereafter. It follows 12-Factor principles: all recognized options come
// from the environment (optionally seeded from a .env file).
package config

import (
	"brandgate/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// startup and never modified. Sub-components receive only the subsets they
// require.
type Config struct {
	// Environment is the execution mode. Plan resolution treats anything
	// other than "production" as a development bypass (see billing.Resolver).
	Environment string `envconfig:"APP_ENV" default:"development" validate:"required,oneof=development staging production"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server  ServerConfig
	Storage StorageConfig
	Billing BillingConfig
	License LicenseConfig
}

// ServerConfig holds HTTP listener and CORS configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"3001"`
	// FrontendURL is the CORS allow-list origin and the default base for
	// checkout redirect URLs.
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000" validate:"url"`
}

// StorageConfig holds the data directory for the flat-file stores.
// The trial ledger (trial-accounts.json) and usage log (usage-log.jsonl)
// both live under DataDir. There is no schema versioning.
type StorageConfig struct {
	DataDir string `envconfig:"DATA_DIR" default:"data"`
}

// BillingConfig holds Stripe credentials and the price IDs for the
// purchasable plans.
type BillingConfig struct {
	StripeSecretKey     SecretString `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret SecretString `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePricePro      string       `envconfig:"STRIPE_PRICE_PRO" default:"price_pro_placeholder"`
	StripePriceAgency   string       `envconfig:"STRIPE_PRICE_AGENCY" default:"price_agency_placeholder"`
}

// LicenseConfig holds the env-driven plan resolution inputs.
// These are deliberately process-wide rather than per-user: the MVP resolves
// every request's plan from the environment. Preserved as-is.
type LicenseConfig struct {
	// LicenseKey marks the process as belonging to a paying customer.
	LicenseKey SecretString `envconfig:"LICENSE_KEY"`
	// PlanName names the licensed tier (case-insensitive); unknown names
	// fall back to pro.
	PlanName string `envconfig:"USER_PLAN"`
	// AllowLocal forces the development bypass even in production mode.
	AllowLocal bool `envconfig:"ALLOW_LOCAL" default:"false"`
}

// IsProduction reports whether the process runs in production execution mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
