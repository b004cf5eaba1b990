package config

import (
	"os"
	"strings"
)

type VerificationPolicy string

const (
	// VerifyAuto verifies webhook signatures only when a webhook id is configured.
	VerifyAuto     VerificationPolicy = "auto"
	VerifyEnabled  VerificationPolicy = "enabled"
	VerifyDisabled VerificationPolicy = "disabled"
)

type Config struct {
	HTTPAddr string

	PayPalAPIBase  string
	PayPalClientID string
	PayPalSecret   string
	WebhookID      string
	Currency       string

	DiscordWebhookURL string

	Verification VerificationPolicy
}

func Load() *Config {
	return &Config{
		HTTPAddr:          ":" + getEnv("PORT", "5000"),
		PayPalAPIBase:     strings.TrimRight(getEnv("PAYPAL_API_BASE", "https://api-m.paypal.com"), "/"),
		PayPalClientID:    os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:      os.Getenv("PAYPAL_SECRET"),
		WebhookID:         os.Getenv("PAYPAL_WEBHOOK_ID"),
		Currency:          getEnv("PAYPAL_CURRENCY", "EUR"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		Verification:      parsePolicy(getEnv("WEBHOOK_VERIFICATION", string(VerifyAuto))),
	}
}

// VerifySignatures resolves the verification policy against the configured webhook id.
func (c *Config) VerifySignatures() bool {
	switch c.Verification {
	case VerifyEnabled:
		return true
	case VerifyDisabled:
		return false
	default:
		return c.WebhookID != ""
	}
}

func parsePolicy(v string) VerificationPolicy {
	switch p := VerificationPolicy(strings.ToLower(strings.TrimSpace(v))); p {
	case VerifyEnabled, VerifyDisabled:
		return p
	default:
		return VerifyAuto
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
