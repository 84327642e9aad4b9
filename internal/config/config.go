package config

import (
	"os"
	"strings"
	"time"

	"github.com/prakashtraders/checkout-service/internal/patterns"
)

// Config is read once at startup from environment variables.
type Config struct {
	Port string

	// Base URLs of the two backend collaborators. They usually point at the
	// same deployment, but are configured separately.
	OrderServiceURL  string
	VerifyServiceURL string

	// GatewayKeyID is the public key id handed to the payment widget.
	GatewayKeyID string
	Currency     string

	RequestTimeout     time.Duration
	GatewayWaitTimeout time.Duration
}

// Load reads the configuration, falling back to development defaults.
func Load() Config {
	return Config{
		Port:               getenv("PORT", "8080"),
		OrderServiceURL:    getenv("ORDER_SERVICE_URL", "http://localhost:8000"),
		VerifyServiceURL:   getenv("VERIFY_SERVICE_URL", "http://localhost:8000"),
		GatewayKeyID:       getenv("GATEWAY_KEY_ID", "test_key"),
		Currency:           getenv("CURRENCY", "INR"),
		RequestTimeout:     parseDuration(getenv("REQUEST_TIMEOUT", "3s"), patterns.DefaultTimeout),
		GatewayWaitTimeout: parseDuration(getenv("GATEWAY_WAIT_TIMEOUT", "5m"), patterns.DefaultGatewayWait),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
