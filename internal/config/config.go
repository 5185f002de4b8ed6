package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// StoreBackendPostgres persists bookings through a pgx pool.
	StoreBackendPostgres = "postgres"
	// StoreBackendREST persists bookings through a PostgREST endpoint.
	StoreBackendREST = "rest"
)

// Config holds application configuration. It is resolved once at startup and
// passed by reference; nothing below cmd/ reads the environment directly.
type Config struct {
	Port         string
	Env          string
	LogLevel     string
	LogFormat    string
	SiteURL      string
	BusinessName string

	// Booking store
	StoreBackend    string
	DatabaseURL     string
	StoreRESTURL    string
	StoreServiceKey string
	StoreTable      string

	// Email channel
	EmailProvider  string
	EmailFrom      string
	EmailFromName  string
	OperatorEmail  string
	ResendAPIKey   string
	ResendBaseURL  string
	SendGridAPIKey string

	// AWS (SES email provider)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Chat channel (Twilio WhatsApp)
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TwilioWhatsAppTo   string
	OperatorPhone      string

	// HTTP surface
	CORSAllowedOrigins     []string
	RedisAddr              string
	RedisPassword          string
	RedisTLS               bool
	FormRateLimitPerMinute int
	HTTPClientTimeout      time.Duration

	// TrustProxyHeaders enables X-Forwarded-For / X-Real-IP handling. Only
	// set it when the service sits behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		SiteURL:      strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		BusinessName: getEnv("BUSINESS_NAME", "TBI Mobile Car Wash"),

		StoreBackend:    strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", StoreBackendPostgres))),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		StoreRESTURL:    strings.TrimRight(getEnv("STORE_REST_URL", ""), "/"),
		StoreServiceKey: getEnv("STORE_SERVICE_KEY", ""),
		StoreTable:      getEnv("STORE_TABLE", "bookings"),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "resend"))),
		EmailFrom:      getEnv("EMAIL_FROM", "onboarding@resend.dev"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "TBI Car Wash"),
		OperatorEmail:  getEnv("OPERATOR_EMAIL", ""),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		ResendBaseURL:  getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),
		TwilioWhatsAppTo:   getEnv("TWILIO_WHATSAPP_TO", ""),
		OperatorPhone:      getEnv("OPERATOR_PHONE", ""),

		CORSAllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisTLS:               getEnvAsBool("REDIS_TLS", false),
		FormRateLimitPerMinute: getEnvAsInt("FORM_RATE_LIMIT_PER_MINUTE", 10),
		HTTPClientTimeout:      getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second),
		TrustProxyHeaders:      getEnvAsBool("TRUST_PROXY_HEADERS", false),
	}
	if cfg.OperatorPhone == "" {
		cfg.OperatorPhone = strings.TrimPrefix(cfg.TwilioWhatsAppTo, "whatsapp:")
	}
	return cfg
}

// Validate reports configuration that makes the service unable to start.
// Only the store credential is mandatory; notification channels degrade
// individually when their credentials are absent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil config")
	}
	switch c.StoreBackend {
	case StoreBackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case StoreBackendREST:
		var missing []string
		if c.StoreRESTURL == "" {
			missing = append(missing, "STORE_REST_URL")
		}
		if c.StoreServiceKey == "" {
			missing = append(missing, "STORE_SERVICE_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config: %s required for the rest store", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// ChatConfigured reports whether all four Twilio WhatsApp settings are present.
func (c *Config) ChatConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppFrom != "" && c.TwilioWhatsAppTo != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
