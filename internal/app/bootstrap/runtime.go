package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/carwash-booking/internal/bookings"
	appconfig "github.com/wolfman30/carwash-booking/internal/config"
	httpmiddleware "github.com/wolfman30/carwash-booking/internal/http/middleware"
	"github.com/wolfman30/carwash-booking/internal/messaging"
	"github.com/wolfman30/carwash-booking/internal/notify"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildBookingStore opens the configured booking store. The returned close
// func releases the backend's resources and is never nil.
func BuildBookingStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (bookings.Store, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.StoreBackend {
	case appconfig.StoreBackendREST:
		store, err := bookings.NewRESTStore(bookings.RESTConfig{
			BaseURL:    cfg.StoreRESTURL,
			ServiceKey: cfg.StoreServiceKey,
			Table:      cfg.StoreTable,
			Timeout:    cfg.HTTPClientTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: rest store: %w", err)
		}
		logger.Info("booking store ready", "backend", cfg.StoreBackend)
		return store, func() {}, nil
	case appconfig.StoreBackendPostgres, "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		logger.Info("booking store ready", "backend", appconfig.StoreBackendPostgres)
		return bookings.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown store backend %q", cfg.StoreBackend)
	}
}

// BuildEmailSender selects the email provider. A nil sender comes with the
// reason every skipped email reports.
func BuildEmailSender(cfg *appconfig.Config, ses *sesv2.Client, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	sender, provider, reason := notify.BuildEmailSender(notify.ProviderConfig{
		Provider:       cfg.EmailProvider,
		FromEmail:      cfg.EmailFrom,
		FromName:       cfg.EmailFromName,
		ResendAPIKey:   cfg.ResendAPIKey,
		ResendBaseURL:  cfg.ResendBaseURL,
		SendGridAPIKey: cfg.SendGridAPIKey,
		SESClient:      ses,
		Timeout:        cfg.HTTPClientTimeout,
	}, logger)
	if sender == nil {
		logger.Warn("email notifications disabled", "provider", provider, "reason", reason)
		return nil, reason
	}
	logger.Info("email provider ready", "provider", provider)
	return sender, ""
}

// BuildChatSender returns the WhatsApp sender, or nil and the reason the
// channel is disabled.
func BuildChatSender(cfg *appconfig.Config, logger *logging.Logger) (notify.ChatSender, string) {
	if cfg == nil || !cfg.ChatConfigured() {
		if logger != nil {
			logger.Warn("whatsapp notifications disabled: twilio settings incomplete")
		}
		return nil, messaging.NotConfiguredReason
	}
	sender, reason := messaging.BuildChatSender(messaging.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.TwilioWhatsAppFrom,
		Timeout:    cfg.HTTPClientTimeout,
	}, cfg.TwilioWhatsAppTo, logger)
	// Avoid handing back a typed nil inside the interface.
	if sender == nil {
		return nil, reason
	}
	return sender, ""
}

// BuildFormLimiter returns the Redis limiter when a client is available and
// the in-memory token bucket otherwise.
func BuildFormLimiter(ctx context.Context, cfg *appconfig.Config, redisClient *redis.Client) httpmiddleware.Limiter {
	if cfg.FormRateLimitPerMinute <= 0 {
		return nil
	}
	if redisClient != nil {
		return httpmiddleware.NewRedisLimiter(redisClient, "carwash:forms", cfg.FormRateLimitPerMinute, 0)
	}
	return httpmiddleware.PerMinute(ctx, cfg.FormRateLimitPerMinute)
}
