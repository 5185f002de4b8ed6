package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/carwash-booking/cmd/mainconfig"
	"github.com/wolfman30/carwash-booking/internal/api/router"
	"github.com/wolfman30/carwash-booking/internal/app/bootstrap"
	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/internal/bookings"
	appconfig "github.com/wolfman30/carwash-booking/internal/config"
	"github.com/wolfman30/carwash-booking/internal/confirmation"
	"github.com/wolfman30/carwash-booking/internal/contact"
	"github.com/wolfman30/carwash-booking/internal/intake"
	"github.com/wolfman30/carwash-booking/internal/notify"
	"github.com/wolfman30/carwash-booking/internal/observability/metrics"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting carwash booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := bootstrap.BuildBookingStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open booking store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var sesClient *sesv2.Client
	if strings.EqualFold(cfg.EmailProvider, notify.ProviderSES) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		sesClient = mainconfig.NewSESClient(awsCfg, cfg)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      buildHandler(ctx, cfg, logger, store, sesClient, redisClient, nil),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildHandler wires services and handlers onto the router. A nil registry
// uses the Prometheus default registry.
func buildHandler(
	ctx context.Context,
	cfg *appconfig.Config,
	logger *logging.Logger,
	store bookings.Store,
	sesClient *sesv2.Client,
	redisClient *redis.Client,
	reg *prometheus.Registry,
) http.Handler {
	var (
		registerer     prometheus.Registerer = prometheus.DefaultRegisterer
		metricsHandler                       = promhttp.Handler()
	)
	if reg != nil {
		registerer = reg
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	bookingMetrics := metrics.NewBookingMetrics(registerer)

	emailSender, emailReason := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	chatSender, chatReason := bootstrap.BuildChatSender(cfg, logger)

	dispatcher := notify.NewDispatcher(emailSender, chatSender, notify.DispatcherConfig{
		SiteURL:                 cfg.SiteURL,
		BusinessName:            cfg.BusinessName,
		OperatorEmail:           cfg.OperatorEmail,
		OperatorPhone:           cfg.OperatorPhone,
		ChatTo:                  cfg.TwilioWhatsAppTo,
		EmailUnconfiguredReason: emailReason,
		ChatUnconfiguredReason:  chatReason,
	}, bookingMetrics, logger)

	intakeService := intake.NewService(store, dispatcher, booking.HandoffConfig{
		OperatorEmail: cfg.OperatorEmail,
		OperatorPhone: cfg.OperatorPhone,
		BusinessName:  cfg.BusinessName,
	}, bookingMetrics, logger)
	contactService := contact.NewService(dispatcher, cfg.OperatorEmail, logger)
	confirmationService := confirmation.NewService(store, dispatcher, bookingMetrics, logger)

	return router.New(&router.Config{
		Logger:         logger,
		IntakeHandler:  intake.NewHandler(intakeService, logger),
		ContactHandler: contact.NewHandler(contactService, logger),
		ConfirmationHandler: confirmation.NewHandler(confirmationService, confirmation.PageConfig{
			BusinessName:  cfg.BusinessName,
			OperatorPhone: cfg.OperatorPhone,
		}, logger),
		NotifyHandler:      notify.NewHandler(dispatcher, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		FormLimiter:        bootstrap.BuildFormLimiter(ctx, cfg, redisClient),
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	})
}
