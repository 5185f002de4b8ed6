package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/carwash-booking/internal/confirmation"
	"github.com/wolfman30/carwash-booking/internal/contact"
	httpmiddleware "github.com/wolfman30/carwash-booking/internal/http/middleware"
	"github.com/wolfman30/carwash-booking/internal/intake"
	"github.com/wolfman30/carwash-booking/internal/notify"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	IntakeHandler       *intake.Handler
	ContactHandler      *contact.Handler
	ConfirmationHandler *confirmation.Handler
	NotifyHandler       *notify.Handler
	MetricsHandler      http.Handler
	HealthCheck         http.HandlerFunc
	CORSAllowedOrigins  []string

	// FormLimiter throttles the public form endpoints per client IP (optional).
	FormLimiter httpmiddleware.Limiter
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Leave false unless a trusted proxy overwrites those headers, otherwise
	// callers can pick their own rate-limit key.
	TrustProxyHeaders bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	health := cfg.HealthCheck
	if health == nil {
		health = healthOK
	}
	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	if cfg.ConfirmationHandler != nil {
		r.Get("/confirm-booking", cfg.ConfirmationHandler.Page)
	}

	r.Route("/api", func(api chi.Router) {
		// Public form endpoints.
		api.Group(func(forms chi.Router) {
			if cfg.FormLimiter != nil {
				forms.Use(httpmiddleware.RateLimit(cfg.FormLimiter, cfg.Logger))
			}
			if cfg.IntakeHandler != nil {
				forms.Post("/bookings", cfg.IntakeHandler.Submit)
			}
			if cfg.ContactHandler != nil {
				forms.Post("/contact", cfg.ContactHandler.Send)
			}
		})
		if cfg.ConfirmationHandler != nil {
			api.Post("/bookings/confirm", cfg.ConfirmationHandler.Confirm)
		}
		if cfg.NotifyHandler != nil {
			api.Post("/notifications/booking", cfg.NotifyHandler.NotifyBooking)
		}
	})

	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
