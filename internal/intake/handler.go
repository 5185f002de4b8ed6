package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/internal/notify"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

// Handler serves the booking form endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type notificationView struct {
	Success      bool                    `json:"success"`
	EmailSent    bool                    `json:"emailSent"`
	WhatsAppSent bool                    `json:"whatsappSent"`
	Channels     []notify.ChannelOutcome `json:"channels"`
	Errors       []string                `json:"errors,omitempty"`
}

type submitResponse struct {
	Success      bool              `json:"success"`
	Booking      booking.Booking   `json:"booking"`
	Path         Path              `json:"path"`
	Notification notificationView  `json:"notification"`
	Handoffs     []booking.Handoff `json:"handoffs"`
}

// Submit handles POST /api/bookings.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}

	outcome, err := h.service.Submit(r.Context(), req)
	if err != nil {
		var verr *ValidationError
		var serr *StoreError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Please fill in all required fields", "fields": verr.Fields})
		case errors.As(err, &serr):
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": serr.Message})
		default:
			h.logger.Error("booking submission failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to submit booking"})
		}
		return
	}

	handoffs := outcome.Handoffs
	if handoffs == nil {
		handoffs = []booking.Handoff{}
	}
	writeJSON(w, http.StatusCreated, submitResponse{
		Success: true,
		Booking: outcome.Booking,
		Path:    outcome.Path,
		Notification: notificationView{
			Success:      outcome.Notification.Success(),
			EmailSent:    outcome.Notification.Sent(notify.ChannelEmail),
			WhatsAppSent: outcome.Notification.Sent(notify.ChannelWhatsApp),
			Channels:     outcome.Notification.Outcomes,
			Errors:       outcome.Notification.Errors(),
		},
		Handoffs: handoffs,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
