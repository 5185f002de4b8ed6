package notify

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

// Handler exposes the dispatcher over HTTP.
type Handler struct {
	dispatcher *Dispatcher
	logger     *logging.Logger
}

func NewHandler(dispatcher *Dispatcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{dispatcher: dispatcher, logger: logger}
}

type notifyBookingRequest struct {
	Booking booking.Booking `json:"booking"`
}

// NotificationResponse is the body returned by the booking notification endpoint.
type NotificationResponse struct {
	Success      bool     `json:"success"`
	EmailSent    bool     `json:"emailSent"`
	WhatsAppSent bool     `json:"whatsappSent"`
	Message      string   `json:"message"`
	Errors       []string `json:"errors,omitempty"`
}

// NotifyBooking handles POST /api/notifications/booking.
func (h *Handler) NotifyBooking(w http.ResponseWriter, r *http.Request) {
	var req notifyBookingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	b := req.Booking
	if strings.TrimSpace(b.CustomerName) == "" || strings.TrimSpace(b.CustomerPhone) == "" || strings.TrimSpace(b.ServiceType) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing required booking information"})
		return
	}

	result := h.dispatcher.NotifyOperator(r.Context(), b)
	resp := NotificationResponse{
		Success:      result.Success(),
		EmailSent:    result.Sent(ChannelEmail),
		WhatsAppSent: result.Sent(ChannelWhatsApp),
		Errors:       result.Errors(),
	}
	status := http.StatusOK
	resp.Message = "Booking notifications processed"
	if !resp.Success {
		status = http.StatusInternalServerError
		resp.Message = "Failed to send notifications"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
