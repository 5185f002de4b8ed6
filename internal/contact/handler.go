package contact

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wolfman30/carwash-booking/pkg/logging"
)

// Handler serves the contact form endpoint.
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

// Send handles POST /api/contact. The body may wrap the fields in
// {"contact":{...}} or send them flat.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	msg, err := decodeMessage(http.MaxBytesReader(w, r.Body, 64<<10))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}

	err = h.service.Send(r.Context(), msg)
	var verr *ValidationError
	var rerr *RelayError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"emailSent": true,
			"message":   "Contact message sent successfully",
		})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing required contact information", "fields": verr.Fields})
	case errors.As(err, &rerr):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   "Failed to send contact message",
			"errors":  rerr.Errors,
			"handoff": rerr.Handoff,
		})
	default:
		h.logger.Error("contact send failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to send contact message"})
	}
}

func decodeMessage(r io.Reader) (Message, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Message{}, err
	}
	var wrapped struct {
		Contact *Message `json:"contact"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return Message{}, err
	}
	if wrapped.Contact != nil {
		return *wrapped.Contact, nil
	}
	var flat Message
	if err := json.Unmarshal(raw, &flat); err != nil {
		return Message{}, err
	}
	return flat, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
