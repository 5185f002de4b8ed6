package confirmation

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/wolfman30/carwash-booking/internal/booking"
	"github.com/wolfman30/carwash-booking/pkg/logging"
)

//go:embed page.html
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "page.html"))

// Page states.
const (
	StateLoading = "loading"
	StateSuccess = "success"
	StateError   = "error"
)

// PageConfig brands the confirmation landing page.
type PageConfig struct {
	BusinessName  string
	OperatorPhone string
	APIPath       string
}

// Handler serves the confirmation API and landing page.
type Handler struct {
	service *Service
	page    PageConfig
	logger  *logging.Logger
}

func NewHandler(service *Service, page PageConfig, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if page.APIPath == "" {
		page.APIPath = "/api/bookings/confirm"
	}
	return &Handler{service: service, page: page, logger: logger}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type confirmResponse struct {
	Success bool `json:"success"`
	*Result
}

// Confirm handles POST /api/bookings/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing booking ID or action"})
		return
	}

	result, err := h.service.Confirm(r.Context(), req)
	if err != nil {
		status, body := h.errorResponse(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, confirmResponse{Success: true, Result: result})
}

func (h *Handler) errorResponse(err error) (int, errorResponse) {
	var conflict *ConflictError
	switch {
	case errors.Is(err, ErrMissingFields):
		return http.StatusBadRequest, errorResponse{Error: "Missing booking ID or action"}
	case errors.Is(err, ErrUnsupportedAction):
		return http.StatusBadRequest, errorResponse{Error: "Only confirm action is supported"}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "Booking not found"}
	case errors.As(err, &conflict):
		return http.StatusConflict, errorResponse{Error: "Booking is " + string(conflict.Status) + " and cannot be confirmed"}
	default:
		h.logger.Error("booking confirmation failed", "error", err)
		return http.StatusInternalServerError, errorResponse{Error: "Failed to process booking confirmation", Details: err.Error()}
	}
}

type pageData struct {
	State        string
	Message      string
	BookingID    string
	Action       string
	APIPath      string
	BusinessName string
	WhatsAppURL  string
}

// Page handles GET /confirm-booking. Valid links render the loading state,
// which posts to the API from the browser; invalid links render the error
// state directly.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	action := strings.TrimSpace(r.URL.Query().Get("action"))

	data := pageData{
		State:        StateLoading,
		BookingID:    id,
		Action:       action,
		APIPath:      h.page.APIPath,
		BusinessName: h.page.BusinessName,
	}
	if h.page.OperatorPhone != "" {
		data.WhatsAppURL = booking.WhatsAppChatURL(h.page.OperatorPhone)
	}
	if id == "" || action != ActionConfirm {
		data.State = StateError
		data.Message = "Invalid confirmation link - only confirm action is supported"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if data.State == StateError {
		w.WriteHeader(http.StatusBadRequest)
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("render confirmation page failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
