package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// CommittedMessage is the confirmation shown after a successful commit.
const CommittedMessage = "Der Termin wurde an das Team gesendet!"

// Handler handles HTTP requests for appointments
type Handler struct {
	committer Committer
	repo      Repository
	logger    *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(committer Committer, repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{committer: committer, repo: repo, logger: logger}
}

type commitResponse struct {
	OK            bool   `json:"ok"`
	Message       string `json:"message"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Create handles POST /api/appointment from the booking form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Ungültige Anfrage."})
		return
	}
	req.Source = SourceForm

	appt, err := h.committer.Commit(r.Context(), req)
	if err != nil {
		status, body := CommitErrorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("appointment commit failed", "error", err)
		}
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, commitResponse{OK: true, Message: CommittedMessage, AppointmentID: appt.ID})
}

// CommitErrorResponse maps a Commit error to an HTTP status and body.
func CommitErrorResponse(err error) (int, any) {
	status, reason := CommitError(err)
	return status, errorResponse{Error: reason}
}

// CommitError maps a Commit error to an HTTP status and a reason that can be
// shown to the customer.
func CommitError(err error) (int, string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Reason
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict, "Diese Terminanfrage wurde bereits gesendet."
	case errors.Is(err, ErrDelivery):
		return http.StatusInternalServerError, "E-Mail Versand fehlgeschlagen"
	default:
		return http.StatusInternalServerError, "Interner Fehler"
	}
}

// ListAppointmentsResponse is the response for listing appointments
type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
	Count        int            `json:"count"`
	Offset       int            `json:"offset"`
	Limit        int            `json:"limit"`
}

// List handles GET /admin/appointments?from=&to=&limit=&offset=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{From: q.Get("from"), To: q.Get("to"), Limit: 50}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 200 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		filter.Offset = offset
	}

	items, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list appointments"})
		return
	}
	writeJSON(w, http.StatusOK, ListAppointmentsResponse{
		Appointments: items,
		Count:        len(items),
		Offset:       filter.Offset,
		Limit:        filter.Limit,
	})
}

// Get handles GET /admin/appointments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	appt, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "appointment not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load appointment", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load appointment"})
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
