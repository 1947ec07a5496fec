// Package feedback forwards free-text customer feedback to the salon team.
package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/salon-call-agent/internal/notify"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// Notifier delivers feedback. *notify.Service satisfies it.
type Notifier interface {
	NotifyFeedback(ctx context.Context, fb notify.Feedback) error
}

// Request is the body of POST /api/feedback.
type Request struct {
	Email string `json:"email" validate:"omitempty,email,max=200"`
	Text  string `json:"text" validate:"required,max=5000"`
}

type response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

var validate = validator.New()

// Handler serves the feedback endpoint.
type Handler struct {
	notifier Notifier
	logger   *logging.Logger
}

// NewHandler creates a feedback handler.
func NewHandler(notifier Notifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{notifier: notifier, logger: logger}
}

// Submit handles POST /api/feedback.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 32<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "Ungültige Anfrage"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Text = strings.TrimSpace(req.Text)

	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, response{Error: "Leeres Feedback"})
		return
	}
	if err := validate.Struct(req); err != nil {
		// A malformed sender address is dropped rather than rejected; the
		// feedback itself is still worth reading.
		if len(req.Text) > 5000 {
			writeJSON(w, http.StatusBadRequest, response{Error: "Feedback ist zu lang"})
			return
		}
		req.Email = ""
	}

	if err := h.notifier.NotifyFeedback(r.Context(), notify.Feedback{Email: req.Email, Text: req.Text}); err != nil {
		h.logger.Error("feedback: delivery failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, response{Error: "E-Mail Versand fehlgeschlagen"})
		return
	}
	writeJSON(w, http.StatusOK, response{OK: true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
