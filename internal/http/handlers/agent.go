package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/salon-call-agent/internal/appointments"
	"github.com/wolfman30/salon-call-agent/internal/dialogue"
	"github.com/wolfman30/salon-call-agent/internal/observability/metrics"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

const maxAgentBody = 32 << 10

// Responder runs one dialogue turn. *dialogue.Engine satisfies it.
type Responder interface {
	Respond(message string, state dialogue.State) (dialogue.Result, error)
}

// AgentRequest is the body of POST /api/agent.
type AgentRequest struct {
	Message string          `json:"message"`
	State   *dialogue.State `json:"state,omitempty"`
}

// AgentResponse is the per-turn reply. Sent and AppointmentID are only set
// when the server committed the appointment itself.
type AgentResponse struct {
	Reply         string                `json:"reply"`
	Intent        dialogue.Intent       `json:"intent"`
	Decision      dialogue.DecisionKind `json:"decision"`
	State         dialogue.State        `json:"state"`
	AutoSend      bool                  `json:"auto_send,omitempty"`
	Sent          bool                  `json:"sent,omitempty"`
	AppointmentID string                `json:"appointment_id,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// AgentHandler serves the chat endpoint.
type AgentHandler struct {
	engine    Responder
	committer appointments.Committer
	metrics   *metrics.DialogueMetrics
	logger    *logging.Logger
}

// NewAgentHandler creates the chat handler. A nil committer leaves the
// commit to the client, which sees auto_send and posts /api/appointment.
func NewAgentHandler(engine Responder, committer appointments.Committer, m *metrics.DialogueMetrics, logger *logging.Logger) *AgentHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AgentHandler{engine: engine, committer: committer, metrics: m, logger: logger}
}

// Respond handles POST /api/agent.
func (h *AgentHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req AgentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAgentBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "Ungültige Anfrage", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		jsonError(w, "message fehlt", http.StatusBadRequest)
		return
	}
	state := dialogue.EmptyState()
	if req.State != nil {
		state = *req.State
	}

	start := time.Now()
	res, err := h.engine.Respond(req.Message, state)
	if errors.Is(err, dialogue.ErrEmptyMessage) {
		jsonError(w, "message fehlt", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("agent: respond failed", "error", err)
		jsonError(w, dialogue.ReplyApology, http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveTurn(string(res.Decision), string(res.Intent), time.Since(start).Seconds())
	if res.Faulted {
		h.metrics.ObserveFault()
	}

	resp := AgentResponse{
		Reply:    res.Reply,
		Intent:   res.Intent,
		Decision: res.Decision,
		State:    res.State,
		AutoSend: res.AutoSend,
	}
	if res.AutoSend && h.committer != nil {
		h.commit(r, &resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// commit sends the confirmed slots to the team. State is reset only after
// the mail went out. A transient failure keeps the awaiting state so "ja"
// retries; a rejected slot is dropped so the dialogue asks for it again.
func (h *AgentHandler) commit(r *http.Request, resp *AgentResponse) {
	appt, err := h.committer.Commit(r.Context(), appointments.FromSlots(resp.State.Slots))
	resp.AutoSend = false
	if err != nil {
		status, reason := appointments.CommitError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("agent: commit failed", "error", err)
		} else {
			h.logger.Warn("agent: commit rejected", "error", err)
		}
		resp.Error = reason
		resp.Reply = "Leider konnte ich die Terminanfrage nicht senden: " + reason
		var rejected *appointments.ValidationError
		switch {
		case errors.Is(err, appointments.ErrDuplicate):
			resp.State = dialogue.EmptyState()
		case errors.As(err, &rejected):
			resp.State = dropSlot(resp.State, rejected.Field)
			resp.Reply += " " + retryHint(rejected.Field, resp.State)
		}
		return
	}
	resp.Reply = appointments.CommittedMessage
	resp.Sent = true
	resp.AppointmentID = appt.ID
	resp.State = dialogue.EmptyState()
}

// dropSlot removes a rejected slot. A rejection that names no slot of the
// state cannot be corrected in place and starts over.
func dropSlot(state dialogue.State, field string) dialogue.State {
	if !state.Slots.Has(field) {
		return dialogue.EmptyState()
	}
	slots := state.Slots.Clone()
	delete(slots, field)
	return dialogue.State{Slots: slots, Complete: false}
}

func retryHint(field string, state dialogue.State) string {
	switch {
	case len(state.Slots) == 0:
		return "Bitte starte die Terminanfrage neu."
	case field == dialogue.SlotDate:
		return "Bitte nenne mir ein anderes Datum."
	case field == dialogue.SlotTime:
		return "Bitte nenne mir eine andere Uhrzeit."
	default:
		return "Bitte gib diese Angabe noch einmal an."
	}
}
