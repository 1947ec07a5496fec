package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salon-call-agent/internal/business"
	"github.com/wolfman30/salon-call-agent/internal/observability/metrics"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

type staticSalon business.Salon

func (s staticSalon) Salon() business.Salon { return business.Salon(s) }

func TestSalonHandler(t *testing.T) {
	h := NewSalonHandler(staticSalon{
		CompanyName:  "Salon Test",
		OpeningHours: map[string]string{"tue": "09:00-18:00"},
		Services:     []business.Service{{Name: "Haarschnitt", Price: "ab 35 €"}},
	})
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/salon", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got business.Salon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Salon Test", got.CompanyName)
	assert.Equal(t, "ab 35 €", got.Services[0].Price)
}

func TestAdminStatsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewDialogueMetrics(reg)
	m.ObserveTurn("greeting", "greeting", 0.001)
	m.ObserveTurn("slot_update", "appointment", 0.001)
	m.ObserveTurn("slot_update", "appointment", 0.002)
	m.ObserveCommit("sent")

	rec := httptest.NewRecorder()
	NewAdminStatsHandler(reg, logging.Discard()).Get(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, float64(2), snap.TurnsByDecision["slot_update"])
	assert.Equal(t, float64(1), snap.CommitsByStatus["sent"])
	assert.Equal(t, []string{"greeting", "slot_update"}, snap.Decisions)
}
