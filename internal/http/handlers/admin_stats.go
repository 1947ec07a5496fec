package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/salon-call-agent/internal/observability/metrics"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// AdminStatsHandler reports dialogue and commit counters for the admin view.
type AdminStatsHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewAdminStatsHandler reads from gatherer, or the default registry if nil.
func NewAdminStatsHandler(gatherer prometheus.Gatherer, logger *logging.Logger) *AdminStatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminStatsHandler{gatherer: gatherer, logger: logger}
}

// Get handles GET /admin/stats.
func (h *AdminStatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := metrics.Summarize(h.gatherer)
	if err != nil {
		h.logger.Error("failed to gather metrics", "error", err)
		jsonError(w, "failed to gather metrics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
