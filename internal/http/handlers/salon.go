package handlers

import (
	"net/http"

	"github.com/wolfman30/salon-call-agent/internal/business"
)

// SalonSource exposes the loaded business data. *business.Catalog
// satisfies it.
type SalonSource interface {
	Salon() business.Salon
}

// SalonHandler serves GET /api/salon for the booking form.
type SalonHandler struct {
	source SalonSource
}

// NewSalonHandler creates the salon data handler.
func NewSalonHandler(source SalonSource) *SalonHandler {
	return &SalonHandler{source: source}
}

// Get writes the salon data as loaded at startup.
func (h *SalonHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, h.source.Salon())
}
