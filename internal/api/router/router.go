package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/salon-call-agent/internal/appointments"
	"github.com/wolfman30/salon-call-agent/internal/feedback"
	"github.com/wolfman30/salon-call-agent/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/salon-call-agent/internal/http/middleware"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	Agent        *handlers.AgentHandler
	Salon        *handlers.SalonHandler
	Appointments *appointments.Handler
	Feedback     *feedback.Handler
	AdminStats   *handlers.AdminStatsHandler

	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Customer facing endpoints share the per-IP budget.
	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitRPS > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		if cfg.Agent != nil {
			api.Post("/agent", cfg.Agent.Respond)
		}
		if cfg.Salon != nil {
			api.Get("/salon", cfg.Salon.Get)
		}
		if cfg.Appointments != nil {
			api.Post("/appointment", cfg.Appointments.Create)
		}
		if cfg.Feedback != nil {
			api.Post("/feedback", cfg.Feedback.Submit)
		}
	})

	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.Appointments != nil {
				admin.Get("/appointments", cfg.Appointments.List)
				admin.Get("/appointments/{id}", cfg.Appointments.Get)
			}
			if cfg.AdminStats != nil {
				admin.Get("/stats", cfg.AdminStats.Get)
			}
		})
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
