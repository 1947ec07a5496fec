package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/salon-call-agent/cmd/mainconfig"
	"github.com/wolfman30/salon-call-agent/internal/api/router"
	"github.com/wolfman30/salon-call-agent/internal/app/bootstrap"
	"github.com/wolfman30/salon-call-agent/internal/appointments"
	appconfig "github.com/wolfman30/salon-call-agent/internal/config"
	"github.com/wolfman30/salon-call-agent/internal/feedback"
	"github.com/wolfman30/salon-call-agent/internal/http/handlers"
	"github.com/wolfman30/salon-call-agent/internal/notify"
	"github.com/wolfman30/salon-call-agent/internal/observability/metrics"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment wins anyway.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon-call-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"auto_commit", cfg.AutoCommit,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// buildHandler wires every component. The returned cleanup closes the
// storage clients.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	catalog, err := bootstrap.LoadCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	engine, err := bootstrap.BuildEngine(cfg, catalog, logger)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dialogueMetrics := metrics.NewDialogueMetrics(reg)

	var ses notify.SESAPI
	if cfg.EmailProvider == "ses" {
		client, err := mainconfig.NewSESClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		ses = client
	}
	sender, err := bootstrap.BuildEmailSender(cfg, ses, logger)
	if err != nil {
		return nil, nil, err
	}
	notifier := notify.NewService(sender, cfg.TeamInbox, catalog.Salon().CompanyName, logger)

	pool := bootstrap.ConnectPostgres(ctx, cfg.DatabaseURL, logger)
	repo := bootstrap.BuildRepository(pool, logger)

	var reservations appointments.Reservations
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		reservations = appointments.NewRedisReservations(redisClient, "")
	}

	svc := appointments.NewService(appointments.Deps{
		Hours:        catalog,
		Notifier:     notifier,
		Repository:   repo,
		Reservations: reservations,
		DedupeTTL:    cfg.CommitDedupeTTL,
		Metrics:      dialogueMetrics,
		Logger:       logger,
	})

	var committer appointments.Committer
	if cfg.AutoCommit {
		committer = svc
	}

	h := router.New(&router.Config{
		Logger:             logger,
		Agent:              handlers.NewAgentHandler(engine, committer, dialogueMetrics, logger),
		Salon:              handlers.NewSalonHandler(catalog),
		Appointments:       appointments.NewHandler(svc, repo, logger),
		Feedback:           feedback.NewHandler(notifier, logger),
		AdminStats:         handlers.NewAdminStatsHandler(reg, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	cleanup := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		if pool != nil {
			pool.Close()
		}
	}
	return h, cleanup, nil
}
