package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meditrack/meditrack/internal/config"
	"github.com/meditrack/meditrack/internal/domain/escalation"
	"github.com/meditrack/meditrack/internal/domain/interaction"
	"github.com/meditrack/meditrack/internal/domain/medication"
	"github.com/meditrack/meditrack/internal/platform/cache"
	"github.com/meditrack/meditrack/internal/platform/db"
	"github.com/meditrack/meditrack/internal/platform/middleware"
	"github.com/meditrack/meditrack/internal/platform/notify"
	"github.com/meditrack/meditrack/internal/platform/registry"
)

// patientRisk adapts the interaction service and medication store to
// the escalation service's severe-risk check.
type patientRisk struct {
	safety *interaction.Service
	meds   medication.Repository
}

func (r *patientRisk) SevereRisk(ctx context.Context, patientID uuid.UUID) (bool, error) {
	stored, _, err := r.meds.ListByPatient(ctx, patientID, 500, 0)
	if err != nil {
		return false, err
	}
	meds := make([]medication.Medication, 0, len(stored))
	for _, m := range stored {
		meds = append(meds, *m)
	}
	return r.safety.RequiresImmediateAttention(ctx, meds)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "safety-server",
		Short: "Medication interaction and safety validation API server",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the safety API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Shared interaction result cache
	resultCache := cache.New(cfg.CacheMaxSize)
	cacheTTL := time.Duration(cfg.InteractionCacheTTLHours) * time.Hour
	apiTimeout := time.Duration(cfg.APITimeoutMS) * time.Millisecond

	// Reference registry clients
	drugClient := registry.NewDrugLabelClient(registry.Options{
		BaseURL: cfg.DrugRegistryURL,
		Timeout: apiTimeout,
	}, logger)
	supplementClient := registry.NewSupplementClient(registry.Options{
		BaseURL: cfg.SupplementRegistryURL,
		Timeout: apiTimeout,
	}, logger)

	// Medication store
	medRepo := medication.NewRepoPG(pool)
	medSvc := medication.NewService(medRepo)
	medication.NewHandler(medSvc).RegisterRoutes(apiV1)

	// Safety engine
	safetySvc := interaction.NewService(
		interaction.NewDrugChecker(drugClient, resultCache, cacheTTL, logger),
		interaction.NewHerbChecker(supplementClient, resultCache, cacheTTL, logger),
		interaction.ScoreConfig{
			SeverityWeight:  cfg.ScoreSeverityWeight,
			TimingWeight:    cfg.ScoreTimingWeight,
			SeverityWeights: interaction.DefaultSeverityWeights(),
		},
		cfg.MinDoseIntervalMinutes,
		logger,
	)
	interaction.NewHandler(safetySvc, medRepo).RegisterRoutes(apiV1)

	// Missed-dose escalation
	notifyMgr := notify.NewManager(
		notify.LogEmailSender{Logger: logger},
		notify.LogSMSSender{Logger: logger},
		notify.NewTemplateEngine(),
	)
	contacts := escalation.StaticContacts{
		UserEmail:     cfg.NotifyUserEmail,
		FamilyPhone:   cfg.NotifyFamilyPhone,
		ProviderEmail: cfg.NotifyProviderEmail,
	}
	dispatcher := escalation.NewNotifyDispatcher(notifyMgr, contacts, logger)

	escalationSvc := escalation.NewService(
		escalation.NewHistoryPG(pool),
		&patientRisk{safety: safetySvc, meds: medRepo},
		dispatcher,
		escalation.Thresholds{
			AlertAfter:   time.Duration(cfg.EscalationAlertMinutes) * time.Minute,
			UrgentAfter:  time.Duration(cfg.EscalationUrgentMinutes) * time.Minute,
			AlertMissed:  cfg.EscalationAlertMissed,
			UrgentMissed: cfg.EscalationUrgentMissed,
		},
		24*time.Hour,
		logger,
	)
	escalation.NewHandler(escalationSvc).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
