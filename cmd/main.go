package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pandapos/internal/api"
	"pandapos/internal/auth"
	"pandapos/internal/config"
	"pandapos/internal/database"
	"pandapos/internal/live"
	"pandapos/internal/models"
	"pandapos/internal/monitoring"
	"pandapos/internal/ordering"
	"pandapos/internal/promo"
	"pandapos/internal/reports"
	"pandapos/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// .env is a development convenience only
	if os.Getenv("PANDAPOS_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to load .env: %v", err)
		}
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.MetricsConfig.Port = *metricsPort
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.Open(database.Options{
		Driver: cfg.Database.Driver,
		URL:    cfg.Database.URL,
		Debug:  cfg.Database.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if cfg.Seed {
		if err := database.Seed(db); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	st := store.New(db)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	collector := monitoring.NewCollector()
	monitor := monitoring.NewMonitor()
	hub := live.NewHub(logger)

	sessions := ordering.NewManager(ordering.Config{
		TaxRate: cfg.Ordering.TaxRate,
		Pricing: cfg.Ordering.Pricing,
	}, ordering.Deps{
		Promotions: st,
		Orders:     st,
		Menu:       st,
		Logger:     logger,
		Hooks: ordering.Hooks{
			OrderPlaced: func(order *models.Order) {
				collector.ObserveOrder(order)
				monitor.RecordOrder(order)
				hub.OrderPlaced(order)
			},
			SessionsChanged: collector.SetActiveSessions,
		},
	})

	trigger := promo.NewTrigger(st, initializeCopywriter(cfg, logger), promo.LogMailer{Logger: logger}, cfg.Promo.From, logger)
	trigger.OnSent = collector.AddPromoEmails

	server := api.New(api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AccessLog:      !cfg.IsProduction(),
	}, api.Deps{
		Store:    st,
		Sessions: sessions,
		Auth:     auth.NewService(st, tokens),
		Tokens:   tokens,
		Reports:  reports.New(db, time.Local),
		Promos:   trigger,
		Hub:      hub,
		Monitor:  monitor,
		Metrics:  collector,
		Logger:   logger,
	})

	go sessions.Run(ctx, time.Minute)
	go hub.Run(ctx)

	// Start metrics server
	if cfg.MetricsConfig.Enabled {
		go startMetricsServer(cfg.MetricsConfig.Port, cfg.MetricsConfig.Path, collector)
	}

	// Start API server
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down servers")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}

		cancel()
	}()

	logger.Info("starting API server", "port", cfg.Server.Port, "environment", cfg.Environment, "db", cfg.Database.Driver)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// initializeCopywriter uses OpenAI when a key is configured and the static
// template otherwise
func initializeCopywriter(cfg *config.Config, logger *slog.Logger) promo.Copywriter {
	if cfg.Promo.OpenAIKey == "" {
		return promo.TemplateCopywriter{}
	}
	writer, err := promo.NewOpenAICopywriter(cfg.Promo.OpenAIKey, cfg.Promo.Model, logger)
	if err != nil {
		logger.Warn("falling back to template promo copy", "error", err)
		return promo.TemplateCopywriter{}
	}
	return writer
}

func startMetricsServer(port int, path string, collector *monitoring.Collector) {
	if path == "" {
		path = "/metrics"
	}
	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET(path, gin.WrapH(collector.Handler()))

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting metrics server", "port", port, "path", path)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("metrics server error", "error", err)
	}
}
