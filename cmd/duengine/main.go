package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/democratia-universalis/duengine/internal/adapters/storage/jsonfile"
	"github.com/democratia-universalis/duengine/internal/core/services"
	"github.com/democratia-universalis/duengine/internal/handlers"
	"github.com/democratia-universalis/duengine/internal/middleware"
	"github.com/democratia-universalis/duengine/internal/platform/config"
	"github.com/democratia-universalis/duengine/internal/relay"
	"github.com/democratia-universalis/duengine/internal/worker"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Stores
	ledgerStore := jsonfile.NewLedgerStore(cfg.LedgerFile)
	reminderStore := jsonfile.NewReminderStore(cfg.ReminderFile)
	playerStore := jsonfile.NewPlayerStore(cfg.PlayerFile)

	// Shared outbound queue and the services that feed it
	outQueue := relay.NewQueue(cfg.QueueCapacity)

	registry := services.NewRegistryService(playerStore, logger)
	ledger := services.NewLedgerService(ledgerStore, outQueue, logger,
		services.WithLedgerQueueCapacity(cfg.QueueCapacity))
	reminders := services.NewReminderService(reminderStore, registry, outQueue, logger,
		services.WithReminderQueueCapacity(cfg.QueueCapacity))
	roles := services.NewRoleService(registry, outQueue, logger,
		services.WithRoleQueueCapacity(cfg.QueueCapacity))

	// An unreadable snapshot aborts startup; a missing one starts empty.
	startupCtx := context.Background()
	for name, load := range map[string]func(context.Context) error{
		"players":   registry.LoadState,
		"banking":   ledger.LoadState,
		"reminders": reminders.LoadState,
	} {
		if err := load(startupCtx); err != nil {
			logger.Error("Failed to load snapshot", slog.String("store", name), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	snapshotter := services.NewSnapshotService(logger, registry, ledger, reminders)

	// Workers: one isolated unit per state owner
	workers := []*worker.Worker{
		worker.New(ledger, logger, worker.WithInterval(cfg.BankingInterval)),
		worker.New(reminders, logger, worker.WithInterval(cfg.SchedulerInterval)),
		worker.New(roles, logger, worker.WithInterval(cfg.SchedulerInterval)),
		worker.New(snapshotter, logger, worker.WithInterval(cfg.SnapshotInterval)),
	}
	for _, w := range workers {
		w.Start()
	}

	// Relay loop: resolve addresses, hand to the deliverer
	relayCtx, stopRelay := context.WithCancel(context.Background())
	rl := relay.New(outQueue, relay.NewResolver(registry), relay.LogDeliverer{Logger: logger}, logger)
	go rl.Run(relayCtx)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	limiterInstance := limiter.New(memory.NewStore(), rate)

	r.GET("/healthz", handlers.Healthz)

	v1 := r.Group("/api/v1", middleware.RateLimit(limiterInstance))
	handlers.Register(v1, handlers.Services{
		Banking:   ledger,
		Reminders: reminders,
		Roles:     roles,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown: save first, then stop. A worker stop drops
	// whatever is still queued, so the save must come before it.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
	snapshotter.SaveAll(saveCtx)
	cancelSave()

	for _, w := range workers {
		w.Stop()
	}
	stopRelay()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Shutdown complete")
}
