// Command challwatch runs the challenge tracking engine and its ops
// HTTP surface.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/challwatch/challwatch/internal/adapters/http/api"
	"github.com/challwatch/challwatch/internal/adapters/platform"
	repository "github.com/challwatch/challwatch/internal/adapters/repository"
	app "github.com/challwatch/challwatch/internal/app"
	"github.com/challwatch/challwatch/internal/config"
	"github.com/challwatch/challwatch/pkg/logger"
	"github.com/challwatch/challwatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	metricsUpdateInterval = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Error(ctx, "opening store failed", logger.Error(err))
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "closing store failed", logger.Error(err))
		}
	}()

	source := platform.NewClient(cfg.PlatformBaseURL,
		platform.WithAPIKey(cfg.PlatformAPIKey),
		platform.WithLang(cfg.PlatformLang),
		platform.WithRateLimit(cfg.RatePerSecond, cfg.RateBurst),
	)

	svc := app.New(store, source,
		app.WithLogger(log),
		app.WithChallengePollPeriod(time.Duration(cfg.ChallengePollSeconds)*time.Second),
		app.WithUserPollPeriod(time.Duration(cfg.UserPollSeconds)*time.Second),
		app.WithDispatchPeriod(time.Duration(cfg.DispatchSeconds)*time.Second),
		app.WithBootstrapThreshold(cfg.BootstrapThreshold),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "starting engine failed", logger.Error(err))
		return
	}

	go startMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "stopped")
}

// openStore picks the persistence backend: SQLite when a path is
// configured, in-memory otherwise.
func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.DatabasePath == "" {
		return repository.NewMemoryStore(), nil
	}
	return repository.OpenSQLite(cfg.DatabasePath)
}

// startMetricsUpdater refreshes sampled gauges on a fixed interval.
func startMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateQueueDepth(svc.QueueLen(ctx))
		}
	}
}
