// Package main wires together the forecast service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/avilchesi/pronostico-service/internal/api"
	"github.com/avilchesi/pronostico-service/internal/clock/system"
	"github.com/avilchesi/pronostico-service/internal/config"
	"github.com/avilchesi/pronostico-service/internal/coordinator"
	"github.com/avilchesi/pronostico-service/internal/fetcher/headless"
	"github.com/avilchesi/pronostico-service/internal/fetcher/static"
	"github.com/avilchesi/pronostico-service/internal/forecast"
	"github.com/avilchesi/pronostico-service/internal/logging"
	"github.com/avilchesi/pronostico-service/internal/metrics"
	"github.com/avilchesi/pronostico-service/internal/scheduler"
	filestore "github.com/avilchesi/pronostico-service/internal/storage/file"
	memorystore "github.com/avilchesi/pronostico-service/internal/storage/memory"
)

// detector threshold for auto mode; a static page smaller than this is
// assumed to be a JS shell.
const minStaticHTMLBytes = 512

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Best-effort .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store forecast.SnapshotStore
	if cfg.Cache.Path == "" {
		logger.Warn("cache.path empty, using in-memory snapshot store")
		store = memorystore.New()
	} else {
		fileStore, err := filestore.New(cfg.Cache.Path)
		if err != nil {
			logger.Fatal("snapshot store init failed", zap.Error(err))
		}
		store = fileStore
	}

	var headlessFetcher forecast.PageFetcher
	if cfg.Fetch.Mode != coordinator.ModeStatic {
		hf, err := headless.New(headless.Config{
			URL:               cfg.Fetch.URL,
			UserAgent:         cfg.Fetch.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
			ReadinessTimeout:  cfg.ReadyTimeout(),
			ReadySelector:     cfg.Fetch.ReadySelector,
		})
		if err != nil {
			logger.Fatal("headless fetcher init failed", zap.Error(err))
		}
		defer hf.Close()
		headlessFetcher = hf
	}

	var (
		probeFetcher forecast.PageFetcher
		detector     *forecast.RenderDetector
	)
	if cfg.Fetch.Mode != coordinator.ModeHeadless {
		pf, err := static.New(static.Config{
			URL:       cfg.Fetch.URL,
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.NavTimeout(),
		})
		if err != nil {
			logger.Fatal("static fetcher init failed", zap.Error(err))
		}
		probeFetcher = pf
		detector = forecast.NewRenderDetector(minStaticHTMLBytes, cfg.Fetch.ReadySelector)
	}

	clock := system.New()
	coord := coordinator.New(
		store,
		headlessFetcher,
		probeFetcher,
		detector,
		clock,
		coordinator.Config{TTL: cfg.TTL(), Mode: cfg.Fetch.Mode},
		logger.Named("coordinator"),
	)

	apiServer := api.NewServer(coord, clock, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	if cfg.Fetch.Prewarm {
		go scheduler.Prewarm(ctx, coord, logger.Named("prewarm"))
	}

	if cfg.Fetch.RefreshCron != "" {
		sched, err := scheduler.New(coord, cfg.Fetch.RefreshCron, logger.Named("scheduler"))
		if err != nil {
			logger.Fatal("refresh scheduler init failed", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
