package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hmercer/tapread/internal/api"
	"github.com/hmercer/tapread/internal/cache"
	"github.com/hmercer/tapread/internal/config"
	"github.com/hmercer/tapread/internal/docstore"
	"github.com/hmercer/tapread/internal/lookup"
	"github.com/hmercer/tapread/internal/pipeline"
	"github.com/hmercer/tapread/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Lookup provider and latency stats.
	provider := lookup.NewHTTPClient(cfg.ProviderURL, cfg.ProviderAPIKey, cfg.Language)
	stats := lookup.NewStats(10 * time.Minute)

	// Cache, document store, and the pressure governor that ties them together.
	lookupCache, err := cache.New(cfg.CacheMaxEntries, cfg.CacheMaxBytes)
	if err != nil {
		log.Error("invalid cache configuration", "error", err)
		os.Exit(1)
	}
	store := docstore.NewStore(log)
	governor := cache.NewGovernor(log)
	governor.Register("lookup-cache", lookupCache)
	governor.Register("docstore", store)

	// Structuring pipeline.
	orch := pipeline.NewOrchestrator(cfg, store, governor, log)
	orch.Start(ctx)

	sessions := session.NewManager()

	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Store:        store,
		Sessions:     sessions,
		Cache:        lookupCache,
		Governor:     governor,
		Provider:     provider,
		Stats:        stats,
		Logger:       log,
		Config:       cfg,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()
		sessions.CloseAll()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		provider.Close()
	}()

	log.Info("starting tapread", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
