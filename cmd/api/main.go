package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelter-roster-sync/internal/config"
	"shelter-roster-sync/internal/platform/logger"
	"shelter-roster-sync/internal/router"
)

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "archivo de config opcional (yaml/json/toml)")
	flag.Parse()

	log := logger.NewFromEnv()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("config error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, closeStores, err := router.Open(ctx, *cfg, log)
	if err != nil {
		log.Error("store error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer closeStores()

	h, err := router.NewRouter(opts)
	if err != nil {
		log.Error("router error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// un sync de un roster grande tarda bastante más que un request normal
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
