// Package server wires configuration, storage, the domain services, and
// the HTTP server together, and owns the process lifecycle.
package server

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

	"pantrypal/pkg/api"
	"pantrypal/pkg/auth"
	"pantrypal/pkg/config"
	"pantrypal/pkg/events"
	"pantrypal/pkg/health"
	"pantrypal/pkg/jobs"
	"pantrypal/pkg/logger"
	"pantrypal/pkg/pantry"
	"pantrypal/pkg/recipes"
	"pantrypal/pkg/storage"
	"pantrypal/pkg/token"
)

// Run parses flags, builds the service graph, and serves until a shutdown
// signal arrives. It returns a process exit code.
func Run() int {
	addr := flag.String("addr", "", "Listen address (overrides config)")
	configPath := flag.String("config", "", "Config file path (optional)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if *addr != "" {
		cfg.Address = *addr
	}
	if *logLevel != "info" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "text" {
		cfg.Logging.Format = *logFormat
	}

	logger.Init(logger.Options{
		Level:      logger.LogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.ErrorWithErr("invalid configuration", err)
		return 1
	}
	log.Info("configuration loaded", "address", cfg.Address, "database", cfg.Database.Type)

	monitor := health.NewMonitor()

	store, err := storage.NewStore(cfg.Database)
	if err != nil {
		log.ErrorWithErr("failed to open storage", err)
		return 1
	}
	defer store.Close()
	monitor.SetComponentStatus("database", health.StatusHealthy, cfg.Database.Type)

	tokens, err := token.NewManager(token.Config{
		Secret:     cfg.Auth.Secret,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		AccessTTL:  time.Duration(cfg.Auth.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.Auth.RefreshTTLHours) * time.Hour,
	})
	if err != nil {
		log.ErrorWithErr("failed to create token manager", err)
		return 1
	}

	sessions, err := newSessionStore(cfg, monitor)
	if err != nil {
		log.ErrorWithErr("failed to create session store", err)
		return 1
	}

	authSvc := auth.NewService(auth.Config{
		RotateRefresh:     cfg.Auth.RotateRefresh,
		ExpiringSoon:      time.Duration(cfg.Auth.ExpiringSoonMins) * time.Minute,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	}, store, tokens, sessions)

	hub := events.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	pantrySvc := pantry.NewService(store, hub, cfg.Jobs.WarnWithinDays)
	recipeSvc := recipes.NewService(store)

	var scanner *jobs.ExpiryScanner
	if cfg.Jobs.ExpiryScanOnOff {
		scanner = jobs.NewExpiryScanner(store, hub, cfg.Jobs.WarnWithinDays)
		if err := scanner.Start(cfg.Jobs.ExpiryScanCron); err != nil {
			log.ErrorWithErr("failed to start expiry scanner", err)
			return 1
		}
		defer scanner.Stop()
		log.Info("expiry scanner scheduled", "cron", cfg.Jobs.ExpiryScanCron)
	}

	handler := api.NewHandler(authSvc, pantrySvc, recipeSvc, hub, monitor)
	router := api.SetupRouter(handler, cfg.CORS.AllowedOrigin)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
		IdleTimeout:  120 * time.Second,
	}

	errorChan := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLS.Enabled {
			log.Info("starting server with TLS", "address", cfg.Address)
			err = srv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			log.Info("starting server with HTTP", "address", cfg.Address)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
	case err := <-errorChan:
		log.ErrorWithErr("server error", err)
		return 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr("error during shutdown", err)
		return 1
	}

	log.Info("server stopped")
	return 0
}

// newSessionStore selects the live-session backend from configuration
func newSessionStore(cfg *config.ServerConfig, monitor *health.Monitor) (auth.SessionStore, error) {
	switch cfg.Auth.SessionStore {
	case "", "memory":
		return auth.NewMemorySessionStore(), nil
	case "redis":
		store, err := auth.NewRedisSessionStore(cfg.Auth.RedisAddr, cfg.Auth.RedisDB)
		if err != nil {
			return nil, err
		}
		monitor.SetComponentStatus("redis", health.StatusHealthy, cfg.Auth.RedisAddr)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Auth.SessionStore)
	}
}
