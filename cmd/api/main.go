package main

import (
	"net/http"
	"os"
	"time"

	"pet-adoption-api/internal/adapters/auth/supabase"
	"pet-adoption-api/internal/adapters/notify/webhook"
	pg "pet-adoption-api/internal/adapters/storage/postgres"
	"pet-adoption-api/internal/platform/config"
	"pet-adoption-api/internal/platform/httpclient"
	"pet-adoption-api/internal/platform/logger"
	"pet-adoption-api/internal/platform/metrics"
	"pet-adoption-api/internal/ports/auth"
	"pet-adoption-api/internal/ports/notify"
	"pet-adoption-api/internal/router"
)

// @title Pet Adoption API
// @version 1.0
// @description Adopciones: shelters, mascotas, solicitudes y mensajes.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "pet-adoption-api",
	})

	var verifier auth.Verifier
	if cfg.Auth.BaseURL != "" {
		client, err := supabase.NewClient(supabase.Config{
			BaseURL: cfg.Auth.BaseURL,
			AnonKey: cfg.Auth.AnonKey,
			Timeout: 10 * time.Second,
		})
		if err != nil {
			log.Error("auth client init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = supabase.NewVerifier(client)
	} else {
		log.Warn("auth verifier not configured, running in dev mode", nil)
	}

	var notifier notify.Dispatcher = notify.Noop{}
	if cfg.Notify.WebhookURL != "" {
		notifier = webhook.NewDispatcher(httpclient.New(10*time.Second), cfg.Notify.WebhookURL, log)
	}

	opts := router.Options{
		AuthVerifier:   verifier,
		Log:            log,
		Metrics:        metrics.New(),
		Notifier:       notifier,
		PetLockTimeout: cfg.Workflow.PetLockTimeout,

		BootstrapAdminID: cfg.Auth.BootstrapAdmin,
	}

	if cfg.Database.DSN != "" {
		db, err := pg.Open(cfg.Database.DSN)
		if err != nil {
			log.Error("db open failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()

		if err := pg.RunMigrations(db, cfg.Database.MigrationsDir); err != nil {
			log.Error("migrations failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		opts.DB = db
	}

	r := router.NewRouter(opts)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
