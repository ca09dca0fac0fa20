package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/database"
	server "github.com/mauv0809/courtside/internal/http"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier/slack"
	"github.com/mauv0809/courtside/internal/processor"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/remote"
)

func main() {
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	// A database that cannot even be opened is not fatal: the app starts
	// in local-only mode over an empty in-memory store.
	var backend remote.Client
	db, dialect, dbTeardown, err := database.InitDB(database.Options{
		DBName:      cfg.DBName,
		PrimaryURL:  cfg.Turso.PrimaryURL,
		AuthToken:   cfg.Turso.AuthToken,
		PostgresURL: cfg.PostgresURL,
	})
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		backend = remote.Unavailable(err)
	} else {
		backend = remote.NewSQL(db, dialect)
		defer func() {
			log.Info("Closing database connection")
			dbTeardown()
		}()
	}

	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	// Without a GCP project, events are handled in-process.
	var events pubsub.PubSubClient
	var proc *processor.Processor
	if cfg.ProjectID != "" {
		client, pubsubTeardown, err := pubsub.New(context.Background(), cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer pubsubTeardown()
		events = client
		proc = processor.New(notifier, metricsSvc, client)
	} else {
		loopback := pubsub.NewLoopback()
		proc = processor.New(notifier, metricsSvc, loopback)
		proc.Subscribe(loopback)
		events = loopback
	}

	a := app.New(backend, metricsSvc, events, cfg.ProbeTimeout)
	mode := a.Start(context.Background())
	log.Info("Startup finished", "mode", mode)

	s := server.NewServer(a, metricsHandler, cfg, proc)

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
