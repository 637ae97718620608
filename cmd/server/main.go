/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the mowing engine server: configuration, logging,
  SQLite restore, the in-memory engine, the async persistence applier, and
  graceful shutdown.

STARTUP SEQUENCE:
  1. Parse flags and optional YAML config
  2. Open the SQLite sink and restore the last snapshot into memory
  3. Start the persistence applier draining the mutation queue
  4. Configure the HTTP router and serve

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config; ":memory:" works)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, give in-flight requests 30s,
  save a final snapshot, close the database.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greenside/mow-engine/api"
	"github.com/greenside/mow-engine/config"
	"github.com/greenside/mow-engine/logging"
	"github.com/greenside/mow-engine/schedule"
	"github.com/greenside/mow-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logging.Setup(cfg.LogLevel)

	sink, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer sink.Close()

	engine := schedule.New(schedule.WithEventBuffer(cfg.EventBuffer))

	// Restore the last durable snapshot; memory is authoritative afterward.
	snap, found, err := sink.LoadSnapshot(context.Background())
	if err != nil {
		slog.Error("failed to restore snapshot", "error", err)
		os.Exit(1)
	}
	if found {
		engine.Import(snap)
		slog.Info("state restored",
			"clients", len(snap.Clients), "jobs", len(snap.Jobs))
	}

	applierCtx, stopApplier := context.WithCancel(context.Background())
	defer stopApplier()
	applier := sqlite.NewApplier(sink, slog.Default())
	go applier.Run(applierCtx, engine.Events())

	handler := api.NewHandler(engine, schedule.SystemClock(), slog.Default())
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	// Final snapshot so nothing dropped from the queue is lost across
	// restarts.
	stopApplier()
	if err := sink.SaveSnapshot(context.Background(), engine.Export()); err != nil {
		slog.Warn("final snapshot failed", "error", err)
	}

	slog.Info("server stopped")
}
