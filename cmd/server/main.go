package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mannals/takkatuli-backend/internal/config"
	"github.com/mannals/takkatuli-backend/internal/database"
	"github.com/mannals/takkatuli-backend/internal/uploads"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.Kitchen,
	})))

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	metrics := utils.NewMetricsCollector()

	db, err := database.NewPostgresDB(cfg.Database.URI, cfg.Upload.PublicBaseURL, metrics)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := db.InitializeTables(ctx); err != nil {
		slog.Error("failed to initialize tables", "error", err)
		os.Exit(1)
	}

	uploadClient := uploads.NewClient(cfg.Upload.ServerURL, cfg.Upload.RequestTimeout)
	reconciler := uploads.NewReconciler(db, uploadClient, cfg.Upload.JWTSecret, cfg.Upload.ReconcileSchedule)
	if err := reconciler.Start(); err != nil {
		slog.Error("failed to start reconciler", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		requests, errorCount, uptime := metrics.Snapshot()
		fmt.Fprintf(w, "takkatuli-backend status:\n"+
			"- Uptime: %s\n"+
			"- Requests: %d\n"+
			"- Errors: %d\n",
			uptime.Round(time.Second), requests, errorCount)
	})

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{Addr: serverAddr, Handler: mux}

	go func() {
		slog.Info("starting server", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	reconciler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		slog.Error("database close failed", "error", err)
	}
}
