/*
Package main is the entry point of the Duvidha complaint desk API server.

It loads configuration, initializes the global logger, connects to Postgres
(applying migrations), serves the HTTP API and shuts down gracefully on
SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"duvidha/internal/app/complaint"
	"duvidha/internal/app/db"
	"duvidha/internal/app/user"
	"duvidha/internal/configs"
	"duvidha/internal/handler"
	"duvidha/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("token_ttl", cfg.TokenTTL).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Database initialization failed")
	}
	defer pool.Close()

	deps := &handler.AppDeps{
		Config:     cfg,
		Users:      user.NewPostgresRepository(pool),
		Complaints: complaint.NewPostgresRepository(pool),
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Duvidha server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
