package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"scrumboard/internal/config"
	"scrumboard/internal/server"
	"scrumboard/internal/storage/sqlite"
	"scrumboard/internal/util"
)

func main() {
	fs := pflag.NewFlagSet("scrumstore", pflag.ContinueOnError)
	configPath := fs.String("config", util.EnvOrDefault("SCRUMBOARD_CONFIG", ""), "Path to YAML config file")
	config.RegisterStoreFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ApplyStoreFlags(fs)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	store, err := sqlite.Open(cfg.Store.DBPath, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	if cfg.Store.SeedAdmin != "" {
		email, password, _ := cfg.Store.SeedCredentials()
		created, err := store.EnsureAdmin(context.Background(), "Admin", email, password)
		if err != nil {
			logger.Error("unable to seed admin", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if created {
			logger.Info("seeded admin account", slog.String("email", email))
		}
	}

	srv := server.New(store, logger)

	httpServer := &http.Server{
		Addr:    cfg.Store.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting scrum store", slog.String("addr", httpServer.Addr), slog.String("db", cfg.Store.DBPath))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
