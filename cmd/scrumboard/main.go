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

	"scrumboard/internal/board"
	"scrumboard/internal/client"
	"scrumboard/internal/config"
	"scrumboard/internal/session"
	"scrumboard/internal/util"
	"scrumboard/internal/web"
)

func main() {
	fs := pflag.NewFlagSet("scrumboard", pflag.ContinueOnError)
	configPath := fs.String("config", util.EnvOrDefault("SCRUMBOARD_CONFIG", ""), "Path to YAML config file")
	config.RegisterBoardFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ApplyBoardFlags(fs)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	logger.Debug("loaded configuration", slog.String("config", cfg.String()))
	if cfg.UsesDevSecret() {
		logger.Warn("signing sessions with the development secret; set SCRUMBOARD_SESSION_SECRET")
	}

	storeClient, err := client.New(cfg.Board.StoreURL, nil, logger)
	if err != nil {
		logger.Error("invalid store url", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sessions, err := session.NewManager(cfg.Board.SessionSecret)
	if err != nil {
		logger.Error("unable to create session manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	srv, err := web.New(board.NewFromClient(storeClient, logger), sessions, logger, web.Options{
		StaticDir:    cfg.Board.StaticDir,
		SecureCookie: cfg.Board.SecureCookie,
	})
	if err != nil {
		logger.Error("unable to build web server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    cfg.Board.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting scrum board", slog.String("addr", httpServer.Addr), slog.String("store", cfg.Board.StoreURL))
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
