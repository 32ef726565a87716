package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"todo-api/api"
	"todo-api/config"
	"todo-api/storage"
	"todo-api/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.DBFile, storage.WithLogger(logger.With("component", "storage")))
	if err != nil {
		logger.Error("failed to open task store", "path", cfg.DBFile, "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(store, validation.New(), logger.With("component", "api"))
	router := api.NewRouter(handler, cfg.CORSOrigins, logger.With("component", "http"))

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "addr", server.Addr, "db_file", store.Path())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info("shutting down HTTP server")
				if err := server.Shutdown(ctx); err != nil {
					return err
				}
				return store.Close()
			},
		},
	)

	exitCode := <-wait
	logger.Info("server exited", "code", exitCode)
	os.Exit(exitCode)
}
