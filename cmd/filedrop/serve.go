package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filedrop"
	"github.com/sagarc03/filedrop/config"
	"github.com/sagarc03/filedrop/filesystem"
	filedrophttp "github.com/sagarc03/filedrop/http"
)

const shutdownTimeout = 30 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)

	addr, err := cfg.ListenSocketAddress()
	if err != nil {
		return err
	}

	storagePath := cfg.StorageDirectory()
	info, err := os.Stat(storagePath)
	if err != nil {
		return fmt.Errorf("storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage directory %s: not a directory", storagePath)
	}

	root, err := os.OpenRoot(storagePath)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	storage := filesystem.NewFileStorage(root).WithLogger(logger)

	service, err := filedrop.NewDropService(storage, logger)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handlerConfig := filedrophttp.HandlerConfig{
		PublicHost:    cfg.PublicHostString(),
		MaxBodyBytes:  cfg.MaxBodyBytes(),
		AllowUpload:   cfg.Access.AllowUpload,
		AllowDownload: cfg.Access.AllowDownload,
		CORS:          cfg.CORS,
	}

	handler := filedrophttp.NewHandler(&handlerConfig, service, logger)

	server := &http.Server{
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	ln, err := net.Listen("tcp", addr.String())
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	return serve(ctx, server, ln, logger, cfg)
}

// serve runs server on ln until ctx is canceled, then shuts it down
// gracefully.
func serve(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger, cfg *config.Config) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	logger.Info("listening", "addr", ln.Addr().String())
	logger.Info("serving files", "host", cfg.PublicHostString(), "storage", cfg.StorageDirectory(),
		"size_limit", cfg.MaxBodyBytes(), "upload", cfg.Access.AllowUpload, "download", cfg.Access.AllowDownload)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
