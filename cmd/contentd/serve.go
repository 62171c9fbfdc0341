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

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/sagarc03/contentd/config"
	contentdhttp "github.com/sagarc03/contentd/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the contentd HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "interface to listen on (default: all)")
	serveCmd.Flags().Int("port", 9091, "HTTP server port")
	serveCmd.Flags().Int64("max-upload-size", 0, "maximum upload body size in bytes, 0 for no limit")
	serveCmd.Flags().Bool("gops", false, "start the gops diagnostics agent")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if cfg.Diagnostics.Gops {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			slog.Warn("could not start gops agent", "err", err)
		} else {
			defer agent.Close()
		}
	}

	service, closeService, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeService()

	handlerConfig := cfg.HandlerConfig()
	handler := contentdhttp.NewHandler(&handlerConfig, service)

	addr := cfg.Server.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server",
		"addr", addr,
		"root", cfg.Storage.Path,
		"extension", cfg.Storage.Extension,
		"attachment", handlerConfig.AttachmentRoute,
	)

	err = server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		cancel()
	}
	// Shutdown returns once in-flight requests finish; the root stays open until then.
	<-shutdownDone

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
