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

	"github.com/spf13/cobra"

	"github.com/collagery/collagery"
	"github.com/collagery/collagery/config"
	collageryhttp "github.com/collagery/collagery/http"
	"github.com/collagery/collagery/mediastore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the collagery HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	serveCmd.Flags().String("api-url", "", "media CDN management API base URL")
	serveCmd.Flags().String("delivery-url", "", "media CDN delivery base URL")
	serveCmd.Flags().String("folder", "", "CDN folder holding collage records")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Provisional handler first: config.Load warns about unreadable files,
	// and those warnings should not hit a bare default logger.
	env := os.Getenv("COLLAGERY_ENV")
	setupLogging(env, "")

	cfg, err := config.Load(configFiles, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupLogging(env, cfg.Log.Level)

	store := mediastore.New(mediastore.Config{
		APIURL:      cfg.Storage.APIURL,
		DeliveryURL: cfg.Storage.DeliveryURL,
		Key:         cfg.Storage.Key,
		Secret:      cfg.Storage.Secret,
		Timeout:     cfg.Storage.Timeout,
	})

	resolver := collagery.NewResolver(store, cfg.Storage.Folder)
	tokens := collagery.NewTokenService([]byte(cfg.Auth.TokenSecret), cfg.Auth.TokenTTL)

	handlerConfig := collageryhttp.HandlerConfig{
		AdminPassword: cfg.Auth.AdminPassword,
		CORS:          cfg.CORS,
	}
	handler := collageryhttp.NewHandler(&handlerConfig, resolver, tokens)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server", "addr", addr, "folder", cfg.Storage.Folder)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
