package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/yegors/flightrec/internal/api"
	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/internal/storage/sqlite"
	"github.com/yegors/flightrec/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var listenAddr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the flight decoding and storage API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				cfg.Server.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("db") {
				cfg.Storage.Path = dbPath
			}
			return serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "override server listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "override SQLite database path")
	return cmd
}

func serve(ctx context.Context) error {
	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := sqlite.NewFlightStorage(db, log)
	if err != nil {
		return err
	}
	reader := flightlog.NewReader(cfg.Reader.Options(), log)
	router := api.NewRouter(store, reader, cfg, log)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server",
			logger.String("addr", server.Addr),
			logger.String("db", cfg.Storage.Path),
			logger.Strings("cors_allowed_origins", cfg.Server.CORSAllowedOrigins),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
