package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Krimson/eeg-explorer/viewer/internal/explorer"
	"github.com/Krimson/eeg-explorer/viewer/internal/handler"
	"github.com/Krimson/eeg-explorer/viewer/internal/health"
	"github.com/Krimson/eeg-explorer/viewer/internal/logger"
	"github.com/Krimson/eeg-explorer/viewer/internal/websocket"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the viewer service",
		Long: `Run the HTTP API, the websocket endpoint and the gRPC health server.

The brain image and electrode table are validated before anything listens;
a configuration error stops the process.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	cfg := a.cfg
	log := a.log

	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("grpc_port", cfg.GRPCPort).
		Str("data_dir", cfg.DataDir).
		Str("store", cfg.StoreBackend).
		Msg("starting viewer")

	layout, err := a.loadLayout()
	if err != nil {
		log.Error().Err(err).Msg("invalid overlay assets")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver, closeStore, err := a.newResolver(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up dataset resolver")
		return err
	}
	defer closeStore()

	svc := explorer.NewService(resolver, layout, cfg.PlotWidth, cfg.PlotHeight, logger.Component("explorer"))
	hub := websocket.NewHub(svc, logger.Component("ws"))

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.NewRouter(handler.NewHTTPHandler(svc), hub, logger.Component("http")),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// запрос может ждать одну загрузку из хранилища
		WriteTimeout: cfg.RemoteFetchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	healthServer := health.NewHealthServer()
	grpcServer := health.NewGRPCServer(healthServer, logger.Component("grpc"))

	grpcAddr := ":" + cfg.GRPCPort
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", grpcAddr).Msg("gRPC health server listening")
		if err := grpcServer.Serve(listener); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	healthServer.SetServingStatus(health.ServiceName)

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		hub.CloseAll()
		httpErr := httpServer.Shutdown(shutdownCtx)

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			log.Warn().Msg("graceful shutdown timed out, forcing stop")
			grpcServer.Stop()
		}

		if httpErr != nil {
			return fmt.Errorf("HTTP shutdown: %w", httpErr)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}

	stats := resolver.Stats().Snapshot()
	log.Info().Interface("resolver", stats).Msg("server stopped")
	return nil
}
