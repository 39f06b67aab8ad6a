package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/label-matcher/internal/server"
	"github.com/joseph-ayodele/label-matcher/internal/services/catalog"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	var grpcAddr, httpAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the matcher over gRPC and HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("grpc-addr") {
				c.cfg.Server.GRPCAddr = grpcAddr
			}
			if cmd.Flags().Changed("http-addr") {
				c.cfg.Server.HTTPAddr = httpAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, c)
		},
	}
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", ":8080", "gRPC listen address (overrides GRPC_ADDR)")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8081", "HTTP listen address (overrides HTTP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, c *cli) error {
	logger := c.logger
	a, err := newApp(ctx, c.cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	// A failed first load is not fatal: health reports 503 until a reload succeeds.
	if _, err := a.store.Reload(ctx); err != nil {
		logger.Error("initial catalog load failed", "error", err)
	}

	grpcLis, err := net.Listen("tcp", c.cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", c.cfg.Server.GRPCAddr, "error", err)
		return err
	}
	grpcServer, _ := server.NewGRPCServer(server.NewMatcherServer(a.match, a.store, logger), logger)

	e := server.NewHTTPServer(server.HTTPDeps{
		Matcher: a.match,
		Catalog: a.store,
		Offers:  a.offers,
		Metrics: a.metrics.Handler(),
	}, logger)
	httpServer := &http.Server{
		Addr:              c.cfg.Server.HTTPAddr,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc listening", "addr", c.cfg.Server.GRPCAddr)
		return grpcServer.Serve(grpcLis)
	})
	g.Go(func() error {
		logger.Info("http listening", "addr", c.cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return a.store.Run(gctx, catalog.RefreshConfig{
			Watch:        c.cfg.Catalog.Watch,
			Debounce:     c.cfg.Catalog.Debounce,
			PollInterval: c.cfg.Catalog.PollInterval,
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stopped")
	return nil
}
