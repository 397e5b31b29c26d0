package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"http-mcp-server/internal/server"
)

const shutdownTimeout = 10 * time.Second

const banner = `
  _____ _____ _____    _____ _____ _____ _____
 |     |     |  _  |  |  |  |_   _|_   _|  _  |
 | | | |   --|   __|  |     | | |   | | |   __|
 |_|_|_|_____|__|     |__|__| |_|   |_| |__|
`

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runServe(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newApp()
	if err != nil {
		return err
	}
	cfg := rt.cfg

	printBanner(out, rt)

	scfg := server.Config{
		Version:        version,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}
	if rt.metrics != nil {
		scfg.Metrics = rt.metrics.Handler()
	}
	srv := server.New(scfg, rt.dispatcher, rt.registry, rt.logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.logger.Info("starting MCP HTTP server",
			"addr", cfg.Addr(),
			"endpoint", cfg.Endpoint(),
			"tls", cfg.TLS(),
			"metrics", cfg.MetricsEnabled,
		)
		var err error
		if cfg.TLS() {
			err = httpServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	})
	g.Go(func() error {
		<-gctx.Done()
		rt.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func printBanner(out io.Writer, rt *app) {
	cfg := rt.cfg
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Fprint(out, banner)
	gray.Fprintf(out, "    version: %s\n\n", version)
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "Listen:    %s\n", cfg.Addr())
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "MCP:       %s\n", cfg.Endpoint())
	green.Fprint(out, "    ▶ ")
	fmt.Fprintf(out, "Tools:     %d registered\n", rt.registry.Len())
	if cfg.TLS() {
		green.Fprint(out, "    ▶ ")
		fmt.Fprintf(out, "TLS:       %s\n", cfg.TLSCertFile)
	}
	fmt.Fprintln(out)
}
