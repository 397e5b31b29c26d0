// Command http-mcp-server serves MCP tools over JSON-RPC on HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"http-mcp-server/internal/config"
	"http-mcp-server/internal/logging"
	"http-mcp-server/internal/mcp"
	"http-mcp-server/internal/metrics"
	"http-mcp-server/internal/probe"
	"http-mcp-server/internal/tools"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

const (
	// serviceName is reported in the initialize handshake.
	serviceName = "http-mcp-server"
	// displayName is reported by get_server_info.
	displayName = "MCP HTTP Server"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "http-mcp-server",
		Short:        "MCP tool server over HTTP",
		Long:         `Serves get_server_info, calculate_operation, format_text and check_remote_health as MCP tools on POST /mcp.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("MCP_CONFIG"),
		"path to a YAML or TOML config file (env MCP_CONFIG)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newToolsCmd())
	root.AddCommand(newCallCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceName, version)
		},
	}
}

// app is everything a command needs to answer MCP requests in-process.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *metrics.Metrics
	registry   *tools.Registry
	dispatcher *mcp.Dispatcher
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	registry, err := tools.Builtin(tools.ServerInfo{
		Name:     displayName,
		Version:  version,
		Endpoint: cfg.Endpoint(),
	}, probe.New(nil))
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	rt := &app{cfg: cfg, logger: logger, registry: registry}
	dcfg := mcp.Config{
		Registry: registry,
		Server:   mcp.Implementation{Name: serviceName, Version: version},
		Logger:   logger,
	}
	if cfg.MetricsEnabled {
		rt.metrics = metrics.New()
		dcfg.Observer = rt.metrics
	}
	rt.dispatcher, err = mcp.NewDispatcher(dcfg)
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	return rt, nil
}
