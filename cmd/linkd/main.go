// Package main implements the linkd CLI: batch contract discovery and
// invoice linkage, plus an HTTP serve mode.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/linkd/internal/config"
	"github.com/fyrsmithlabs/linkd/internal/logging"
	"github.com/fyrsmithlabs/linkd/internal/pipeline"
	"github.com/fyrsmithlabs/linkd/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "linkd",
	Short: "Contract discovery and invoice linkage",
	Long: `linkd scans a directory of contract documents, groups them into
contracts, and classifies invoices against the discovered contract set.

Batch commands write JSON report artifacts to the output directory;
serve mode exposes the contract set and on-demand classification over
HTTP.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("linkd by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

// runtime bundles what every command needs after bootstrap.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	pipe   *pipeline.Pipeline
}

// withRuntime wraps a command body with config loading, logging,
// telemetry, and signal-driven cancellation.
func withRuntime(fn func(ctx context.Context, rt *runtime) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		logger, err := logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer func() {
			_ = logger.Sync() // Best-effort sync on shutdown
		}()

		tel, err := telemetry.New(ctx, cfg.Telemetry, logger.Named("telemetry"))
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			if err := tel.Shutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown", zap.Error(err))
			}
		}()

		pipe, err := pipeline.New(cfg, logger.Named("pipeline"))
		if err != nil {
			return fmt.Errorf("initializing pipeline: %w", err)
		}

		return fn(ctx, &runtime{cfg: cfg, logger: logger, pipe: pipe})
	}
}
