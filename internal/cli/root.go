// Package cli provides the command-line interface for carelog.
package cli

import (
	"context"
	"fmt"
	"os"

	service "github.com/okian/carelog/internal/app"
	"github.com/okian/carelog/internal/config"
	"github.com/okian/carelog/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "carelog",
		Short: "Turn care-team conversations into longitudinal health records",
		Long: `carelog reads a canonical conversation stream (timestamp, sender, role,
text) and extracts life events, lab readings, sleep and activity metrics,
care decisions with rationale, and a per-role effort estimate.

Configuration is layered: defaults, then the YAML file named by
CARELOG_CONFIG (or --config), then CARELOG_* environment variables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv(config.EnvConfig, configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads configuration and initializes the global logger from it.
// extra options are applied after the configured ones.
func setup(ctx context.Context, extra ...logger.Option) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	opts := []logger.Option{logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile))
	}
	opts = append(opts, extra...)
	if err := logger.Init(opts...); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger.Get(), nil
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, log logger.Logger) *service.Service {
	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithIdentityCacheSize(cfg.IdentityCacheSize),
		service.WithRoleWeights(cfg.RoleWeights),
		service.WithDefaultRoleWeight(cfg.DefaultRoleWeight),
		service.WithRationaleWindow(cfg.RationaleWindow()),
		service.WithMaxRationale(cfg.MaxRationaleSnippets),
	)
}
