// Package cli implements the aura operator command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aura-dashboard/backend/internal/service"
	"github.com/aura-dashboard/backend/pkg/config"
	"github.com/aura-dashboard/backend/pkg/logger"
)

// ServicesFactory builds the components a command runs against.
type ServicesFactory func(ctx context.Context, cfg *config.Config) (*service.Services, error)

type app struct {
	cfgFile  string
	verbose  bool
	services ServicesFactory
}

// NewRootCmd returns the aura command tree. A nil factory uses the configured LLM
// estimator and storage backend.
func NewRootCmd(services ServicesFactory) *cobra.Command {
	if services == nil {
		services = func(ctx context.Context, cfg *config.Config) (*service.Services, error) {
			return service.New(ctx, cfg, nil)
		}
	}
	a := &app{services: services}

	root := &cobra.Command{
		Use:           "aura",
		Short:         "Compare the predicted energy use of two AI models",
		Long:          `Runs energy comparisons against the configured estimator and manages the saved report collection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at the configured level instead of warn")

	root.AddCommand(newCompareCmd(a))
	root.AddCommand(newReportsCmd(a))

	return root
}

// Execute runs the root command with the default services.
func Execute() error {
	return NewRootCmd(nil).Execute()
}

// withServices loads config, routes logs to stderr and runs fn against freshly built
// services, closing them afterwards.
func (a *app) withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Services) error) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	level := "warn"
	if a.verbose {
		level = cfg.Logging.Level
	}
	if err := logger.Init(level, "console", "stderr"); err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, err := a.services(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(ctx, svc)
}
