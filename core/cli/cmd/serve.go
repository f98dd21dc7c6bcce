package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperterse/querygate/core/cli/internal"
	"github.com/hyperterse/querygate/core/infrastructure/di"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	"github.com/hyperterse/querygate/core/infrastructure/registry"
	"github.com/hyperterse/querygate/core/infrastructure/transport"
	"github.com/hyperterse/querygate/core/observability"
)

// serveCmd runs the query gateway
var serveCmd = &cobra.Command{
	Use:           "serve",
	Short:         "Serve the registered queries over HTTP and gRPC",
	RunE:          serve,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (overrides config and PORT env var)")
	serveCmd.Flags().StringVar(&grpcPort, "grpc-port", "", "gRPC port (overrides config and GRPC_PORT env var; empty disables gRPC)")
	serveCmd.Flags().StringVar(&environment, "env", "", "Environment name (overrides config and "+internal.EnvironmentVariable+"); production hides failure details")
	serveCmd.Flags().BoolVar(&watch, "watch", false, "Reload the registry file when it changes")
}

func serve(cmd *cobra.Command, args []string) error {
	log := logging.New("serve")

	if err := configureLogging(); err != nil {
		return err
	}

	path := configFilePath()
	if abs, err := filepath.Abs(path); err == nil {
		LoadEnvFiles(filepath.Dir(abs))
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return err
	}
	if logLevel == 0 && !verbose {
		logging.SetLogLevel(internal.ResolveLogLevel(false, 0, cfg))
	}
	cfg.Environment = internal.ResolveEnvironment(environment, cfg)
	log.Infof("Configuration loaded: %s (environment: %s)", cfg.Name, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := observability.Setup(ctx, cfg.Environment, GetVersion())
	if err != nil {
		return logging.WithTag("observability", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Error shutting down observability: %v", err)
		}
	}()

	container, err := di.NewContainer(cfg)
	if err != nil {
		return logging.WithTag("serve", err)
	}
	defer container.Close()

	if watch || cfg.Registry.Watch {
		go func() {
			if err := registry.Watch(ctx, container.Registry); err != nil {
				logging.New("registry:watch").Warnf("Registry watcher stopped: %v", err)
			}
		}()
	}

	server := transport.NewUnifiedServer(
		internal.ResolvePort(port, cfg),
		internal.ResolveGRPCPort(grpcPort, cfg),
	)
	server.Register(container.QueryService, container.Registry, container.Authenticator)

	if err := server.Run(ctx); err != nil {
		return logging.WithTag("server", err)
	}
	return nil
}
