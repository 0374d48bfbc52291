package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mansukim1125/run-configurations/internal/infrastructure/config"
	"github.com/mansukim1125/run-configurations/internal/infrastructure/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port      string
		host      string
		workspace []string
		settings  string
		dev       bool
	)

	cmd := &cobra.Command{
		Use:   "run-configurations",
		Short: "Serve run configurations and their terminals over HTTP",
		Long: `Stores run configurations in the workspace settings file and runs
each one in its own pseudo-terminal, reusing the terminal while it is open.

Environment variables (PORT, WORKSPACE_ROOTS, SETTINGS_FILE, ...) set the
defaults; flags override them.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Server.Port = port
			}
			if flags.Changed("host") {
				cfg.Server.Host = host
			}
			if flags.Changed("workspace") {
				cfg.Workspace.Roots = workspace
			}
			if flags.Changed("settings") {
				cfg.Workspace.SettingsFile = settings
			}
			if flags.Changed("dev") {
				cfg.Logging.Development = dev
				if dev {
					cfg.Logging.Level = "debug"
				}
			}

			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "server port (default $PORT or 7878)")
	cmd.Flags().StringVar(&host, "host", "", "listen address (default $HOST or 127.0.0.1)")
	cmd.Flags().StringSliceVar(&workspace, "workspace", nil, "workspace root, repeatable; the first one resolves ${workspaceFolder}")
	cmd.Flags().StringVar(&settings, "settings", "", "settings file (.json, .yaml or .toml), relative to the first root")
	cmd.Flags().BoolVar(&dev, "dev", false, "development logging")

	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
