package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danielorbach/go-component"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-overlay/go-overlay"
	"github.com/go-overlay/go-overlay/source"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	config     *Config
}

// NewRootCmd creates the root command of the overlay CLI.
func NewRootCmd() *cobra.Command {
	a := &app{v: newViper()}
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Resolve versioned tank data overlays",
		Long: `overlay merges live game data with user-authored override files into the
snapshot of tank classifications and properties valid at one game version.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig(a.v, a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), c.Log)
			if err != nil {
				return err
			}
			a.config = c
			cmd.SetContext(component.InjectLogger(cmd.Context(), logger))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file path")
	flags.String("source", "", "URL of the bucket holding the data files (e.g. file:///srv/tankdata)")
	flags.Int("version", 0, "game version to resolve the snapshot at")
	flags.String("log-format", "", "log format: text or json")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newResolveCmd(a))
	cmd.AddCommand(newWarningsCmd(a))
	cmd.AddCommand(newExportNeo4jCmd(a))
	cmd.AddCommand(newWatchCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// newVersionCmd prints build information. The --version flag names the game
// version to resolve, so build information has a command of its own.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// Build information needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "overlay %s (commit: %s)\n", version, commit)
			return err
		},
	}
}

// resolve loads the data files of the configured source and resolves them at
// the configured game version.
func (a *app) resolve(ctx context.Context) (*overlay.Snapshot, error) {
	l, err := source.Open(ctx, a.config.Source)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := l.Close(); err != nil {
			component.Logger(ctx).Warn("Failed to close source bucket", slog.Any("error", err))
		}
	}()

	in, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", a.config.Source, err)
	}
	return overlay.Resolve(ctx, in, a.config.Version), nil
}
