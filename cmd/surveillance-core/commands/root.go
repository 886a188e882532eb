package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sentinel-surveillance/core/pkg/config"
	"github.com/sentinel-surveillance/core/pkg/telemetry"
	"github.com/sentinel-surveillance/core/pkg/version"
)

var (
	cfgName       string
	cfgPath       string
	otelEndpoint  string
	shutdownTrace func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:     "surveillance-core",
	Version: version.Current,
	Short:   "Health-event fusion, audit, and alert distribution core",
	Long: `surveillance-core fuses community-reported and clinical health-event
streams into a canonical, cross-source-verified timeline, runs scheduled
compliance audits against it, and distributes alerts to downstream
channels.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		shutdown, err := telemetry.Init(cmd.Context(), version.AppName, version.Current, otelEndpoint)
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		shutdownTrace = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if shutdownTrace == nil {
			return nil
		}
		return shutdownTrace(cmd.Context())
	},
}

// Execute runs the root command, mapping any returned error to the
// process exit code named in spec.md §6.
func Execute() {
	rootCmd.SetContext(context.Background())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgName, "config", "", "config file name, without extension (optional)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config-path", ".", "directory to search for the config file")
	rootCmd.PersistentFlags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP HTTP trace collector endpoint (optional; traces are discarded when unset)")

	rootCmd.AddCommand(fuseCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(dispatchCmd)
}

// loadConfig resolves config.Config from v, environment variables, and the
// optional config file. Every caller passes a fresh viper instance with no
// flags bound to it, so the effective precedence is env > file > default;
// no command-line flag overrides a config option.
func loadConfig(v *viper.Viper) (config.Config, error) {
	return config.Load(v, cfgName, cfgPath)
}
