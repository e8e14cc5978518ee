package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/internal/config"
)

var (
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "burnin",
	Short: "Burn-in overlay layouts for DaVinci Resolve stills",
	Long: `burnin serves the settings file the overlay editor saves to and renders
overlay text from timeline marker metadata.

Run "burnin serve" next to the editor, or "burnin render" to check a layout
against an exported metadata file from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config and applies flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("settings") {
		cfg.SettingsPath, _ = flags.GetString("settings")
	}
	if flags.Changed("metadata") {
		cfg.MetadataPath, _ = flags.GetString("metadata")
	}
	if flags.Changed("marker") {
		cfg.Marker, _ = flags.GetString("marker")
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("static") {
		cfg.StaticDir, _ = flags.GetString("static")
	}
	if flags.Changed("watch") {
		cfg.Watch, _ = flags.GetBool("watch")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// addPathFlags registers the file flags shared by several commands.
func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().String("settings", "", "Settings file (default from config)")
	cmd.Flags().String("metadata", "", "Timeline metadata JSON used for previews")
	cmd.Flags().String("marker", "", "Marker id to preview (default: first marker)")
}
