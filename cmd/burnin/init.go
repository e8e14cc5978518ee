package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/internal/prompt"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter settings file interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		settingsStore := store.NewFileStore(cfg.SettingsPath)
		if _, found, err := settingsStore.Load(cmd.Context()); err != nil {
			return err
		} else if found && !force {
			return fmt.Errorf("init: %s already exists (use --force to replace it)", cfg.SettingsPath)
		}

		settings, err := prompt.Wizard(cmd.Context(), prompt.Survey())
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
			return nil
		}
		if err != nil {
			return err
		}

		if err := settingsStore.Save(cmd.Context(), settings); err != nil {
			return err
		}
		logger.Info("settings written",
			zap.String("path", settingsStore.Path()),
			zap.Int("elements", len(settings.Elements)),
		)
		return nil
	},
}

func init() {
	initCmd.Flags().String("settings", "", "Settings file (default from config)")
	initCmd.Flags().Bool("force", false, "Replace an existing settings file")
}
