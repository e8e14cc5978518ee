package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/components/settingsapi"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/internal/config"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/internal/watch"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/preview"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the settings API the overlay editor saves to",
	Long: `Starts the local settings server.

  GET  /load          current settings ({} when nothing was saved yet)
  POST /save          sanitize and persist a layout
  GET  /preview       render the saved layout against the preview marker
  POST /preview       render a posted layout without saving it
  GET  /preview.html  HTML preview sheet
  GET  /metadata      marker ids and the selected marker document
  GET  /openapi.json  API description

When --static is set every other path is served from that directory, so the
editor can be opened from the same origin.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addPathFlags(serveCmd)
	serveCmd.Flags().String("addr", config.DefaultAddr, "Listen address")
	serveCmd.Flags().String("static", "", "Directory with the editor UI")
	serveCmd.Flags().Bool("watch", true, "Reload the metadata file when it changes")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	component, holder, err := newComponent(cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	if _, err := component.RegisterRoutes(mux, "/"); err != nil {
		return err
	}
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)

	if cfg.MetadataPath != "" {
		watcher := watch.New(cfg.MetadataPath, holder, watch.WithLogger(logger.Named("watch")))
		if err := watcher.Reload(); err != nil {
			logger.Warn("preview metadata unavailable", zap.String("path", cfg.MetadataPath), zap.Error(err))
		}
		if cfg.Watch {
			group.Go(func() error {
				return watcher.Run(gctx)
			})
		}
	}

	group.Go(func() error {
		logger.Info("settings server listening",
			zap.String("addr", cfg.Addr),
			zap.String("settings", cfg.SettingsPath),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", cfg.Addr, err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownGrace)
		defer cancel()
		logger.Info("shutting down settings server")
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func newComponent(cfg config.Config) (*settingsapi.Component, *watch.Holder, error) {
	var engineOpts []preview.Option
	if dir := strings.TrimSpace(cfg.TemplateDir); dir != "" {
		engineOpts = append(engineOpts, preview.WithBaseDir(dir))
	}
	sheets, err := preview.NewEngine(engineOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("preview templates: %w", err)
	}

	holder := watch.NewHolder()
	opts := []settingsapi.OptionFn{
		settingsapi.WithStore(store.NewFileStore(cfg.SettingsPath)),
		settingsapi.WithMetadata(holder),
		settingsapi.WithResolver(metadata.NewResolver(metadata.WithKeyMap(cfg.KeyMap()))),
		settingsapi.WithSheets(sheets),
		settingsapi.WithAllowOrigin(cfg.AllowOrigin),
		settingsapi.WithMarker(cfg.Marker),
		settingsapi.WithLogger(logger),
	}
	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		opts = append(opts, settingsapi.WithFallback(http.FileServer(http.Dir(dir))))
	}
	return settingsapi.New(opts...), holder, nil
}
