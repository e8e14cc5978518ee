package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/preview"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/store"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the saved layout against a marker",
	Long: `Builds the overlay text of every element for one marker of a timeline
metadata export.

Example:
  burnin render --metadata Timeline_1_stills_full_metadata.json --marker 1042
  burnin render --metadata export.json --format html --output sheet.html`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	addPathFlags(renderCmd)
	renderCmd.Flags().String("format", "text", "Output format: text, json or html")
	renderCmd.Flags().StringP("output", "o", "", "Output file (stdout if empty)")
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.MetadataPath == "" {
		return errors.New("render: --metadata is required")
	}
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	settings, found, err := store.NewFileStore(cfg.SettingsPath).Load(cmd.Context())
	if err != nil {
		return err
	}
	if !found {
		logger.Warn("no saved settings, rendering defaults", zap.String("path", cfg.SettingsPath))
	}

	timeline, err := metadata.ReadTimeline(cfg.MetadataPath)
	if err != nil {
		return err
	}
	markerID, doc, err := metadata.SelectPreview(timeline, cfg.Marker)
	if err != nil {
		return err
	}

	resolver := metadata.NewResolver(metadata.WithKeyMap(cfg.KeyMap()))
	rendered := overlay.Render(resolver, doc, settings)
	logger.Debug("rendered layout",
		zap.String("marker", markerID),
		zap.Int("elements", len(rendered)),
	)

	out := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"marker":   markerID,
			"elements": rendered,
		})
	case "html":
		engine, err := preview.NewEngine()
		if err != nil {
			return err
		}
		_, err = engine.RenderSheet(preview.Sheet{
			MarkerID: markerID,
			Settings: settings,
			Elements: rendered,
		}, out)
		return err
	case "text", "":
		return writeText(out, markerID, rendered)
	default:
		return fmt.Errorf("render: unknown format %q", format)
	}
}

func writeText(out io.Writer, markerID string, rendered []overlay.Rendered) error {
	if markerID != "" {
		fmt.Fprintf(out, "marker %s\n", markerID)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range rendered {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\n", r.Key, r.Text, r.FontWeight, r.Opacity)
	}
	return tw.Flush()
}
