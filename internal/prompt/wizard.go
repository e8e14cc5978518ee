package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/template"
)

// FontFamilies lists the families offered by the init wizard.
var FontFamilies = []string{"Arial", "Helvetica", "Courier New", "Menlo", "DIN Alternate"}

// DefaultSlateTemplate is the slate line suggested for new layouts.
const DefaultSlateTemplate = "Scene %Scene  Shot %Shot  Take %Take"

// Wizard asks for a starter layout. Answers are assembled into a save payload
// and pushed through overlay.Sanitize so the result matches what the editor
// would persist.
func Wizard(ctx context.Context, d Driver) (overlay.Settings, error) {
	family, err := d.Select(ctx, SelectConfig{
		Message: "Font family",
		Options: FontFamilies,
		Help:    "Used for every element that does not set its own family.",
	})
	if err != nil {
		return overlay.Settings{}, err
	}
	if family < 0 || family >= len(FontFamilies) {
		family = 0
	}

	rawOpacity, err := d.Input(ctx, InputConfig{
		Message:   "Overlay opacity (0-1)",
		Default:   "1",
		Validator: validateOpacity,
	})
	if err != nil {
		return overlay.Settings{}, err
	}
	opacity, _ := strconv.ParseFloat(strings.TrimSpace(rawOpacity), 64)

	guides, err := d.Confirm(ctx, ConfirmConfig{Message: "Show safe guides in previews?", Default: true})
	if err != nil {
		return overlay.Settings{}, err
	}

	var elements []any

	slate, err := d.Input(ctx, InputConfig{
		Message:   "Slate template (blank to skip)",
		Default:   DefaultSlateTemplate,
		Help:      "Write %Key to insert a metadata value, e.g. %Scene or %Reel_Name.",
		Validator: validateTemplate,
	})
	if err != nil {
		return overlay.Settings{}, err
	}
	if strings.TrimSpace(slate) != "" {
		elements = append(elements, map[string]any{
			"key":             overlay.CustomKey,
			"x":               0.5,
			"y":               0.92,
			"align":           overlay.AlignCenter,
			"template_custom": slate,
		})
	}

	camera, err := d.Confirm(ctx, ConfirmConfig{Message: "Add the camera letter?", Default: true})
	if err != nil {
		return overlay.Settings{}, err
	}
	if camera {
		elements = append(elements, map[string]any{
			"key":   template.CameraKey,
			"x":     0.06,
			"y":     0.08,
			"align": overlay.AlignLeft,
		})
	}

	goodTake, err := d.Confirm(ctx, ConfirmConfig{
		Message: "Add the good take marker?",
		Help:    "Shows " + overlay.GoodTakeMarker + " and turns bold when the take is flagged.",
	})
	if err != nil {
		return overlay.Settings{}, err
	}
	if goodTake {
		elements = append(elements, map[string]any{
			"key":   overlay.GoodTakeKey,
			"x":     0.94,
			"y":     0.08,
			"align": overlay.AlignRight,
		})
	}

	return overlay.Sanitize(map[string]any{
		"burnin_opacity":     opacity,
		"burnin_font_family": FontFamilies[family],
		"safe_guides":        guides,
		"elements":           elements,
	}), nil
}

func validateOpacity(raw string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("opacity must be between 0 and 1")
	}
	return nil
}

func validateTemplate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if len(template.Compile(raw).Tokens) == 0 {
		return fmt.Errorf("template needs at least one %%Key token")
	}
	return nil
}
