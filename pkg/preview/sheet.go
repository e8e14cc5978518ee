package preview

import (
	"io"

	"github.com/flosch/pongo2/v6"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
)

// SheetTemplate is the template rendered by RenderSheet.
const SheetTemplate = "sheet"

// Sheet is one HTML preview page: every element of a layout rendered against
// a single marker.
type Sheet struct {
	Title    string
	MarkerID string
	Settings overlay.Settings
	Elements []overlay.Rendered
}

// RenderSheet writes the preview page for s.
func (e *Engine) RenderSheet(s Sheet, out ...io.Writer) (string, error) {
	return e.RenderTemplate(SheetTemplate, sheetContext(s), out...)
}

func sheetContext(s Sheet) pongo2.Context {
	title := s.Title
	if title == "" {
		title = "Burn-in preview"
	}

	elements := make([]map[string]any, 0, len(s.Elements))
	for _, el := range s.Elements {
		elements = append(elements, map[string]any{
			"key":          el.Key,
			"text":         el.Text,
			"x":            el.X,
			"y":            el.Y,
			"font_size_pt": el.FontSizePt,
			"align":        el.Align,
			"font_family":  el.FontFamily,
			"font_weight":  el.FontWeight,
			"color":        el.Color,
			"opacity":      formatNumber(el.Opacity),
		})
	}

	return pongo2.Context{
		"title":  title,
		"marker": s.MarkerID,
		"settings": map[string]any{
			"safe_guides":      s.Settings.SafeGuides,
			"safe_guide_outer": s.Settings.SafeGuideOuter,
			"safe_guide_inner": s.Settings.SafeGuideInner,
		},
		"elements": elements,
	}
}
