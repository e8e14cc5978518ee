package overlay

import "github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"

// Rendered is the preview of one element against one metadata document.
type Rendered struct {
	Key        string   `json:"key"`
	Text       string   `json:"text"`
	Tokens     []string `json:"tokens,omitempty"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	FontSizePt int      `json:"font_size_pt"`
	Align      string   `json:"align"`
	FontFamily string   `json:"font_family"`
	Color      string   `json:"color"`
	Formatting
}

// Render previews every element of settings against doc, in element order.
// Settings are prepared first, so stale or missing compiled templates never
// reach the text builder.
func Render(r Resolver, doc metadata.Document, settings Settings) []Rendered {
	r = resolverOrDefault(r)
	prepared := Prepare(settings)

	out := make([]Rendered, 0, len(prepared.Elements))
	for _, element := range prepared.Elements {
		family := element.FontFamily
		if family == "" {
			family = prepared.FontFamily
		}
		color := element.Color
		if color == "" {
			color = DefaultColor
		}
		align := element.Align
		if align == "" {
			align = AlignCenter
		}
		out = append(out, Rendered{
			Key:        element.Key,
			Text:       ElementText(r, doc, element),
			Tokens:     element.CustomTokens,
			X:          element.X,
			Y:          element.Y,
			FontSizePt: element.FontSizePt,
			Align:      align,
			FontFamily: family,
			Color:      color,
			Formatting: Format(r, doc, element, prepared.Opacity),
		})
	}
	return out
}
