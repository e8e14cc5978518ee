package overlay

import (
	"encoding/json"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/template"
)

// CustomKey marks an element whose text comes from a user template rather
// than a single metadata key.
const CustomKey = "custom"

// Alignment and weight values accepted in persisted settings.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"

	WeightNormal = "normal"
	WeightBold   = "bold"
)

// Element is one burn-in overlay item as persisted by the editor.
type Element struct {
	Key        string   `json:"key"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	FontSizePt int      `json:"font_size_pt"`
	Opacity    *float64 `json:"opacity,omitempty"`
	Align      string   `json:"align"`
	FontFamily string   `json:"font_family"`
	FontWeight string   `json:"font_weight"`
	Color      string   `json:"color"`

	TemplateCustom string             `json:"template_custom,omitempty"`
	TemplateParts  *template.Compiled `json:"template_parts,omitempty"`
	CustomTokens   []string           `json:"custom_tokens,omitempty"`
}

// Custom reports whether the element renders a template.
func (e Element) Custom() bool {
	return e.Key == CustomKey
}

// elementFields marshals with the struct tags of Element but without its
// methods.
type elementFields Element

type customElementWire struct {
	Key        string   `json:"key"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	FontSizePt int      `json:"font_size_pt"`
	Opacity    *float64 `json:"opacity,omitempty"`
	Align      string   `json:"align"`
	FontFamily string   `json:"font_family"`
	FontWeight string   `json:"font_weight"`
	Color      string   `json:"color"`

	TemplateCustom string            `json:"template_custom"`
	TemplateParts  template.Compiled `json:"template_parts"`
	CustomTokens   []string          `json:"custom_tokens"`
}

// MarshalJSON always writes template_custom, template_parts and
// custom_tokens for custom elements, even when the template is empty. Other
// elements omit them.
func (e Element) MarshalJSON() ([]byte, error) {
	if !e.Custom() {
		return json.Marshal(elementFields(e))
	}

	compiled := template.Compile(e.TemplateCustom)
	if e.TemplateParts != nil {
		compiled = *e.TemplateParts
	}
	tokens := e.CustomTokens
	if tokens == nil {
		tokens = append([]string{}, compiled.Tokens...)
	}
	return json.Marshal(customElementWire{
		Key:            e.Key,
		X:              e.X,
		Y:              e.Y,
		FontSizePt:     e.FontSizePt,
		Opacity:        e.Opacity,
		Align:          e.Align,
		FontFamily:     e.FontFamily,
		FontWeight:     e.FontWeight,
		Color:          e.Color,
		TemplateCustom: e.TemplateCustom,
		TemplateParts:  compiled,
		CustomTokens:   tokens,
	})
}

type elementWire struct {
	Key        string   `json:"key"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	FontSizePt int      `json:"font_size_pt"`
	Opacity    *float64 `json:"opacity,omitempty"`
	Align      string   `json:"align"`
	FontFamily string   `json:"font_family"`
	FontWeight string   `json:"font_weight"`
	Color      string   `json:"color"`
	FontColor  string   `json:"font_color,omitempty"`

	TemplateCustom string          `json:"template_custom,omitempty"`
	TemplateParts  json.RawMessage `json:"template_parts,omitempty"`
	CustomTokens   json.RawMessage `json:"custom_tokens,omitempty"`
}

// UnmarshalJSON reads a persisted element. A malformed template_parts value
// is dropped instead of failing the whole document so Prepare can rebuild it
// from template_custom. The legacy font_color field fills in a missing color.
func (e *Element) UnmarshalJSON(data []byte) error {
	var wire elementWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := Element{
		Key:            wire.Key,
		X:              wire.X,
		Y:              wire.Y,
		FontSizePt:     wire.FontSizePt,
		Opacity:        wire.Opacity,
		Align:          wire.Align,
		FontFamily:     wire.FontFamily,
		FontWeight:     wire.FontWeight,
		Color:          wire.Color,
		TemplateCustom: wire.TemplateCustom,
	}
	if out.Color == "" {
		out.Color = wire.FontColor
	}
	if compiled, ok := template.Parse(wire.TemplateParts); ok {
		out.TemplateParts = &compiled
	}
	if len(wire.CustomTokens) > 0 {
		var tokens []string
		if err := json.Unmarshal(wire.CustomTokens, &tokens); err == nil {
			out.CustomTokens = tokens
		}
	}

	*e = out
	return nil
}

// Settings is the persisted burn-in layout document.
type Settings struct {
	FontPath       string    `json:"burnin_font_path"`
	Opacity        float64   `json:"burnin_opacity"`
	FontFamily     string    `json:"burnin_font_family"`
	SafeGuides     bool      `json:"safe_guides"`
	SafeGuideOuter float64   `json:"safe_guide_outer"`
	SafeGuideInner float64   `json:"safe_guide_inner"`
	Elements       []Element `json:"elements"`
}

// Defaults used when a field is absent from a payload.
const (
	DefaultOpacity        = 1.0
	DefaultFontFamily     = "Arial"
	DefaultSafeGuideOuter = 0.05
	DefaultSafeGuideInner = 0.10
	DefaultX              = 0.5
	DefaultY              = 0.5
	DefaultFontSizePt     = 24
	DefaultColor          = "#ffffff"
)

// DefaultSettings returns an empty layout with the editor defaults.
func DefaultSettings() Settings {
	return Settings{
		Opacity:        DefaultOpacity,
		FontFamily:     DefaultFontFamily,
		SafeGuides:     true,
		SafeGuideOuter: DefaultSafeGuideOuter,
		SafeGuideInner: DefaultSafeGuideInner,
		Elements:       []Element{},
	}
}

// DecodeSettings reads a settings document over DefaultSettings, so absent
// fields keep their defaults.
func DecodeSettings(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}
	if settings.Elements == nil {
		settings.Elements = []Element{}
	}
	return settings, nil
}
