package overlay

import (
	"html"
	"math"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cast"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/template"
)

const (
	minFontSizePt = 4
	maxFontSizePt = 400
	maxSafeGuide  = 0.2
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// plainText strips markup from a free-text style field and trims it.
func plainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textSanitizer().Sanitize(trimmed)))
}

// Sanitize turns an untrusted save payload into a settings document the
// burn-in engine can rely on. Unknown fields are dropped, numbers are parsed
// leniently and clamped, enums fall back to their defaults, elements without
// a key are skipped and every custom element is recompiled from its
// template_custom text.
func Sanitize(payload map[string]any) Settings {
	out := DefaultSettings()

	out.FontPath = plainText(stringField(payload, "burnin_font_path", ""))
	out.Opacity = clamp(floatField(payload, "burnin_opacity", DefaultOpacity), 0, 1)
	out.FontFamily = plainText(stringField(payload, "burnin_font_family", DefaultFontFamily))
	out.SafeGuides = boolField(payload, "safe_guides", true)
	out.SafeGuideOuter = clamp(floatField(payload, "safe_guide_outer", DefaultSafeGuideOuter), 0, maxSafeGuide)
	out.SafeGuideInner = clamp(floatField(payload, "safe_guide_inner", DefaultSafeGuideInner), 0, maxSafeGuide)

	items, _ := payload["elements"].([]any)
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if element, ok := sanitizeElement(fields, out.FontFamily); ok {
			out.Elements = append(out.Elements, element)
		}
	}
	return out
}

func sanitizeElement(fields map[string]any, fontFamily string) (Element, bool) {
	key := strings.TrimSpace(stringField(fields, "key", ""))
	if key == "" {
		return Element{}, false
	}

	opacity := clamp(floatField(fields, "opacity", DefaultOpacity), 0, 1)
	element := Element{
		Key:        key,
		X:          clamp(floatField(fields, "x", DefaultX), 0, 1),
		Y:          clamp(floatField(fields, "y", DefaultY), 0, 1),
		FontSizePt: clampInt(intField(fields, "font_size_pt", DefaultFontSizePt), minFontSizePt, maxFontSizePt),
		Opacity:    &opacity,
		Align:      strings.ToLower(stringField(fields, "align", AlignCenter)),
		FontFamily: plainText(stringField(fields, "font_family", fontFamily)),
		FontWeight: strings.ToLower(stringField(fields, "font_weight", WeightNormal)),
		Color:      plainText(elementColor(fields)),
	}

	switch element.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		element.Align = AlignCenter
	}
	switch element.FontWeight {
	case WeightNormal, WeightBold:
	default:
		element.FontWeight = WeightNormal
	}
	if element.Color == "" {
		element.Color = DefaultColor
	}

	if element.Custom() {
		setTemplate(&element, stringField(fields, "template_custom", ""))
	}
	return element, true
}

// elementColor prefers color, then the legacy font_color field.
func elementColor(fields map[string]any) string {
	for _, name := range []string{"color", "font_color"} {
		if raw, ok := fields[name]; ok && raw != nil {
			return strings.TrimSpace(cast.ToString(raw))
		}
	}
	return DefaultColor
}

// setTemplate stores raw and its freshly compiled form. Stale parts or tokens
// from the payload are never carried over.
func setTemplate(e *Element, raw string) {
	compiled := template.Compile(raw)
	e.TemplateCustom = raw
	e.TemplateParts = &compiled
	e.CustomTokens = append([]string{}, compiled.Tokens...)
}

// Prepare heals settings read from disk before their first render. Custom
// elements are recompiled from template_custom whenever it is set, so stored
// parts can never disagree with the raw template. Stored parts are only used
// when template_custom is empty, and custom_tokens is rebuilt to match them.
func Prepare(settings Settings) Settings {
	out := settings
	out.Elements = make([]Element, len(settings.Elements))
	for i, element := range settings.Elements {
		if element.Custom() {
			switch {
			case element.TemplateCustom != "":
				setTemplate(&element, element.TemplateCustom)
			case element.TemplateParts != nil:
				parts := *element.TemplateParts
				element.TemplateParts = &parts
				element.CustomTokens = append([]string{}, parts.Tokens...)
			default:
				element.CustomTokens = []string{}
			}
		}
		out.Elements[i] = element
	}
	return out
}

func stringField(fields map[string]any, name, fallback string) string {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return fallback
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return fallback
	}
	return s
}

func floatField(fields map[string]any, name string, fallback float64) float64 {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return fallback
	}
	if s, isString := raw.(string); isString {
		raw = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func intField(fields map[string]any, name string, fallback int) int {
	f := floatField(fields, name, math.NaN())
	if math.IsNaN(f) {
		return fallback
	}
	return int(math.Trunc(clamp(f, math.MinInt32, math.MaxInt32)))
}

func boolField(fields map[string]any, name string, fallback bool) bool {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return fallback
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return fallback
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
