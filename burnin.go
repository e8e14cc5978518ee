package burnin

import (
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/template"
)

// Compiled is a template split into literal and token segments; alias
// exported via the root package for convenience.
type Compiled = template.Compiled

// Document is one metadata object, usually a single marker.
type Document = metadata.Document

// Settings is the persisted burn-in layout.
type Settings = overlay.Settings

// Element is one overlay item of a layout.
type Element = overlay.Element

// Rendered is the preview of one element against a document.
type Rendered = overlay.Rendered

// Compile splits raw into literal text and %Token placeholders.
func Compile(raw string) Compiled {
	return template.Compile(raw)
}

// Resolve returns the value of key in doc using the default token table, or
// "" when nothing usable is found.
func Resolve(doc Document, key string) string {
	return metadata.Resolve(doc, key)
}

// BuildText fills compiled from doc with the default resolver.
func BuildText(doc Document, compiled Compiled) string {
	return overlay.BuildText(nil, doc, compiled)
}

// Render previews every element of settings against doc.
func Render(doc Document, settings Settings) []Rendered {
	return overlay.Render(nil, doc, settings)
}

// RenderMarker loads a timeline export, picks the marker (the first one when
// markerID is empty) and renders settings against it. The chosen marker id is
// returned with the result.
func RenderMarker(data []byte, markerID string, settings Settings) (string, []Rendered, error) {
	timeline, err := metadata.LoadTimeline(data)
	if err != nil {
		return "", nil, err
	}
	id, doc, err := metadata.SelectPreview(timeline, markerID)
	if err != nil {
		return "", nil, err
	}
	return id, Render(doc, settings), nil
}

// Sanitize turns an untrusted save payload into settings.
func Sanitize(payload map[string]any) Settings {
	return overlay.Sanitize(payload)
}
