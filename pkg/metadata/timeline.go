package metadata

import (
	"errors"
	"fmt"
	"os"
)

// MarkersField holds the per-marker documents in a timeline stills export.
const MarkersField = "markers_metadata"

var (
	// ErrNoMarkers is returned when a timeline export has no markers to preview.
	ErrNoMarkers = errors.New("metadata: timeline has no markers")
	// ErrUnknownMarker is returned when a requested marker id is absent.
	ErrUnknownMarker = errors.New("metadata: unknown marker")
)

// Timeline is a decoded Timeline_*_stills_full_metadata.json export.
type Timeline struct {
	doc     Document
	markers *Object
}

// LoadTimeline decodes a timeline export. A document without a
// markers_metadata object is accepted as a single anonymous marker so a bare
// clip document can be previewed directly.
func LoadTimeline(data []byte) (Timeline, error) {
	doc, err := Decode(data)
	if err != nil {
		return Timeline{}, err
	}
	return NewTimeline(doc), nil
}

// ReadTimeline loads a timeline export from disk.
func ReadTimeline(path string) (Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Timeline{}, fmt.Errorf("metadata: read timeline: %w", err)
	}
	tl, err := LoadTimeline(data)
	if err != nil {
		return Timeline{}, fmt.Errorf("metadata: %s: %w", path, err)
	}
	return tl, nil
}

// NewTimeline wraps an already decoded document.
func NewTimeline(doc Document) Timeline {
	markers, _ := doc.Section(MarkersField)
	return Timeline{doc: doc, markers: markers}
}

// Document returns the whole export.
func (t Timeline) Document() Document {
	return t.doc
}

// Bare reports whether the export has no markers_metadata section.
func (t Timeline) Bare() bool {
	return t.markers == nil
}

// MarkerIDs lists marker ids in source order.
func (t Timeline) MarkerIDs() []string {
	ids := make([]string, 0, t.markers.Len())
	t.markers.Each(func(id string, value any) bool {
		if obj, ok := value.(*Object); ok && obj != nil {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// Marker returns the document of one marker.
func (t Timeline) Marker(id string) (Document, bool) {
	obj, ok := t.markers.Object(id)
	if !ok {
		return Document{}, false
	}
	return NewDocument(obj), true
}

// First returns the first marker in source order.
func (t Timeline) First() (string, Document, bool) {
	ids := t.MarkerIDs()
	if len(ids) == 0 {
		return "", Document{}, false
	}
	doc, _ := t.Marker(ids[0])
	return ids[0], doc, true
}

// SelectPreview picks the document to preview: the marker named id, or the
// first available marker when id is empty. A bare export is its own preview
// document and reports an empty marker id.
func SelectPreview(t Timeline, id string) (string, Document, error) {
	if t.Bare() {
		if t.doc.Empty() {
			return "", Document{}, ErrNoMarkers
		}
		return "", t.doc, nil
	}
	if id == "" {
		markerID, doc, ok := t.First()
		if !ok {
			return "", Document{}, ErrNoMarkers
		}
		return markerID, doc, nil
	}
	doc, ok := t.Marker(id)
	if !ok {
		return "", Document{}, fmt.Errorf("%w: %q", ErrUnknownMarker, id)
	}
	return id, doc, nil
}
