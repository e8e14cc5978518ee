package metadata

import (
	"strings"
	"sync"

	"github.com/ohler55/ojg/jp"
)

// Entry lists the candidate dotted paths for one canonical UI key, most
// preferred first. Path segments are literal property names.
type Entry struct {
	Key   string   `json:"key" yaml:"key"`
	Paths []string `json:"paths" yaml:"paths"`
}

type candidate struct {
	path string
	expr jp.Expr
}

// KeyMap is an immutable, ordered mapping from canonical UI keys to
// candidate document paths.
type KeyMap struct {
	keys       []string
	candidates map[string][]candidate
}

var defaultEntries = []Entry{
	{Key: "timeline_frame", Paths: []string{"timeline_frame"}},
	{Key: "timeline_TC", Paths: []string{"timeline_TC", "timeline_tc"}},
	{Key: "Clipname", Paths: []string{"clip_name", "Clipname", "clip_properties.Clip Name"}},
	{Key: "Source_TC", Paths: []string{"source_tc", "Source_TC"}},
	{Key: "Source_Resolution", Paths: []string{"source_resolution", "Source_Resolution"}},
	{Key: "Scene", Paths: []string{"metadata.Scene", "clip_properties.Scene", "Scene"}},
	{Key: "Shot", Paths: []string{"metadata.Shot", "clip_properties.Shot", "Shot"}},
	{Key: "Take", Paths: []string{"metadata.Take", "clip_properties.Take", "Take"}},
	{Key: "Good_Take", Paths: []string{"metadata.Good Take", "clip_properties.Good Take", "Good_Take"}},
	{Key: "Camera_#", Paths: []string{"metadata.Camera #", "clip_properties.Camera #", "metadata.Camera#", "Camera_#"}},
	{Key: "Reel_Name", Paths: []string{"clip_properties.Reel Name", "Reel_Name"}},
	{Key: "File_Name", Paths: []string{"clip_properties.File Name", "File_Name"}},
	{Key: "Resolution", Paths: []string{"clip_properties.Resolution", "Resolution"}},
	{Key: "FPS", Paths: []string{"clip_properties.FPS", "FPS"}},
	{Key: "Duration", Paths: []string{"clip_properties.Duration", "Duration"}},
	{Key: "Start_TC", Paths: []string{"clip_properties.Start TC", "Start_TC"}},
	{Key: "End_TC", Paths: []string{"clip_properties.End TC", "End_TC"}},
	{Key: "Video_Codec", Paths: []string{"clip_properties.Video Codec", "Video_Codec"}},
	{Key: "Shutter_Angle", Paths: []string{"clip_properties.Shutter Angle", "Shutter_Angle"}},
	{Key: "LUT1", Paths: []string{"clip_properties.LUT 1", "LUT1"}},
	{Key: "LUT2", Paths: []string{"clip_properties.LUT 2", "LUT2"}},
	{Key: "LUT3", Paths: []string{"clip_properties.LUT 3", "LUT3"}},
	{Key: "Comments", Paths: []string{"clip_properties.Comments", "Comments"}},
}

var (
	defaultOnce   sync.Once
	defaultKeyMap *KeyMap
)

// DefaultKeyMap returns the process-wide table of well-known token keys.
func DefaultKeyMap() *KeyMap {
	defaultOnce.Do(func() {
		defaultKeyMap = NewKeyMap(defaultEntries...)
	})
	return defaultKeyMap
}

// NewKeyMap builds a key map from entries. A key listed twice keeps its first
// position and accumulates the paths of later entries after its own.
func NewKeyMap(entries ...Entry) *KeyMap {
	m := &KeyMap{candidates: make(map[string][]candidate, len(entries))}
	for _, entry := range entries {
		m.add(entry)
	}
	return m
}

func (m *KeyMap) add(entry Entry) {
	key := strings.TrimSpace(entry.Key)
	if key == "" {
		return
	}
	existing, known := m.candidates[key]
	if !known {
		m.keys = append(m.keys, key)
	}
	for _, path := range entry.Paths {
		if path == "" || containsPath(existing, path) {
			continue
		}
		existing = append(existing, candidate{path: path, expr: childExpr(path)})
	}
	m.candidates[key] = existing
}

// With returns a new key map holding m's entries followed by extras. m is
// left untouched.
func (m *KeyMap) With(extras ...Entry) *KeyMap {
	out := NewKeyMap(m.Entries()...)
	for _, entry := range extras {
		out.add(entry)
	}
	return out
}

// Keys returns the canonical keys in declaration order.
func (m *KeyMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Has reports whether key has mapped candidate paths.
func (m *KeyMap) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.candidates[key]
	return ok
}

// Paths returns the candidate paths for key in priority order.
func (m *KeyMap) Paths(key string) []string {
	if m == nil {
		return nil
	}
	candidates := m.candidates[key]
	if len(candidates) == 0 {
		return nil
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.path
	}
	return out
}

// Entries returns a copy of the table.
func (m *KeyMap) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, 0, len(m.keys))
	for _, key := range m.keys {
		out = append(out, Entry{Key: key, Paths: m.Paths(key)})
	}
	return out
}

func (m *KeyMap) lookup(key string) []candidate {
	if m == nil {
		return nil
	}
	return m.candidates[key]
}

func containsPath(candidates []candidate, path string) bool {
	for _, c := range candidates {
		if c.path == path {
			return true
		}
	}
	return false
}

// childExpr turns "clip_properties.Reel Name" into a child-only JSONPath.
// Segments are used verbatim, so spaces and '#' need no quoting.
func childExpr(path string) jp.Expr {
	segments := strings.Split(path, ".")
	expr := make(jp.Expr, 0, len(segments))
	for _, segment := range segments {
		expr = append(expr, jp.Child(segment))
	}
	return expr
}
