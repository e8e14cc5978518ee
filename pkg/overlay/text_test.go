package overlay_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/template"
)

func decode(t *testing.T, raw string) metadata.Document {
	t.Helper()
	doc, err := metadata.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func TestBuildText_SceneShotTakeCamera(t *testing.T) {
	doc := decode(t, `{"metadata":{"Scene":"INT","Shot":"5","Take":"2"}}`)
	compiled := template.Compile("%Scene / %Shot - %Take %Camera#")

	got := overlay.BuildText(nil, doc, compiled)
	if want := "[INT] / [5] - [2] [Camera_#]"; got != want {
		t.Fatalf("BuildText = %q, want %q", got, want)
	}
}

func TestBuildText_EmptyTemplate(t *testing.T) {
	compiled := template.Compile("")
	if len(compiled.Parts) != 0 {
		t.Fatalf("expected zero segments, got %#v", compiled.Parts)
	}
	if got := overlay.BuildText(nil, decode(t, `{"Scene":"1"}`), compiled); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestBuildText_GoodTakeAlwaysMarker(t *testing.T) {
	compiled := template.Compile("%Good_Take")

	for _, raw := range []string{
		`{"metadata":{"Good Take":"true"}}`,
		`{"metadata":{"Good Take":"false"}}`,
		`{}`,
	} {
		if got := overlay.BuildText(nil, decode(t, raw), compiled); got != "[*]" {
			t.Errorf("BuildText(%s) = %q, want [*]", raw, got)
		}
	}
}

func TestBuildText_TrimsOutput(t *testing.T) {
	doc := decode(t, `{"Take":"3"}`)

	if got := overlay.BuildText(nil, doc, template.Compile("  T %Take  ")); got != "T [3]" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestBuildText_UsesResolver(t *testing.T) {
	doc := decode(t, `{"metadata":{"Director":"Varda"}}`)
	keys := metadata.DefaultKeyMap().With(metadata.Entry{Key: "Dir", Paths: []string{"metadata.Director"}})
	resolver := metadata.NewResolver(metadata.WithKeyMap(keys))

	if got := overlay.BuildText(resolver, doc, template.Compile("%Dir")); got != "[Varda]" {
		t.Fatalf("expected custom key map to resolve Dir, got %q", got)
	}
}

func TestElementText(t *testing.T) {
	doc := decode(t, `{"metadata":{"Scene":"12","Take":"1"},"clip_properties":{"Reel Name":"A001"}}`)
	parts := template.Compile("%Scene-%Take")

	tests := []struct {
		name    string
		element overlay.Element
		want    string
	}{
		{name: "well-known key", element: overlay.Element{Key: "Reel_Name"}, want: "A001"},
		{name: "missing key placeholder", element: overlay.Element{Key: "LUT1"}, want: "[LUT1]"},
		{name: "custom with parts", element: overlay.Element{Key: "custom", TemplateParts: &parts}, want: "[12]-[1]"},
		{name: "custom self-heals from raw", element: overlay.Element{Key: "custom", TemplateCustom: "S%Scene"}, want: "S[12]"},
		{name: "custom without tokens", element: overlay.Element{Key: "custom", TemplateCustom: "plain"}, want: "[custom]"},
		{name: "custom empty parts", element: overlay.Element{Key: "custom", TemplateParts: &template.Compiled{}}, want: "[custom]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlay.ElementText(nil, doc, tt.element); got != tt.want {
				t.Fatalf("ElementText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	half := 0.5

	tests := []struct {
		name    string
		doc     string
		element overlay.Element
		want    overlay.Formatting
	}{
		{
			name:    "good take true bolds",
			doc:     `{"metadata":{"Good Take":" TRUE "}}`,
			element: overlay.Element{Key: "Scene", FontWeight: "normal"},
			want:    overlay.Formatting{FontWeight: "bold", Opacity: 0.8},
		},
		{
			name:    "good take yes bolds",
			doc:     `{"Good_Take":"yes"}`,
			element: overlay.Element{Key: "Scene"},
			want:    overlay.Formatting{FontWeight: "bold", Opacity: 0.8},
		},
		{
			name:    "numeric good take",
			doc:     `{"clip_properties":{"Good Take":1}}`,
			element: overlay.Element{Key: "Scene", Opacity: &half},
			want:    overlay.Formatting{FontWeight: "bold", Opacity: 0.5},
		},
		{
			name:    "no flag keeps element weight",
			doc:     `{"metadata":{"Good Take":"0"}}`,
			element: overlay.Element{Key: "Scene", FontWeight: "bold", Opacity: &half},
			want:    overlay.Formatting{FontWeight: "bold", Opacity: 0.5},
		},
		{
			name:    "defaults",
			doc:     `{}`,
			element: overlay.Element{Key: "Scene"},
			want:    overlay.Formatting{FontWeight: "normal", Opacity: 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlay.Format(nil, decode(t, tt.doc), tt.element, 0.8)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("formatting mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_GoodTakeScenario(t *testing.T) {
	doc := decode(t, `{"metadata":{"Scene":"9","Good Take":"true"}}`)
	settings := overlay.DefaultSettings()
	settings.Elements = []overlay.Element{
		{Key: "custom", TemplateCustom: "%Scene %Good_Take", X: 0.1, Y: 0.9, FontSizePt: 30, FontWeight: "normal"},
		{Key: "Shot", X: 0.5, Y: 0.5, FontSizePt: 24, Align: "left", Color: "#ff0000"},
	}

	got := overlay.Render(nil, doc, settings)
	want := []overlay.Rendered{
		{
			Key: "custom", Text: "[9] [*]", Tokens: []string{"Scene", "Good_Take"},
			X: 0.1, Y: 0.9, FontSizePt: 30, Align: "center", FontFamily: "Arial", Color: "#ffffff",
			Formatting: overlay.Formatting{FontWeight: "bold", Opacity: 1},
		},
		{
			Key: "Shot", Text: "[Shot]",
			X: 0.5, Y: 0.5, FontSizePt: 24, Align: "left", FontFamily: "Arial", Color: "#ff0000",
			Formatting: overlay.Formatting{FontWeight: "bold", Opacity: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}
