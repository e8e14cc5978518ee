package overlay_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/template"
)

func payload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("payload: %v", err)
	}
	return out
}

func ptr(f float64) *float64 { return &f }

func TestSanitize_ClampsAndDefaults(t *testing.T) {
	got := overlay.Sanitize(payload(t, `{
		"burnin_font_path": "  /fonts/Inter.ttf ",
		"burnin_opacity": "1.7",
		"burnin_font_family": "<b>Inter</b>",
		"safe_guides": false,
		"safe_guide_outer": 0.5,
		"unknown": true,
		"elements": [
			{"key": "Scene", "x": -1, "y": "0.25", "font_size_pt": 1000.9, "opacity": null,
			 "align": "RIGHT", "font_weight": "heavy", "font_color": "#00ff00"},
			{"key": "  "},
			"not an object",
			{"key": "Take", "font_size_pt": "abc", "align": "justify", "color": "", "font_family": "Mono"}
		]
	}`))

	want := overlay.Settings{
		FontPath:       "/fonts/Inter.ttf",
		Opacity:        1,
		FontFamily:     "Inter",
		SafeGuides:     false,
		SafeGuideOuter: 0.2,
		SafeGuideInner: 0.1,
		Elements: []overlay.Element{
			{
				Key: "Scene", X: 0, Y: 0.25, FontSizePt: 400, Opacity: ptr(1),
				Align: "right", FontFamily: "Inter", FontWeight: "normal", Color: "#00ff00",
			},
			{
				Key: "Take", X: 0.5, Y: 0.5, FontSizePt: 24, Opacity: ptr(1),
				Align: "center", FontFamily: "Mono", FontWeight: "normal", Color: "#ffffff",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sanitize mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_EmptyPayload(t *testing.T) {
	got := overlay.Sanitize(nil)
	if diff := cmp.Diff(overlay.DefaultSettings(), got); diff != "" {
		t.Fatalf("sanitize mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_RecompilesCustomTemplate(t *testing.T) {
	got := overlay.Sanitize(payload(t, `{
		"elements": [{
			"key": "custom",
			"font_size_pt": 3,
			"template_custom": "%Scene_%Take %camera#",
			"template_parts": {"parts": [{"type": "token", "key": "Stale"}]},
			"custom_tokens": ["Stale"]
		}]
	}`))

	if len(got.Elements) != 1 {
		t.Fatalf("expected one element, got %d", len(got.Elements))
	}
	element := got.Elements[0]
	if element.FontSizePt != 4 {
		t.Fatalf("expected font size clamped to 4, got %d", element.FontSizePt)
	}
	if element.TemplateParts == nil {
		t.Fatalf("expected compiled template parts")
	}
	wantParts := []template.Segment{
		template.Token("Scene_"),
		template.Token("Take"),
		template.Text(" "),
		template.Token("Camera_#"),
	}
	if diff := cmp.Diff(wantParts, element.TemplateParts.Parts); diff != "" {
		t.Fatalf("parts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Scene_", "Take", "Camera_#"}, element.CustomTokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsJSON_PersistedShape(t *testing.T) {
	settings := overlay.Sanitize(payload(t, `{"elements":[{"key":"custom","template_custom":"%Scene / %Shot"}]}`))

	data, err := json.Marshal(settings.Elements[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"key":"custom","x":0.5,"y":0.5,"font_size_pt":24,"opacity":1,"align":"center",` +
		`"font_family":"Arial","font_weight":"normal","color":"#ffffff","template_custom":"%Scene / %Shot",` +
		`"template_parts":{"parts":[{"type":"token","key":"Scene"},{"type":"text","value":" / "},{"type":"token","key":"Shot"}]},` +
		`"custom_tokens":["Scene","Shot"]}`
	if string(data) != want {
		t.Fatalf("unexpected JSON:\nwant %s\ngot  %s", want, data)
	}
}

func TestPrepare_HealsMalformedParts(t *testing.T) {
	settings, err := overlay.DecodeSettings([]byte(`{
		"burnin_opacity": 0.6,
		"elements": [
			{"key": "custom", "template_custom": "%Take!", "template_parts": {"parts": "broken"}, "custom_tokens": ["Old"]},
			{"key": "custom", "template_custom": "%Shot", "template_parts": {"parts": [{"type": "token", "key": "Scene"}]}},
			{"key": "Scene", "font_color": "#123456"}
		]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if settings.Elements[0].TemplateParts != nil {
		t.Fatalf("expected malformed parts to be dropped on decode")
	}
	if settings.Elements[2].Color != "#123456" {
		t.Fatalf("expected legacy font_color to fill color, got %q", settings.Elements[2].Color)
	}

	prepared := overlay.Prepare(settings)

	healed := prepared.Elements[0]
	if healed.TemplateParts == nil {
		t.Fatalf("expected parts rebuilt from template_custom")
	}
	if diff := cmp.Diff([]string{"Take"}, healed.CustomTokens); diff != "" {
		t.Fatalf("healed tokens mismatch (-want +got):\n%s", diff)
	}

	stale := prepared.Elements[1]
	if diff := cmp.Diff([]string{"Shot"}, stale.CustomTokens); diff != "" {
		t.Fatalf("parts should follow template_custom (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]template.Segment{template.Token("Shot")}, stale.TemplateParts.Parts); diff != "" {
		t.Fatalf("recompiled parts mismatch (-want +got):\n%s", diff)
	}
	if settings.Elements[0].TemplateParts != nil {
		t.Fatalf("Prepare must not mutate its input")
	}
	if prepared.Opacity != 0.6 || !prepared.SafeGuides || prepared.FontFamily != "Arial" {
		t.Fatalf("expected decoded values over defaults, got %+v", prepared)
	}
}

func TestRender_FollowsTemplateCustomOverStoredParts(t *testing.T) {
	settings, err := overlay.DecodeSettings([]byte(`{
		"elements": [
			{"key": "custom", "template_custom": "%Scene", "template_parts": {"parts": []}},
			{"key": "custom", "template_custom": "%Shot", "template_parts": {"parts": [{"type": "token", "key": "Scene"}]}, "custom_tokens": ["Scene"]},
			{"key": "custom", "template_parts": {"parts": [{"type": "text", "value": "T"}, {"type": "token", "key": "Take"}]}}
		]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	doc := decode(t, `{"metadata":{"Scene":"INT","Shot":"5","Take":"2"}}`)

	rendered := overlay.Render(nil, doc, settings)

	var texts []string
	var tokens [][]string
	for _, r := range rendered {
		texts = append(texts, r.Text)
		tokens = append(tokens, r.Tokens)
	}
	if diff := cmp.Diff([]string{"[INT]", "[5]", "T[2]"}, texts); diff != "" {
		t.Fatalf("texts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"Scene"}, {"Shot"}, {"Take"}}, tokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsJSON_CustomElementKeepsTemplateFields(t *testing.T) {
	cases := []struct {
		name    string
		element overlay.Element
		want    string
	}{
		{
			name:    "empty template",
			element: overlay.Element{Key: "custom", Align: "center"},
			want: `{"key":"custom","x":0,"y":0,"font_size_pt":0,"align":"center","font_family":"","font_weight":"","color":"",` +
				`"template_custom":"","template_parts":{"parts":[]},"custom_tokens":[]}`,
		},
		{
			name:    "literal only",
			element: overlay.Element{Key: "custom", TemplateCustom: "A cam"},
			want: `{"key":"custom","x":0,"y":0,"font_size_pt":0,"align":"","font_family":"","font_weight":"","color":"",` +
				`"template_custom":"A cam","template_parts":{"parts":[{"type":"text","value":"A cam"}]},"custom_tokens":[]}`,
		},
		{
			name:    "plain key",
			element: overlay.Element{Key: "Scene"},
			want:    `{"key":"Scene","x":0,"y":0,"font_size_pt":0,"align":"","font_family":"","font_weight":"","color":""}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.element)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tc.want {
				t.Fatalf("unexpected JSON:\nwant %s\ngot  %s", tc.want, data)
			}
		})
	}
}
