package settingsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/store"
)

type staticTimeline struct {
	timeline metadata.Timeline
	ok       bool
}

func (s staticTimeline) Timeline() (metadata.Timeline, bool) { return s.timeline, s.ok }

func newTimeline(t *testing.T) staticTimeline {
	t.Helper()
	tl, err := metadata.LoadTimeline([]byte(`{"markers_metadata":{
		"10": {"metadata": {"Scene": "4", "Take": "2", "Good Take": "yes"}},
		"20": {"metadata": {"Scene": "5"}, "clip_properties": {"Camera #": "B"}}
	}}`))
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	return staticTimeline{timeline: tl, ok: true}
}

func newFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	return store.NewFileStore(filepath.Join(t.TempDir(), store.DefaultFileName))
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandler_LoadWithoutFileReturnsEmptyObject(t *testing.T) {
	h := NewHandler(WithStore(newFileStore(t)))

	rec := serve(h, http.MethodGet, PathLoad, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"ok":true,"data":{}}` {
		t.Fatalf("unexpected body %s", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}

func TestHandler_SaveSanitisesAndLoadHeals(t *testing.T) {
	s := newFileStore(t)
	h := NewHandler(WithStore(s))

	rec := serve(h, http.MethodPost, PathSave, `{
		"burnin_opacity": 3,
		"elements": [
			{"key": "custom", "template_custom": "%Scene-%Take", "template_parts": {"parts": []}, "custom_tokens": ["Stale"]},
			{"key": ""}
		]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var saved struct {
		OK   bool   `json:"ok"`
		Path string `json:"path"`
	}
	decodeBody(t, rec, &saved)
	if !saved.OK || saved.Path != s.Path() {
		t.Fatalf("unexpected save response %+v", saved)
	}

	stored, found, err := s.Load(context.Background())
	if err != nil || !found {
		t.Fatalf("load stored: found=%v err=%v", found, err)
	}
	if stored.Opacity != 1 || len(stored.Elements) != 1 {
		t.Fatalf("expected sanitised settings, got %+v", stored)
	}
	if diff := cmp.Diff([]string{"Scene", "Take"}, stored.Elements[0].CustomTokens); diff != "" {
		t.Fatalf("tokens must be recomputed on save (-want +got):\n%s", diff)
	}

	rec = serve(h, http.MethodGet, PathLoad, "")
	var loaded struct {
		OK   bool             `json:"ok"`
		Data overlay.Settings `json:"data"`
	}
	decodeBody(t, rec, &loaded)
	if !loaded.OK || len(loaded.Data.Elements) != 1 || loaded.Data.Elements[0].TemplateParts == nil {
		t.Fatalf("unexpected load response %s", rec.Body.String())
	}
}

func TestHandler_SaveRejectsInvalidJSON(t *testing.T) {
	h := NewHandler(WithStore(newFileStore(t)))

	rec := serve(h, http.MethodPost, PathSave, `{"elements":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	var body envelope
	decodeBody(t, rec, &body)
	if body.OK || !strings.Contains(body.Error, "invalid JSON") {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestHandler_SaveBodyTooLarge(t *testing.T) {
	h := NewHandler(WithStore(newFileStore(t)), WithMaxBodyBytes(16))

	rec := serve(h, http.MethodPost, PathSave, `{"burnin_font_family":"a very long family name"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rec.Code)
	}
}

func TestHandler_GuardBlocksSave(t *testing.T) {
	s := newFileStore(t)
	h := NewHandler(
		WithStore(s),
		WithGuard(func(*http.Request) error {
			return StatusError{Code: http.StatusUnauthorized, Err: errors.New("token required")}
		}),
	)

	rec := serve(h, http.MethodPost, PathSave, `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if _, found, _ := s.Load(context.Background()); found {
		t.Fatalf("guarded save must not write")
	}

	plain := NewHandler(WithStore(s), WithGuard(func(*http.Request) error { return errors.New("nope") }))
	if rec := serve(plain, http.MethodPost, PathSave, `{}`); rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestHandler_OptionsPreflight(t *testing.T) {
	h := NewHandler(WithAllowOrigin("http://localhost:5173"))

	rec := serve(h, http.MethodOptions, PathSave, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	want := map[string]string{
		"Access-Control-Allow-Origin":  "http://localhost:5173",
		"Access-Control-Allow-Methods": "POST, GET, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
	for name, value := range want {
		if got := rec.Header().Get(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
}

func TestHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewHandler(WithStore(newFileStore(t)))

	rec := serve(h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	var body envelope
	decodeBody(t, rec, &body)
	if body.OK || body.Error != "Not Found" {
		t.Fatalf("unexpected error body %+v", body)
	}

	rec = serve(h, http.MethodGet, PathSave, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "POST, OPTIONS" {
		t.Fatalf("unexpected Allow header %q", got)
	}
}

func TestHandler_FallbackServesOtherPaths(t *testing.T) {
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("static:" + r.URL.Path))
	})
	h := NewHandler(WithFallback(fallback))

	rec := serve(h, http.MethodGet, "/index.html", "")
	if rec.Body.String() != "static:/index.html" {
		t.Fatalf("expected fallback, got %q", rec.Body.String())
	}
}

func TestHandler_PreviewWithUnsavedSettings(t *testing.T) {
	h := NewHandler(WithStore(newFileStore(t)), WithMetadata(newTimeline(t)))

	rec := serve(h, http.MethodPost, PathPreview, `{
		"marker": "20",
		"settings": {"elements": [
			{"key": "custom", "template_custom": "%Scene / %Take %Camera#"},
			{"key": "Camera_#", "opacity": 0.4}
		]}
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		OK       bool               `json:"ok"`
		Marker   string             `json:"marker"`
		Elements []overlay.Rendered `json:"elements"`
	}
	decodeBody(t, rec, &body)
	if body.Marker != "20" || len(body.Elements) != 2 {
		t.Fatalf("unexpected preview %s", rec.Body.String())
	}
	got := []string{body.Elements[0].Text, body.Elements[1].Text}
	if diff := cmp.Diff([]string{"[5] / [Take] [B]", "B"}, got); diff != "" {
		t.Fatalf("preview text mismatch (-want +got):\n%s", diff)
	}
	if body.Elements[1].Opacity != 0.4 || body.Elements[1].FontWeight != "normal" {
		t.Fatalf("unexpected formatting %+v", body.Elements[1].Formatting)
	}
}

func TestHandler_PreviewStoredSettingsDefaultMarker(t *testing.T) {
	s := newFileStore(t)
	settings := overlay.Sanitize(map[string]any{
		"elements": []any{map[string]any{"key": "Scene", "font_weight": "normal"}},
	})
	if err := s.Save(context.Background(), settings); err != nil {
		t.Fatalf("save: %v", err)
	}
	h := NewHandler(WithStore(s), WithMetadata(newTimeline(t)))

	rec := serve(h, http.MethodGet, PathPreview, "")
	var body struct {
		Marker   string             `json:"marker"`
		Elements []overlay.Rendered `json:"elements"`
	}
	decodeBody(t, rec, &body)
	if body.Marker != "10" || len(body.Elements) != 1 {
		t.Fatalf("unexpected preview %s", rec.Body.String())
	}
	if body.Elements[0].Text != "4" || body.Elements[0].FontWeight != "bold" {
		t.Fatalf("expected first marker with Good_Take bolding, got %+v", body.Elements[0])
	}
}

func TestHandler_PreviewErrors(t *testing.T) {
	noMeta := NewHandler(WithStore(newFileStore(t)))
	if rec := serve(noMeta, http.MethodGet, PathPreview, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metadata, got %d", rec.Code)
	}

	h := NewHandler(WithStore(newFileStore(t)), WithMetadata(newTimeline(t)))
	if rec := serve(h, http.MethodGet, PathPreview+"?marker=99", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown marker, got %d", rec.Code)
	}
}

func TestHandler_Metadata(t *testing.T) {
	h := NewHandler(WithStore(newFileStore(t)), WithMetadata(newTimeline(t)), WithMarker("20"))

	rec := serve(h, http.MethodGet, PathMetadata, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	want := `{"ok":true,"marker":"20","markers":["10","20"],"data":{"metadata":{"Scene":"5"},"clip_properties":{"Camera #":"B"}}}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("unexpected body:\nwant %s\ngot  %s", want, got)
	}
}

func TestHandler_PreviewHTML(t *testing.T) {
	s := newFileStore(t)
	settings := overlay.Sanitize(map[string]any{
		"elements": []any{map[string]any{"key": "custom", "template_custom": "Sc %Scene"}},
	})
	if err := s.Save(context.Background(), settings); err != nil {
		t.Fatalf("save: %v", err)
	}
	h := NewHandler(WithStore(s), WithMetadata(newTimeline(t)))

	rec := serve(h, http.MethodGet, PathPreviewHTML, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected HTML, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Sc [4]") {
		t.Fatalf("expected rendered text in page:\n%s", rec.Body.String())
	}
}

func TestHandler_OpenAPIDescribesEveryRoute(t *testing.T) {
	h := NewHandler()

	rec := serve(h, http.MethodGet, PathOpenAPI, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	decodeBody(t, rec, &doc)
	for _, path := range []string{PathLoad, PathSave, PathPreview, PathPreviewHTML, PathMetadata, PathOpenAPI} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("openapi document is missing %s", path)
		}
	}
}
