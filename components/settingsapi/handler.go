package settingsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/preview"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func statusError(code int, format string, args ...any) StatusError {
	return StatusError{Code: code, Err: fmt.Errorf(format, args...)}
}

type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type loadResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

type saveResponse struct {
	OK   bool   `json:"ok"`
	Path string `json:"path"`
}

type previewResponse struct {
	OK       bool               `json:"ok"`
	Marker   string             `json:"marker"`
	Elements []overlay.Rendered `json:"elements"`
}

type metadataResponse struct {
	OK      bool              `json:"ok"`
	Marker  string            `json:"marker"`
	Markers []string          `json:"markers"`
	Data    metadata.Document `json:"data"`
}

// Handler builds the API handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds the API handler from a pre-built Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return &handler{opts: opts, log: opts.Logger.Named("settingsapi")}
}

type handler struct {
	opts Options
	log  *zap.Logger
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch r.URL.Path {
	case PathLoad:
		h.route(w, r, h.load, http.MethodGet)
	case PathSave:
		h.route(w, r, h.save, http.MethodPost)
	case PathPreview:
		h.route(w, r, h.preview, http.MethodGet, http.MethodPost)
	case PathPreviewHTML:
		h.route(w, r, h.previewHTML, http.MethodGet)
	case PathMetadata:
		h.route(w, r, h.markerMetadata, http.MethodGet)
	case PathOpenAPI:
		h.route(w, r, h.openAPI, http.MethodGet)
	default:
		if h.opts.Fallback != nil {
			h.opts.Fallback.ServeHTTP(w, r)
			return
		}
		h.writeError(w, r, StatusError{Code: http.StatusNotFound})
	}
}

func (h *handler) setCORS(w http.ResponseWriter) {
	if h.opts.AllowOrigin == "" {
		return
	}
	header := w.Header()
	header.Set("Access-Control-Allow-Origin", h.opts.AllowOrigin)
	header.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (h *handler) route(w http.ResponseWriter, r *http.Request, fn func(http.ResponseWriter, *http.Request) error, methods ...string) {
	allowed := false
	for _, method := range methods {
		if r.Method == method {
			allowed = true
			break
		}
	}
	if !allowed {
		w.Header().Set("Allow", strings.Join(append(methods, http.MethodOptions), ", "))
		h.writeError(w, r, StatusError{Code: http.StatusMethodNotAllowed})
		return
	}
	if err := fn(w, r); err != nil {
		h.writeError(w, r, err)
	}
}

func (h *handler) load(w http.ResponseWriter, r *http.Request) error {
	settings, found, err := h.opts.Store.Load(r.Context())
	if err != nil {
		return err
	}
	if !found {
		return writeJSON(w, http.StatusOK, loadResponse{OK: true, Data: struct{}{}})
	}
	return writeJSON(w, http.StatusOK, loadResponse{OK: true, Data: overlay.Prepare(settings)})
}

func (h *handler) save(w http.ResponseWriter, r *http.Request) error {
	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			return guardError(err)
		}
	}

	payload, err := h.decodeBody(w, r)
	if err != nil {
		return err
	}
	settings := overlay.Sanitize(payload)
	if err := h.opts.Store.Save(r.Context(), settings); err != nil {
		return err
	}
	h.log.Info("settings saved",
		zap.String("path", h.opts.Store.Path()),
		zap.Int("elements", len(settings.Elements)),
	)
	return writeJSON(w, http.StatusOK, saveResponse{OK: true, Path: h.opts.Store.Path()})
}

func (h *handler) preview(w http.ResponseWriter, r *http.Request) error {
	// POST bodies are {"settings": {...}, "marker": "id"}; both are optional.
	var (
		rawSettings map[string]any
		marker      = r.URL.Query().Get("marker")
	)
	if r.Method == http.MethodPost {
		payload, err := h.decodeBody(w, r)
		if err != nil {
			return err
		}
		rawSettings, _ = payload["settings"].(map[string]any)
		if requested, ok := payload["marker"].(string); ok {
			marker = requested
		}
	}

	settings, err := h.previewSettings(r, rawSettings)
	if err != nil {
		return err
	}
	markerID, doc, err := h.selectMarker(marker)
	if err != nil {
		return err
	}

	rendered := overlay.Render(h.opts.Resolver, doc, settings)
	return writeJSON(w, http.StatusOK, previewResponse{OK: true, Marker: markerID, Elements: rendered})
}

func (h *handler) previewHTML(w http.ResponseWriter, r *http.Request) error {
	settings, err := h.previewSettings(r, nil)
	if err != nil {
		return err
	}
	markerID, doc, err := h.selectMarker(r.URL.Query().Get("marker"))
	if err != nil {
		return err
	}

	engine := h.opts.Sheets
	if engine == nil {
		engine, err = preview.NewEngine()
		if err != nil {
			return err
		}
	}
	out, err := engine.RenderSheet(preview.Sheet{
		MarkerID: markerID,
		Settings: settings,
		Elements: overlay.Render(h.opts.Resolver, doc, settings),
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
	return nil
}

func (h *handler) markerMetadata(w http.ResponseWriter, r *http.Request) error {
	timeline, err := h.timeline()
	if err != nil {
		return err
	}
	markerID, doc, err := h.selectMarker(r.URL.Query().Get("marker"))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, metadataResponse{
		OK:      true,
		Marker:  markerID,
		Markers: timeline.MarkerIDs(),
		Data:    doc,
	})
}

func (h *handler) openAPI(w http.ResponseWriter, r *http.Request) error {
	doc, err := LoadOpenAPI(r.Context())
	if err != nil {
		return err
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return nil
}

// previewSettings sanitises settings sent with the request, or falls back to
// the stored layout.
func (h *handler) previewSettings(r *http.Request, raw map[string]any) (overlay.Settings, error) {
	if raw != nil {
		return overlay.Sanitize(raw), nil
	}
	settings, _, err := h.opts.Store.Load(r.Context())
	if err != nil {
		return overlay.Settings{}, err
	}
	return settings, nil
}

func (h *handler) timeline() (metadata.Timeline, error) {
	if h.opts.Metadata == nil {
		return metadata.Timeline{}, statusError(http.StatusNotFound, "no preview metadata configured")
	}
	timeline, ok := h.opts.Metadata.Timeline()
	if !ok {
		return metadata.Timeline{}, statusError(http.StatusNotFound, "preview metadata not loaded")
	}
	return timeline, nil
}

func (h *handler) selectMarker(requested string) (string, metadata.Document, error) {
	timeline, err := h.timeline()
	if err != nil {
		return "", metadata.Document{}, err
	}
	if requested == "" {
		requested = h.opts.Marker
	}
	id, doc, err := metadata.SelectPreview(timeline, requested)
	switch {
	case errors.Is(err, metadata.ErrUnknownMarker), errors.Is(err, metadata.ErrNoMarkers):
		return "", metadata.Document{}, StatusError{Code: http.StatusNotFound, Err: err}
	case err != nil:
		return "", metadata.Document{}, err
	}
	return id, doc, nil
}

// decodeBody reads a JSON object body. An empty body is an empty object.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, StatusError{Code: http.StatusRequestEntityTooLarge, Err: err}
		}
		return nil, StatusError{Code: http.StatusBadRequest, Err: err}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, statusError(http.StatusBadRequest, "invalid JSON body: %v", err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.log.Debug("request rejected", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Int("status", code), zap.Error(err))
	}
	_ = writeJSON(w, code, envelope{OK: false, Error: err.Error()})
}

func guardError(err error) error {
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		return err
	}
	return StatusError{Code: http.StatusForbidden, Err: err}
}

func writeJSON(w http.ResponseWriter, code int, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(data)
	return nil
}
