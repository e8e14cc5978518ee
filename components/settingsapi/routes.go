package settingsapi

import (
	"fmt"
	"net/http"
	"strings"
)

// Route paths relative to the mount point.
const (
	PathLoad        = "/load"
	PathSave        = "/save"
	PathPreview     = "/preview"
	PathPreviewHTML = "/preview.html"
	PathMetadata    = "/metadata"
	PathOpenAPI     = "/openapi.json"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the subtree pattern the component is mounted on.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes mounts the API handler under basePath on mux.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions mounts a handler built from a pre-built Options
// value. Requests reach the handler with the mount prefix stripped.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("settingsapi: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := mountPath(basePath, opts.RoutePath)

	handler := HandlerWithOptions(opts)
	if prefix := strings.TrimSuffix(pattern, "/"); prefix != "" {
		handler = http.StripPrefix(prefix, handler)
	}
	mux.Handle(pattern, handler)
	return pattern, nil
}

// mountPath joins basePath and routePath into a subtree pattern ending in '/'.
func mountPath(basePath, routePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	routePath = strings.Trim(strings.TrimSpace(routePath), "/")

	var parts []string
	if basePath != "" {
		parts = append(parts, basePath)
	}
	if routePath != "" {
		parts = append(parts, routePath)
	}
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/") + "/"
}
