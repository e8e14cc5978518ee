package settingsapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/overlay"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/preview"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/store"
)

// GuardFunc may reject a state-changing request. Returning an HTTPError
// selects the response status; any other error maps to 403.
type GuardFunc func(r *http.Request) error

// MetadataSource supplies the timeline used for previews.
type MetadataSource interface {
	Timeline() (metadata.Timeline, bool)
}

const (
	defaultRoutePath    = "/"
	defaultAllowOrigin  = "*"
	defaultMaxBodyBytes = 1 << 20
)

type Options struct {
	RoutePath    string
	AllowOrigin  string
	MaxBodyBytes int64
	Marker       string
	Guard        GuardFunc

	Store    store.Store
	Metadata MetadataSource
	Resolver overlay.Resolver
	Sheets   *preview.Engine
	Fallback http.Handler
	Logger   *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    defaultRoutePath,
		AllowOrigin:  defaultAllowOrigin,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Store == nil {
		opts.Store = store.NewFileStore(store.DefaultFileName)
	}
	if opts.Resolver == nil {
		opts.Resolver = metadata.NewResolver()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

// WithAllowOrigin sets Access-Control-Allow-Origin. An empty origin disables
// the CORS headers.
func WithAllowOrigin(origin string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.AllowOrigin = origin
	}
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

// WithMarker sets the marker previewed when a request names none. Empty means
// the first marker of the timeline.
func WithMarker(id string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Marker = id
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithStore(s store.Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = s
	}
}

func WithMetadata(src MetadataSource) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Metadata = src
	}
}

func WithResolver(r overlay.Resolver) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Resolver = r
	}
}

func WithSheets(engine *preview.Engine) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Sheets = engine
	}
}

// WithFallback serves every path the API does not own, typically the editor's
// static files.
func WithFallback(h http.Handler) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Fallback = h
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
