package metadata

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Sections searched, in order, after the top level by the fallback tier.
var fallbackSections = []string{"metadata", "clip_properties"}

// Option customises a Resolver.
type Option func(*Resolver)

// WithKeyMap replaces the mapped-path table. A nil map disables the mapped
// tier so every lookup goes through the fallback search.
func WithKeyMap(m *KeyMap) Option {
	return func(r *Resolver) {
		r.keys = m
	}
}

// Resolver looks up token keys in metadata documents. It holds no per-call
// state and is safe for concurrent use.
type Resolver struct {
	keys *KeyMap
}

// NewResolver returns a resolver backed by DefaultKeyMap unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{keys: DefaultKeyMap()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve returns the value of key in doc using the default resolver, or ""
// when nothing matched.
func Resolve(doc Document, key string) string {
	return defaultResolver.Resolve(doc, key)
}

// Lookup is Resolve with an explicit found flag.
func Lookup(doc Document, key string) (string, bool) {
	return defaultResolver.Lookup(doc, key)
}

// KeyMap returns the table used by the mapped tier.
func (r *Resolver) KeyMap() *KeyMap {
	if r == nil {
		return nil
	}
	return r.keys
}

// Resolve returns the value of key in doc, or "" when nothing matched.
func (r *Resolver) Resolve(doc Document, key string) string {
	value, _ := r.Lookup(doc, key)
	return value
}

// Lookup tries the mapped candidate paths for key first, then the normalised
// field search. The first value that is non-null and not blank wins.
func (r *Resolver) Lookup(doc Document, key string) (string, bool) {
	if key == "" || doc.Empty() {
		return "", false
	}
	if r != nil {
		if value, ok := r.lookupMapped(doc, key); ok {
			return value, true
		}
	}
	return lookupFallback(doc, key)
}

func (r *Resolver) lookupMapped(doc Document, key string) (string, bool) {
	plain := doc.Plain()
	for _, c := range r.keys.lookup(key) {
		if value, ok := valueString(c.expr.First(plain)); ok {
			return value, true
		}
	}
	return "", false
}

func lookupFallback(doc Document, key string) (string, bool) {
	want := NormalizeField(key)
	if want == "" {
		return "", false
	}
	if value, ok := searchObject(doc.Root(), want); ok {
		return value, true
	}
	for _, name := range fallbackSections {
		section, ok := doc.Section(name)
		if !ok {
			continue
		}
		if value, ok := searchObject(section, want); ok {
			return value, true
		}
	}
	return "", false
}

func searchObject(obj *Object, want string) (found string, ok bool) {
	obj.Each(func(field string, raw any) bool {
		if NormalizeField(field) != want {
			return true
		}
		found, ok = valueString(raw)
		return !ok
	})
	return found, ok
}

// valueString gives a scalar its display form. Nulls, blank strings and
// nested containers count as missing.
func valueString(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil, map[string]any, []any, *Object:
		return "", false
	case float64:
		return numberString(v), true
	}
	s, err := cast.ToStringE(raw)
	if err != nil || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// numberString formats f the way JavaScript's String(number) does: plain
// decimals between 1e-6 and 1e21, exponent form outside that range.
func numberString(f float64) string {
	switch {
	case f == 0:
		return "0"
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
