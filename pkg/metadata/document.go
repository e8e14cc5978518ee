package metadata

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Object is a JSON object that remembers the order its fields were decoded
// in. Values are string, float64, bool, nil, *Object or []any.
type Object struct {
	keys   []string
	values map[string]any
}

func newObject(capacity int) *Object {
	return &Object{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// set keeps the first position of a duplicated key and the last value, which
// is what browsers do with JSON.parse.
func (o *Object) set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the field names in source order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Get returns the raw value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o.values[key]
	return value, ok
}

// Object returns the nested object stored under key, if the value is one.
func (o *Object) Object(key string) (*Object, bool) {
	value, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	nested, ok := value.(*Object)
	return nested, ok && nested != nil
}

// Each visits fields in source order until fn returns false.
func (o *Object) Each(fn func(key string, value any) bool) {
	if o == nil || fn == nil {
		return
	}
	for _, key := range o.keys {
		if !fn(key, o.values[key]) {
			return
		}
	}
}

// Plain converts the object into nested map[string]any / []any values.
func (o *Object) Plain() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.keys))
	for _, key := range o.keys {
		out[key] = plainValue(o.values[key])
	}
	return out
}

func plainValue(value any) any {
	switch v := value.(type) {
	case *Object:
		return v.Plain()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the fields in source order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document is a read-only metadata document. The zero value is an empty
// document.
type Document struct {
	root  *Object
	plain map[string]any
}

// NewDocument wraps an already-built object.
func NewDocument(root *Object) Document {
	if root == nil {
		return Document{}
	}
	return Document{root: root, plain: root.Plain()}
}

// FromMap builds a document from plain Go maps. Map fields have no inherent
// order, so they are laid out in sorted key order.
func FromMap(values map[string]any) Document {
	if values == nil {
		return Document{}
	}
	return NewDocument(objectFromMap(values))
}

func objectFromMap(values map[string]any) *Object {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	obj := newObject(len(keys))
	for _, key := range keys {
		obj.set(key, valueFromGo(values[key]))
	}
	return obj
}

func valueFromGo(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return objectFromMap(v)
	case map[string]string:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			converted[key] = item
		}
		return objectFromMap(converted)
	case *Object:
		return v
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = valueFromGo(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

// Root returns the top-level object, or nil for an empty document.
func (d Document) Root() *Object {
	return d.root
}

// Empty reports whether the document holds no fields.
func (d Document) Empty() bool {
	return d.root.Len() == 0
}

// Section returns a nested object directly under the root, e.g. "metadata".
func (d Document) Section(name string) (*Object, bool) {
	return d.root.Object(name)
}

// Plain returns the document as nested maps. Callers must not mutate it.
func (d Document) Plain() map[string]any {
	return d.plain
}

// MarshalJSON writes the document in source order; an empty document is {}.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.root == nil {
		return []byte("{}"), nil
	}
	return d.root.MarshalJSON()
}
