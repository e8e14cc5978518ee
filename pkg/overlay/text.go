package overlay

import (
	"strings"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/template"
)

// GoodTakeKey is the flag token rendered as a fixed marker.
const GoodTakeKey = "Good_Take"

// GoodTakeMarker is emitted for every Good_Take token, whatever its value.
const GoodTakeMarker = "[*]"

// CustomPlaceholder is shown for custom elements that produce no text.
const CustomPlaceholder = "[custom]"

// Resolver looks up a token key in a metadata document. *metadata.Resolver
// satisfies it.
type Resolver interface {
	Resolve(doc metadata.Document, key string) string
}

func resolverOrDefault(r Resolver) Resolver {
	if r == nil {
		return metadata.NewResolver()
	}
	return r
}

// BuildText substitutes every token of compiled with its bracketed value, or
// with the bracketed key when the document has none. The result is trimmed.
func BuildText(r Resolver, doc metadata.Document, compiled template.Compiled) string {
	r = resolverOrDefault(r)

	var b strings.Builder
	for _, part := range compiled.Parts {
		switch part.Type {
		case template.SegmentText:
			b.WriteString(part.Value)
		case template.SegmentToken:
			if part.Key == GoodTakeKey {
				// The flag's value only drives Format, never the text.
				b.WriteString(GoodTakeMarker)
				continue
			}
			value := r.Resolve(doc, part.Key)
			b.WriteByte('[')
			if strings.TrimSpace(value) != "" {
				b.WriteString(value)
			} else {
				b.WriteString(part.Key)
			}
			b.WriteByte(']')
		}
	}
	return strings.TrimSpace(b.String())
}

// ElementText returns the preview text of one element. Custom elements build
// from their compiled template, compiling template_custom first when no
// compiled form is present. Other elements resolve their key directly.
func ElementText(r Resolver, doc metadata.Document, e Element) string {
	r = resolverOrDefault(r)

	if !e.Custom() {
		if value := r.Resolve(doc, e.Key); value != "" {
			return value
		}
		return "[" + e.Key + "]"
	}

	compiled, ok := elementTemplate(e)
	if !ok {
		return CustomPlaceholder
	}
	if out := BuildText(r, doc, compiled); out != "" {
		return out
	}
	return CustomPlaceholder
}

func elementTemplate(e Element) (template.Compiled, bool) {
	if e.TemplateParts != nil {
		return *e.TemplateParts, true
	}
	if strings.Contains(e.TemplateCustom, "%") {
		return template.Compile(e.TemplateCustom), true
	}
	return template.Compiled{}, false
}
