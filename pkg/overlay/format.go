package overlay

import (
	"strings"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
)

// Formatting is display metadata derived from the document. It never changes
// the element's text.
type Formatting struct {
	FontWeight string  `json:"font_weight"`
	Opacity    float64 `json:"opacity"`
}

// Format bolds the element when the document's Good_Take flag is 1, true or
// yes. Opacity is the element's own, else defaultOpacity.
func Format(r Resolver, doc metadata.Document, e Element, defaultOpacity float64) Formatting {
	r = resolverOrDefault(r)

	out := Formatting{FontWeight: e.FontWeight, Opacity: defaultOpacity}
	if out.FontWeight == "" {
		out.FontWeight = WeightNormal
	}
	if e.Opacity != nil {
		out.Opacity = *e.Opacity
	}
	if isTruthy(r.Resolve(doc, GoodTakeKey)) {
		out.FontWeight = WeightBold
	}
	return out
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
