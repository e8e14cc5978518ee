package template

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedParts reports a persisted template_parts value that cannot be
// trusted and must be recompiled from the raw template.
var ErrMalformedParts = errors.New("template: malformed template parts")

type partsEnvelope struct {
	Parts []Segment `json:"parts"`
}

// MarshalJSON emits the persisted shape {"parts":[...]}. The token list is
// stored separately (custom_tokens) and is derived again on decode.
func (c Compiled) MarshalJSON() ([]byte, error) {
	parts := c.Parts
	if parts == nil {
		parts = []Segment{}
	}
	return json.Marshal(partsEnvelope{Parts: parts})
}

// UnmarshalJSON accepts the persisted shape and rejects anything that is not
// an object holding a well-formed parts array.
func (c *Compiled) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Parts *[]json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedParts, err)
	}
	if envelope.Parts == nil {
		return fmt.Errorf("%w: missing parts array", ErrMalformedParts)
	}

	parts := make([]Segment, 0, len(*envelope.Parts))
	for idx, raw := range *envelope.Parts {
		var seg struct {
			Type  string  `json:"type"`
			Value *string `json:"value"`
			Key   *string `json:"key"`
		}
		if err := json.Unmarshal(raw, &seg); err != nil {
			return fmt.Errorf("%w: part %d: %v", ErrMalformedParts, idx, err)
		}
		switch SegmentType(seg.Type) {
		case SegmentText:
			if seg.Value == nil {
				continue
			}
			parts = append(parts, Text(*seg.Value))
		case SegmentToken:
			if seg.Key == nil || *seg.Key == "" {
				return fmt.Errorf("%w: part %d: token without key", ErrMalformedParts, idx)
			}
			parts = append(parts, Token(*seg.Key))
		default:
			return fmt.Errorf("%w: part %d: unknown type %q", ErrMalformedParts, idx, seg.Type)
		}
	}

	*c = FromParts(parts)
	return nil
}

// Parse decodes a persisted template_parts value. ok is false when data is
// empty, null or malformed.
func Parse(data []byte) (Compiled, bool) {
	if len(data) == 0 || string(data) == "null" {
		return Compiled{}, false
	}
	var out Compiled
	if err := json.Unmarshal(data, &out); err != nil {
		return Compiled{}, false
	}
	return out, true
}
