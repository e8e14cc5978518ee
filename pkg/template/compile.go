package template

import (
	"regexp"
	"strings"
)

// SegmentType discriminates literal text from token placeholders.
type SegmentType string

const (
	SegmentText  SegmentType = "text"
	SegmentToken SegmentType = "token"
)

// Segment is one unit of a compiled template, in source order. Text segments
// carry Value, token segments carry the normalised Key.
type Segment struct {
	Type  SegmentType `json:"type"`
	Value string      `json:"value,omitempty"`
	Key   string      `json:"key,omitempty"`
}

// Text builds a literal segment.
func Text(value string) Segment {
	return Segment{Type: SegmentText, Value: value}
}

// Token builds a token segment.
func Token(key string) Segment {
	return Segment{Type: SegmentToken, Key: key}
}

// Compiled is the structured form of a template string. It must be rebuilt
// with Compile whenever the raw template changes.
type Compiled struct {
	Parts  []Segment
	Tokens []string
}

var tokenPattern = regexp.MustCompile(`%[A-Za-z0-9_#]+`)

// Compile scans raw left to right for %Token placeholders. Text between
// matches becomes literal segments (adjacent literals merged) and every match
// becomes a token segment keyed by NormalizeTokenKey.
func Compile(raw string) Compiled {
	matches := tokenPattern.FindAllStringIndex(raw, -1)
	parts := make([]Segment, 0, 2*len(matches)+1)

	last := 0
	for _, loc := range matches {
		if loc[0] > last {
			parts = appendText(parts, raw[last:loc[0]])
		}
		parts = append(parts, Token(NormalizeTokenKey(raw[loc[0]:loc[1]])))
		last = loc[1]
	}
	if last < len(raw) {
		parts = appendText(parts, raw[last:])
	}

	return FromParts(parts)
}

// FromParts builds a Compiled value from already-split segments, merging
// adjacent literals, dropping empty ones and deriving the token list.
func FromParts(parts []Segment) Compiled {
	merged := make([]Segment, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case SegmentText:
			merged = appendText(merged, part.Value)
		case SegmentToken:
			if part.Key == "" {
				continue
			}
			merged = append(merged, Token(part.Key))
		}
	}
	return Compiled{Parts: merged, Tokens: tokenKeys(merged)}
}

func appendText(parts []Segment, value string) []Segment {
	if value == "" {
		return parts
	}
	if n := len(parts); n > 0 && parts[n-1].Type == SegmentText {
		parts[n-1].Value += value
		return parts
	}
	return append(parts, Text(value))
}

func tokenKeys(parts []Segment) []string {
	keys := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		if part.Type != SegmentToken {
			continue
		}
		if _, ok := seen[part.Key]; ok {
			continue
		}
		seen[part.Key] = struct{}{}
		keys = append(keys, part.Key)
	}
	return keys
}

// Literal concatenates the literal segments, ignoring tokens.
func (c Compiled) Literal() string {
	var b strings.Builder
	for _, part := range c.Parts {
		if part.Type == SegmentText {
			b.WriteString(part.Value)
		}
	}
	return b.String()
}

// Source re-emits the template with canonical token keys, e.g. "%Camera#"
// comes back as "%Camera_#".
func (c Compiled) Source() string {
	var b strings.Builder
	for _, part := range c.Parts {
		switch part.Type {
		case SegmentText:
			b.WriteString(part.Value)
		case SegmentToken:
			b.WriteByte('%')
			b.WriteString(part.Key)
		}
	}
	return b.String()
}

// Empty reports whether the template has no segments at all.
func (c Compiled) Empty() bool {
	return len(c.Parts) == 0
}

// HasToken reports whether key is referenced by the template.
func (c Compiled) HasToken(key string) bool {
	for _, token := range c.Tokens {
		if token == key {
			return true
		}
	}
	return false
}
