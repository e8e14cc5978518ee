package metadata

import (
	"regexp"
	"strings"
)

// whitespaceRun matches what JavaScript treats as whitespace, including
// no-break and other Unicode spaces that RE2's \s leaves out.
var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// NormalizeField folds a field name or token key into the form used by the
// dynamic fallback search: whitespace runs become '_', every '#' not already
// preceded by '_' gets one, then the result is lowercased and trimmed.
//
//	"Camera #"  -> "camera_#"
//	"Camera_#"  -> "camera_#"
//	"camera#"   -> "camera_#"
//	"Reel Name" -> "reel_name"
func NormalizeField(name string) string {
	s := whitespaceRun.ReplaceAllString(name, "_")

	var b strings.Builder
	b.Grow(len(s) + 2)
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && (i == 0 || s[i-1] != '_') {
			b.WriteByte('_')
		}
		b.WriteByte(s[i])
	}

	return strings.TrimSpace(strings.ToLower(b.String()))
}
