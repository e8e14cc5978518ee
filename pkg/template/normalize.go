package template

import "strings"

// CameraKey is the canonical key every camera spelling collapses to.
const CameraKey = "Camera_#"

var tokenAliases = map[string]string{
	"Camera#": CameraKey,
	"Camera":  CameraKey,
}

// NormalizeTokenKey maps a raw token (with or without its leading '%') to its
// canonical key. Unknown names are kept as typed so they can be resolved
// dynamically against the metadata document.
func NormalizeTokenKey(raw string) string {
	key := strings.TrimSpace(raw)
	key = strings.TrimPrefix(key, "%")
	if key == "" {
		return ""
	}
	if alias, ok := tokenAliases[key]; ok {
		return alias
	}
	if strings.EqualFold(key, "camera#") {
		return CameraKey
	}
	return key
}
