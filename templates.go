package burnin

import (
	"io/fs"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/preview"
)

// EmbeddedTemplates exposes the built-in preview sheet templates so callers
// can reuse or restyle them without importing the preview package directly.
func EmbeddedTemplates() fs.FS {
	return preview.TemplatesFS()
}
