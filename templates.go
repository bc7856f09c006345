package formimport

import (
	"io/fs"

	"github.com/goliatone/go-formimport/pkg/compiler/markup"
)

// EmbeddedTemplates exposes the target A notification and confirmation mail
// templates so callers can inspect or override them via
// markup.WithTemplateRenderer.
func EmbeddedTemplates() fs.FS {
	return markup.TemplatesFS()
}
