package render

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// DefaultTemplates returns the embedded page templates as an fs.FS rooted at
// the template names, for use with WithTemplatesFS.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
