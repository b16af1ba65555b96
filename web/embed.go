// Package web provides the embedded single-page client. The build copies
// the compiled client into web/static/; the placeholder index.html keeps
// the server usable without it.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:static
var staticFS embed.FS

// Static returns the client files rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
