// Package views embeds the HTML templates and static assets.
package views

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates static
var files embed.FS

// Engine returns a fiber view engine over the embedded templates. Template
// names are paths relative to templates/ without the extension, e.g.
// "partials/task".
func Engine() *html.Engine {
	return html.NewFileSystem(http.FS(sub("templates")), ".html")
}

// Static serves the embedded static/ directory.
func Static() http.FileSystem {
	return http.FS(sub("static"))
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		// dir is a compile-time constant embedded above
		panic(err)
	}
	return f
}
