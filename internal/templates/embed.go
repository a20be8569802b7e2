// Package templates embeds the popup ad source templates so the renderer
// never depends on the working directory.
package templates

import "embed"

//go:embed popup.html.tmpl popup.css.tmpl popup.js.tmpl preview.html.tmpl embed.html.tmpl
var adFS embed.FS

// GetAdFS exports the embedded filesystem so other packages can use it.
func GetAdFS() embed.FS {
	return adFS
}
