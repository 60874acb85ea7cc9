// Package knowledgeshell embeds the static assets served by the shell.
package knowledgeshell

import (
	"embed"
	"io/fs"
	"os"
)

// StaticDir is the on-disk location of the static assets, relative to the repo root.
const StaticDir = "frontend/static"

//go:embed all:frontend/static
var staticFS embed.FS

// EmbeddedStaticFS returns the embedded assets rooted at StaticDir.
func EmbeddedStaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, StaticDir)
}

// DiskStaticFS reads assets from StaticDir so edits show up without a rebuild.
func DiskStaticFS() fs.FS {
	return os.DirFS(StaticDir)
}
