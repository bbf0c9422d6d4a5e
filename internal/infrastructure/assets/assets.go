// Package assets embeds the block's static images and resolves their public URLs.
package assets

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed pix/*.svg
var pixFS embed.FS

// PublicPath is the URL prefix the images are served under.
const PublicPath = "/static/block_ace"

// FS returns the image tree rooted at pix/.
func FS() fs.FS {
	sub, err := fs.Sub(pixFS, "pix")
	if err != nil {
		panic(err)
	}
	return sub
}

// Locator builds image URLs against an optional asset host.
type Locator struct {
	baseURL string
}

// NewLocator creates a locator. An empty baseURL yields host-relative URLs.
func NewLocator(baseURL string) *Locator {
	return &Locator{baseURL: strings.TrimRight(baseURL, "/")}
}

// ImageURL returns the public URL of an image by name without extension.
func (l *Locator) ImageURL(name string) string {
	return l.baseURL + path.Join(PublicPath, name+".svg")
}

// Exists reports whether an image is bundled.
func (l *Locator) Exists(name string) bool {
	_, err := fs.Stat(pixFS, "pix/"+name+".svg")
	return err == nil
}
