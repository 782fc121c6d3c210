package site

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFS embed.FS

// indexPage returns the embedded landing page.
func indexPage() []byte {
	b, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		// Only possible if the embed pattern is broken at build time.
		return nil
	}
	return b
}
