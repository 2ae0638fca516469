// Package web provides the embedded static assets for the admin interface.
// The single-page category manager is compiled into the binary and served
// at /admin/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
