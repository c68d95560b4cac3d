// Package web holds the dashboard's templates and static assets.
package web

import "embed"

// Files contains templates/*.html and static/*. The all: prefix keeps the
// underscore partials such as templates/_lists.html.
//
//go:embed all:templates static
var Files embed.FS
