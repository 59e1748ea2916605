// Package web holds the embedded templates and stylesheet for joe-events.
package web

import "embed"

// TemplateFS contains all HTML templates.
//
//go:embed templates
var TemplateFS embed.FS

// StaticFS contains the stylesheet served under /static.
//
//go:embed static
var StaticFS embed.FS
