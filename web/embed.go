// Package web holds the dashboard templates.
package web

import "embed"

// Templates contains layouts/ and pages/ under templates/.
//
//go:embed templates
var Templates embed.FS
