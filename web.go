// Package memorial holds the assets embedded into the memorial binary.
package memorial

import "embed"

// WebAssets contains the HTML templates and the static files served under /static/.
//
//go:embed web/templates web/static
var WebAssets embed.FS
