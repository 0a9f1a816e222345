// Package appfs embeds the files shipped inside the binaries: SQL migrations and HTML templates.
package appfs

import "embed"

//go:embed migrations/*.sql templates
var FS embed.FS
