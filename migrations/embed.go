// Package migrations embeds the goose SQL so the binary can migrate on
// start without shipping files alongside it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
