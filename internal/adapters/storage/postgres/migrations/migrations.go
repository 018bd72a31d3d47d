package migrations

import "embed"

// Migrations contiene el esquema versionado que aplica goose al arrancar.
//
//go:embed *.sql
var Migrations embed.FS
