// Package migrations esquema de la base de datos en formato goose, embebido en el binario.
package migrations

import "embed"

// FS archivos .sql ordenados por versión.
//
//go:embed *.sql
var FS embed.FS
