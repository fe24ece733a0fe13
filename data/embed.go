// Package data provides embedded generation presets and utilities for
// loading them.
package data

import "embed"

// dataFS embeds all JSON files from this directory at build time.
//
//go:embed *.json
var dataFS embed.FS
