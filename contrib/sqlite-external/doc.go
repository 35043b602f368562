// Package sqliteexternal provides optional external SQLite drivers.
//
// This package is part of the main github.com/ggfazio/zim-desktop-wiki module
// and provides a CGO-based SQLite driver for large page indexes.
//
// # CGO SQLite Driver
//
// To use the CGO driver (github.com/mattn/go-sqlite3):
//
//	import _ "github.com/ggfazio/zim-desktop-wiki/contrib/sqlite-external"
//
// Build with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite
//
// # Default Pure Go Driver
//
// By default, the page index uses a pure Go SQLite implementation that
// requires no CGO. See github.com/ggfazio/zim-desktop-wiki/core/sqlite for
// details.
//
// # When to Use
//
// Use this package when:
//   - The notebook is large enough that index rebuild time matters
//   - You need specific SQLite extensions
//   - You already have CGO in your build pipeline
//
// Use the default pure Go driver when:
//   - Portability is important
//   - Cross-compilation is required
//   - You want simpler deployment (single binary)
package sqliteexternal
