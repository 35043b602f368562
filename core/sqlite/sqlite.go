// Package sqlite selects the SQLite driver at build time. The default
// build uses the pure Go modernc.org/sqlite driver; the cgo_sqlite
// build tag switches to mattn/go-sqlite3, which needs CGO_ENABLED=1.
//
// The registered driver name differs between the two, so databases
// must be opened through Open rather than sql.Open.
package sqlite

import (
	"database/sql"
)

// DriverName returns the name the selected driver registers under.
func DriverName() string {
	return driverName
}

// DriverType identifies the implementation, "purego" or "cgo".
func DriverType() string {
	return driverType
}

// IsCGO reports whether the cgo driver is compiled in.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a SQLite database with the selected driver.
func Open(path string) (*sql.DB, error) {
	return sql.Open(driverName, path)
}

// OpenReadOnly opens a SQLite database in read-only mode. The file:
// prefix makes both drivers honor the mode query parameter.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open("file:" + path + "?mode=ro")
}
