//go:build cgo_sqlite

package songdb

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const (
	// driverName is the SQL driver name to use with database/sql.
	driverName = "sqlite3"

	// DriverType identifies this as the CGO implementation.
	DriverType = "cgo"

	// DriverPackage is the import path of the underlying driver.
	DriverPackage = "github.com/mattn/go-sqlite3"
)
