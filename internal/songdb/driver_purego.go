//go:build !cgo_sqlite

package songdb

import (
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const (
	// driverName is the SQL driver name to use with database/sql.
	driverName = "sqlite"

	// DriverType identifies this as the pure Go implementation.
	DriverType = "purego"

	// DriverPackage is the import path of the underlying driver.
	DriverPackage = "modernc.org/sqlite"
)
