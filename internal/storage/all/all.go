// Package all registers every storage backend.
package all

import (
	_ "ecomdata/internal/storage/mssql"
	_ "ecomdata/internal/storage/postgres"
	_ "ecomdata/internal/storage/sqlite"
)
