// Package all wires all built-in storage backends into the storage factory.
//
// Importing it (even as a blank import) runs each backend's init, which
// registers its factory and DDL bootstrapper:
//
//   - "postgres" (recordpipe/internal/storage/postgres)
//   - "sqlite"   (recordpipe/internal/storage/sqlite)
//   - "mysql"    (recordpipe/internal/storage/mysql)
//   - "mssql"    (recordpipe/internal/storage/mssql)
//
// Typical usage in a main package:
//
//	import _ "recordpipe/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: "records.db", ...})
package all

import (
	_ "recordpipe/internal/storage/mssql"
	_ "recordpipe/internal/storage/mysql"
	_ "recordpipe/internal/storage/postgres"
	_ "recordpipe/internal/storage/sqlite"
)
