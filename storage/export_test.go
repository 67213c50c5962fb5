package storage

// SQLiteDSN exposes sqliteDSN to storage_test.
func SQLiteDSN(dsn string) string { return sqliteDSN(dsn) }
