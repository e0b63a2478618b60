// Package database manages the SQLite connection for BitBound Core.
//
// This package provides:
//   - Connection setup with WAL mode and busy timeout pragmas
//   - Single-writer connection pool tuning for SQLite
//   - Health checks and graceful shutdown
//
// Schema ownership lives with the repositories built on top (see
// internal/rulestore); this package only hands out a configured
// connection.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
