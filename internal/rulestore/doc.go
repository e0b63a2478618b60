// Package rulestore persists rule declarations to SQLite so a restarted
// daemon can re-register them.
//
// The store holds declarations only (kind, device, expression, property,
// period, debounce), never runtime firing state: edge and debounce state
// always starts fresh after a restart.
//
// Usage:
//
//	repo := rulestore.NewSQLiteRepository(db.DB)
//	if err := repo.EnsureSchema(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	records, err := repo.List(ctx)
package rulestore
