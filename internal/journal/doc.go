// Package journal keeps an append-only SQLite history of subtitle downloads.
//
// Each attempt, successful or not, becomes one row tagged with the session
// that produced it. The CLI's history command reads the most recent rows
// back. The schema is versioned; a database written by a different version
// is rejected with ErrSchemaMismatch instead of being migrated in place.
package journal
