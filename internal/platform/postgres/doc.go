// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver.
//
// Each store takes a store.DBTX so the same code runs against a pool or a
// transaction; WithTx returns a copy bound to a *sql.Tx. JSON-shaped values
// (focus, score, feedback, keywords) live in JSONB columns. The schema is
// managed by goose from the SQL files embedded in migrations/.
package postgres
