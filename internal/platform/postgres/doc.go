// Package postgres implements the internal/store interfaces and the
// scheduler's job store on PostgreSQL. Connections go through the pgx
// database/sql driver; the schema is managed by embedded goose migrations.
package postgres
