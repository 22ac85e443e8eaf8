// Package postgres implements the store interfaces against PostgreSQL using
// database/sql with the pgx stdlib driver. Database errors are normalized
// into store sentinels through MapError so nothing pgx-specific escapes this
// package.
package postgres
