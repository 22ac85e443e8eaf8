// Package store defines the persistence interfaces and error sentinels the
// service layer depends on. Concrete implementations live under
// internal/platform (PostgreSQL today); services hold the interfaces so the
// orchestration logic stays storage-agnostic and mockable.
package store
