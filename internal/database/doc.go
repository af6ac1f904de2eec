// Package database holds the Postgres-backed repositories: the
// permanent per-slot historical aggregates and the latest published
// status per venue.
package database
