// Package app provides the application service layer.
//
// Orchestrates use cases: vote submission, status reads, cross-instance
// status publication, retention sweeps. Sits between HTTP handlers and the
// estimation engine. Depends on domain interfaces, not concrete stores.
package app
