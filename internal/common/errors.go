// Package common defines shared sentinel errors used across the garagelog
// store, services and importer. Callers should use errors.Is to match these
// values; wrapping layers add context with fmt.Errorf("...: %w", err).
package common

import "errors"

var (
	// Store-level errors.
	ErrNotInitialized = errors.New("store not initialized")
	ErrStorage        = errors.New("storage error")

	// Service-level errors.
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrConsistency = errors.New("consistency error")

	// Importer errors.
	ErrMigration = errors.New("migration error")
)
