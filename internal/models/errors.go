package models

import "errors"

// Error kinds the engine raises. Callers (the web layer, the CLI) translate
// these; the core only guarantees the kind is correct.
var (
	// ErrNotFound covers a tracker, template, task, or instance that is
	// absent, soft-deleted, or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers caller mistakes: negative points, unknown enum
	// values, references to missing templates.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a storage uniqueness violation during provisioning.
	// The provisioner consumes it internally via fetch-and-retry; it never
	// reaches a caller on the common path.
	ErrConflict = errors.New("conflict")
)
