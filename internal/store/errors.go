package store

import "errors"

// Sentinel errors for store operations.
var (
	// ErrUnknownDriver indicates an unsupported DB_DRIVER value.
	ErrUnknownDriver = errors.New("unknown database driver")

	// ErrMigrateUnsupported indicates the driver has no bundled schema.
	ErrMigrateUnsupported = errors.New("migrations are only bundled for sqlite")
)
