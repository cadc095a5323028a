package pool

import (
	"errors"
	"fmt"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
)

// Sentinel errors for pool operations.
var (
	// ErrBroken marks a data-store failure. A connection used by a call
	// whose error chain contains ErrBroken is released unhealthy.
	ErrBroken = errors.New("connection broken")

	// ErrExhausted indicates no connection became free in time.
	ErrExhausted = errors.New("connection pool exhausted")

	// ErrClosed indicates the pool no longer hands out connections.
	ErrClosed = errors.New("connection pool closed")
)

// Broken wraps a data-store error so callers release the connection unhealthy.
// It returns nil for a nil error.
func Broken(err error) error {
	if err == nil || errors.Is(err, ErrBroken) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBroken, err)
}

func exhaustedError(cause error) *ierrors.DomainError {
	if cause != nil {
		cause = errors.Join(ErrExhausted, cause)
	} else {
		cause = ErrExhausted
	}
	return ierrors.New("pool", "Acquire", ierrors.ErrExhausted, cause)
}

func closedError() *ierrors.DomainError {
	return ierrors.New("pool", "Acquire", ierrors.ErrExhausted, ErrClosed)
}

func openError(err error) *ierrors.DomainError {
	return ierrors.New("pool", "open", ierrors.ErrUpstream, Broken(err))
}
