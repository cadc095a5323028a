package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations. Unknown routes and methods are
// answered by the router itself and have no sentinel.
var (
	// ErrBodyTooLarge indicates the request body exceeded the size limit.
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
