package shutdown

import "errors"

var (
	// ErrCleanupTimeout is returned when cleanup exceeds the shutdown timeout.
	ErrCleanupTimeout = errors.New("shutdown cleanup timed out")
)
