package platform

import "errors"

// Sentinel errors for provider operations.
var (
	// ErrNotSupported is returned for operations that have no meaningful
	// mapping on a forge. No partial emulation is attempted, and the error
	// stays distinguishable from transient request failures.
	ErrNotSupported = errors.New("operation not supported by this provider")

	// ErrUnsupportedKind is returned when the requested forge kind has no
	// driver.
	ErrUnsupportedKind = errors.New("unsupported provider kind")
)
