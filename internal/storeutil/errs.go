package storeutil

import "errors"

// Error kinds matching spec §7. Wrap with fmt.Errorf("...: %w", ErrX) and
// unwrap with errors.Is at call boundaries that need to branch on kind.
var (
	// ErrInvalidInput: missing required argument, bad timezone, bad cron,
	// bad RFC3339 — reported to the caller, never logged as an error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound: unknown persona, schedule id, execution id.
	ErrNotFound = errors.New("not found")

	// ErrSubprocessFailure: non-zero exit, missing binary, timeout.
	ErrSubprocessFailure = errors.New("subprocess failure")

	// ErrTransportFailure: network/HTTP errors.
	ErrTransportFailure = errors.New("transport failure")

	// ErrLockTimeoutKind mirrors ErrLockTimeout for callers that only check kind.
	ErrLockTimeoutKind = ErrLockTimeout
)
