package swap

import "errors"

// Pipeline errors. Each stage fails independently; the whole decision is
// abandoned for the cycle on any of them, with no retry at this layer.
var (
	// ErrNoWallet is returned at construction when no signing key is
	// configured. A setup mistake, not a transient condition.
	ErrNoWallet = errors.New("no wallet key configured")

	// ErrNotAuthenticated is returned when Execute is called before the
	// relay handshake has completed. No network I/O is attempted.
	ErrNotAuthenticated = errors.New("pipeline not authenticated")

	// ErrRoute is returned when the router fails to produce a usable route.
	ErrRoute = errors.New("route retrieval failed")

	// ErrSign is returned when the route payload cannot be signed.
	ErrSign = errors.New("transaction signing failed")

	// ErrSubmit is returned when the relay does not return a settlement
	// handle. The transaction's eventual fate is not reconciled.
	ErrSubmit = errors.New("transaction submission failed")
)
